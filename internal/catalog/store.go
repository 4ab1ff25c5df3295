// Package catalog owns the in-memory product snapshot and the derived
// paginated/sorted views the bot renders from.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Impluse2/flowersss/internal/domain"
	"github.com/Impluse2/flowersss/internal/repository"
)

// Store holds the active catalog snapshot. Reload replaces it wholesale;
// readers get the previous snapshot until the new one is fully assembled, so a
// failed fetch can never leave the bot with a torn or empty catalog.
type Store struct {
	repo    repository.ProductRepository
	baseURL string

	mu         sync.RWMutex
	snapshot   domain.Snapshot
	reloadedAt time.Time
}

func NewStore(repo repository.ProductRepository, baseURL string) *Store {
	return &Store{
		repo:    repo,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Reload fetches all products, rewrites relative links and images against the
// base URL and installs the result as the new snapshot. On error the previous
// snapshot stays in place.
func (s *Store) Reload(ctx context.Context) error {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload catalog: %w", err)
	}

	snapshot := make(domain.Snapshot, len(products))
	for i, p := range products {
		p.Link = s.absolutize(p.Link)
		if p.Image != "" {
			p.Image = s.absolutize(p.Image)
		}
		snapshot[i] = p
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.reloadedAt = time.Now()
	s.mu.Unlock()

	return nil
}

// Current returns the active snapshot. Callers must treat it as read-only.
func (s *Store) Current() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// ReloadedAt reports when the active snapshot was installed; zero before the
// first successful Reload.
func (s *Store) ReloadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reloadedAt
}

func (s *Store) absolutize(path string) string {
	if path == "" ||
		strings.HasPrefix(path, "http://") ||
		strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.baseURL + path
}
