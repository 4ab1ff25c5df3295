// Package cart applies per-user cart mutations and reads against the durable
// store, with a read-through redis cache in front of the join query.
package cart

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Impluse2/flowersss/internal/cache"
	"github.com/Impluse2/flowersss/internal/domain"
	"github.com/Impluse2/flowersss/internal/repository"
)

var ErrUserNotFound = repository.ErrUserNotFound

type Service struct {
	repo  repository.CartRepository
	cache cache.CartCache
	sfg   singleflight.Group // Prevents cache stampede
}

func NewService(repo repository.CartRepository, cache cache.CartCache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

// EnsureUser registers the user on first contact; safe to call on every
// session start.
func (s *Service) EnsureUser(ctx context.Context, userID int64, username string) error {
	return s.repo.EnsureUser(ctx, userID, username)
}

// AddItem merges the item into the user's cart. The quantity bump for an
// existing row happens inside the store in one statement, so overlapping adds
// from two sessions both count.
func (s *Service) AddItem(ctx context.Context, userID int64, item domain.CartItem) error {
	if err := s.repo.AddCartItem(ctx, userID, item); err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			log.Printf("repo add item error: %v", err)
		}
		return err
	}

	s.invalidate(userID)
	return nil
}

// Lines returns the user's cart joined against current product metadata.
// Cache errors other than a miss are logged and bypassed.
func (s *Service) Lines(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	v, err, _ := s.sfg.Do(cacheGroupKey(userID), func() (interface{}, error) {
		lines, err := s.cache.Get(ctx, userID)
		if err == nil {
			return lines, nil
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err)
		}

		lines, errGet := s.repo.GetCartLines(ctx, userID)
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), userID, lines); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return lines, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]domain.CartLine), nil
}

// Clear empties the user's cart. An already empty cart clears successfully;
// the removed row count is logged for diagnostics.
func (s *Service) Clear(ctx context.Context, userID int64) error {
	removed, err := s.repo.ClearCart(ctx, userID)
	if err != nil {
		log.Printf("repo clear cart error: %v", err)
		return err
	}

	log.Printf("cleared %d cart rows for user %d", removed, userID)
	s.invalidate(userID)
	return nil
}

func (s *Service) invalidate(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}

func cacheGroupKey(userID int64) string {
	return "cart-lines-" + strconv.FormatInt(userID, 10)
}
