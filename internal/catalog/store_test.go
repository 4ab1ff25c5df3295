package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Impluse2/flowersss/internal/domain"
)

type mockProductRepo struct {
	mu       sync.Mutex
	products []domain.Product
	err      error
}

func (m *mockProductRepo) ListProducts(context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Product, len(m.products))
	copy(out, m.products)
	return out, nil
}

func TestReloadRewritesRelativePaths(t *testing.T) {
	repo := &mockProductRepo{products: []domain.Product{
		{ID: 1, Name: "roses", Link: "/catalog/roses", Image: "img/roses.jpg"},
		{ID: 2, Name: "lilies", Link: "https://cdn.example.com/lilies", Image: ""},
	}}
	store := NewStore(repo, "https://shop.example.com/")

	require.NoError(t, store.Reload(context.Background()))

	snap := store.Current()
	require.Len(t, snap, 2)
	assert.Equal(t, "https://shop.example.com/catalog/roses", snap[0].Link)
	assert.Equal(t, "https://shop.example.com/img/roses.jpg", snap[0].Image)
	assert.Equal(t, "https://cdn.example.com/lilies", snap[1].Link, "absolute links pass through")
	assert.Empty(t, snap[1].Image, "missing image stays absent")
}

func TestReloadFailureKeepsPreviousSnapshot(t *testing.T) {
	repo := &mockProductRepo{products: []domain.Product{{ID: 1, Name: "roses"}}}
	store := NewStore(repo, "https://shop.example.com")

	require.NoError(t, store.Reload(context.Background()))
	require.Len(t, store.Current(), 1)

	repo.mu.Lock()
	repo.err = errors.New("connection refused")
	repo.mu.Unlock()

	err := store.Reload(context.Background())
	assert.Error(t, err)

	snap := store.Current()
	require.Len(t, snap, 1)
	assert.Equal(t, int64(1), snap[0].ID)
}

func TestCurrentBeforeFirstReload(t *testing.T) {
	store := NewStore(&mockProductRepo{}, "https://shop.example.com")
	assert.Empty(t, store.Current())
	assert.True(t, store.ReloadedAt().IsZero())
}

func TestReloadReplacesWholesale(t *testing.T) {
	repo := &mockProductRepo{products: []domain.Product{
		{ID: 1, Name: "roses"},
		{ID: 2, Name: "lilies"},
	}}
	store := NewStore(repo, "https://shop.example.com")
	require.NoError(t, store.Reload(context.Background()))

	repo.mu.Lock()
	repo.products = []domain.Product{{ID: 3, Name: "tulips"}}
	repo.mu.Unlock()

	require.NoError(t, store.Reload(context.Background()))

	snap := store.Current()
	require.Len(t, snap, 1)
	assert.Equal(t, int64(3), snap[0].ID)
	assert.False(t, store.ReloadedAt().IsZero())
}

func TestConcurrentReadersDuringReload(t *testing.T) {
	repo := &mockProductRepo{products: []domain.Product{{ID: 1, Name: "roses"}}}
	store := NewStore(repo, "https://shop.example.com")
	require.NoError(t, store.Reload(context.Background()))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				snap := store.Current()
				// Readers see either the old or the new snapshot, never a torn one.
				assert.True(t, len(snap) == 1)
			}
		}()
	}
	for i := 0; i < 20; i++ {
		require.NoError(t, store.Reload(context.Background()))
	}
	wg.Wait()
}
