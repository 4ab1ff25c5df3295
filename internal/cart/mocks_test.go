package cart

import (
	"context"
	"sync"

	"github.com/Impluse2/flowersss/internal/cache"
	"github.com/Impluse2/flowersss/internal/domain"
	"github.com/Impluse2/flowersss/internal/repository"
)

// mockRepository keeps cart rows in memory with the same merge semantics the
// Postgres upsert provides.
type mockRepository struct {
	m        sync.Mutex
	users    map[int64]string
	rows     map[int64]map[int64]int // userID -> productID -> quantity
	products map[int64]domain.Product
	err      error

	addCalls   int
	clearCalls int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:    make(map[int64]string),
		rows:     make(map[int64]map[int64]int),
		products: make(map[int64]domain.Product),
	}
}

func (m *mockRepository) EnsureUser(_ context.Context, userID int64, username string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[userID]; !ok {
		m.users[userID] = username
	}
	return nil
}

func (m *mockRepository) AddCartItem(_ context.Context, userID int64, item domain.CartItem) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.addCalls++
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[userID]; !ok {
		return repository.ErrUserNotFound
	}
	if m.rows[userID] == nil {
		m.rows[userID] = make(map[int64]int)
	}
	m.rows[userID][item.ProductID] += item.Quantity
	return nil
}

func (m *mockRepository) GetCartLines(_ context.Context, userID int64) ([]domain.CartLine, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var lines []domain.CartLine
	for productID, qty := range m.rows[userID] {
		p, ok := m.products[productID]
		if !ok {
			continue // product vanished from the catalog
		}
		lines = append(lines, domain.CartLine{Name: p.Name, Price: p.Price, Quantity: qty})
	}
	return lines, nil
}

func (m *mockRepository) ClearCart(_ context.Context, userID int64) (int64, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.clearCalls++
	if m.err != nil {
		return 0, m.err
	}
	removed := int64(len(m.rows[userID]))
	delete(m.rows, userID)
	return removed, nil
}

// mockCache is an in-memory CartCache with switchable failures.
type mockCache struct {
	m      sync.Mutex
	data   map[int64][]domain.CartLine
	getErr error
	setErr error
	delErr error

	sets    chan struct{}
	deletes int
}

func newMockCache() *mockCache {
	return &mockCache{
		data: make(map[int64][]domain.CartLine),
		sets: make(chan struct{}, 16),
	}
}

func (c *mockCache) Get(_ context.Context, userID int64) ([]domain.CartLine, error) {
	c.m.Lock()
	defer c.m.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	lines, ok := c.data[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return lines, nil
}

func (c *mockCache) Set(_ context.Context, userID int64, lines []domain.CartLine) error {
	c.m.Lock()
	defer c.m.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.data[userID] = lines
	select {
	case c.sets <- struct{}{}:
	default:
	}
	return nil
}

func (c *mockCache) Delete(_ context.Context, userID int64) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.deletes++
	if c.delErr != nil {
		return c.delErr
	}
	delete(c.data, userID)
	return nil
}
