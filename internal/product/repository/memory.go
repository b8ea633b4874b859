package repository

import (
	"context"
	"sync"

	"github.com/tidwall/btree"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/domain"
)

// Memory keeps products in a B-tree ordered by id.
type Memory struct {
	mu         sync.RWMutex
	products   *btree.Map[int64, domain.Product]
	categories map[int64]domain.Category
	nextID     int64
}

func NewMemory(categories ...domain.Category) *Memory {
	m := &Memory{
		products:   btree.NewMap[int64, domain.Product](32),
		categories: make(map[int64]domain.Category, len(categories)),
	}
	for _, c := range categories {
		m.categories[c.ID] = c
	}
	return m
}

func (m *Memory) Create(_ context.Context, p domain.Product) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.categories[p.CategoryID]
	if !ok {
		return domain.Product{}, apperr.NotFound("Category with id %d not found", p.CategoryID)
	}
	p.CategoryName = c.Name

	if p.ID == 0 {
		m.nextID++
		p.ID = m.nextID
	} else if p.ID > m.nextID {
		m.nextID = p.ID
	}
	m.products.Set(p.ID, p)
	return p, nil
}

func (m *Memory) FindByID(_ context.Context, id int64) (domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products.Get(id)
	if !ok {
		return domain.Product{}, apperr.NotFound("Product not found with id: %d", id)
	}
	return p, nil
}

func (m *Memory) FindAll(_ context.Context) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Product, 0, m.products.Len())
	m.products.Scan(func(_ int64, p domain.Product) bool {
		out = append(out, p)
		return true
	})
	return out, nil
}

func (m *Memory) FindAllByIDs(_ context.Context, ids []int64) ([]domain.Product, error) {
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Product, 0, len(want))
	m.products.Scan(func(id int64, p domain.Product) bool {
		if _, ok := want[id]; ok {
			out = append(out, p)
		}
		return true
	})
	return out, nil
}

func (m *Memory) DecrementStock(_ context.Context, id int64, quantity float64) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products.Get(id)
	if !ok {
		return domain.Product{}, apperr.NotFound("Product not found with id: %d", id)
	}
	if p.AvailableQuantity < quantity {
		return domain.Product{}, domain.ErrInsufficientStock
	}
	p.AvailableQuantity -= quantity
	m.products.Set(id, p)
	return p, nil
}
