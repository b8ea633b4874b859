package repository

import (
	"context"
	"sync"
	"time"

	"github.com/tidwall/btree"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/order/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
)

// Memory keeps orders and lines in B-trees ordered by id.
type Memory struct {
	mu         sync.RWMutex
	orders     *btree.Map[int64, domain.Order]
	lines      *btree.Map[int64, domain.OrderLine]
	references map[string]int64
	nextOrder  int64
	nextLine   int64
}

func NewMemory() *Memory {
	return &Memory{
		orders:     btree.NewMap[int64, domain.Order](32),
		lines:      btree.NewMap[int64, domain.OrderLine](32),
		references: make(map[string]int64),
	}
}

func (m *Memory) SaveOrder(_ context.Context, o domain.Order) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.references[o.Reference]; ok && id != o.ID {
		return domain.Order{}, apperr.BusinessRule("Order with reference %s already exists", o.Reference)
	}
	now := time.Now().UTC()
	if o.ID == 0 {
		m.nextOrder++
		o.ID = m.nextOrder
		o.CreatedDate = now
	}
	o.LastModifiedDate = now
	m.orders.Set(o.ID, o)
	m.references[o.Reference] = o.ID
	return o, nil
}

func (m *Memory) SaveLine(_ context.Context, l domain.OrderLine) (domain.OrderLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders.Get(l.OrderID); !ok {
		return domain.OrderLine{}, apperr.NotFound("Order with id %d not found", l.OrderID)
	}
	m.nextLine++
	l.ID = m.nextLine
	m.lines.Set(l.ID, l)
	return l, nil
}

func (m *Memory) FindAll(_ context.Context) ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Order, 0, m.orders.Len())
	m.orders.Scan(func(_ int64, o domain.Order) bool {
		out = append(out, o)
		return true
	})
	return out, nil
}

func (m *Memory) FindByID(_ context.Context, id int64) (domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders.Get(id)
	if !ok {
		return domain.Order{}, apperr.NotFound("No order found with the provided ID: %d", id)
	}
	return o, nil
}

func (m *Memory) FindLinesByOrderID(_ context.Context, orderID int64) ([]domain.OrderLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.OrderLine{}
	m.lines.Scan(func(_ int64, l domain.OrderLine) bool {
		if l.OrderID == orderID {
			out = append(out, l)
		}
		return true
	})
	return out, nil
}

// Count returns the number of stored orders.
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.orders.Len()
}
