package repository

import (
	"context"
	"slices"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/customer/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
)

type Memory struct {
	customers *xsync.MapOf[string, domain.Customer]
}

func NewMemory() *Memory {
	return &Memory{customers: xsync.NewMapOf[string, domain.Customer]()}
}

func (m *Memory) Save(_ context.Context, c domain.Customer) error {
	m.customers.Store(c.ID, c)
	return nil
}

func (m *Memory) FindByID(_ context.Context, id string) (domain.Customer, error) {
	c, ok := m.customers.Load(id)
	if !ok {
		return domain.Customer{}, apperr.NotFound("Customer with id %s not found", id)
	}
	return c, nil
}

func (m *Memory) FindAll(_ context.Context) ([]domain.Customer, error) {
	out := make([]domain.Customer, 0, m.customers.Size())
	m.customers.Range(func(_ string, c domain.Customer) bool {
		out = append(out, c)
		return true
	})
	slices.SortFunc(out, func(a, b domain.Customer) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *Memory) Exists(_ context.Context, id string) (bool, error) {
	_, ok := m.customers.Load(id)
	return ok, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.customers.Delete(id)
	return nil
}
