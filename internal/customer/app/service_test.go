package app_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/customer/app"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/customer/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/customer/repository"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/breaker"
)

func newService() (*app.Service, *repository.Memory) {
	repo := repository.NewMemory()
	return app.NewService(repo, breaker.NewRegistry(breaker.DefaultConfig()), slog.Default()), repo
}

func TestCreateAndFind(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	id, err := svc.Create(ctx, domain.Customer{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	c, err := svc.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Jane", c.FirstName)

	exists, err := svc.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateValidates(t *testing.T) {
	svc, _ := newService()

	_, err := svc.Create(context.Background(), domain.Customer{FirstName: "Jane", Email: "nope"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestUpdateMergesNonBlankFields(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, domain.Customer{ID: "C1", FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"}))

	err := svc.Update(ctx, domain.UpdateRequest{
		ID:       "C1",
		LastName: "Smith",
		Address:  &domain.Address{Street: "Main", HouseNumber: "1", ZipCode: "12345"},
	})
	require.NoError(t, err)

	c, err := repo.FindByID(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", c.FirstName)
	assert.Equal(t, "Smith", c.LastName)
	require.NotNil(t, c.Address)
	assert.Equal(t, "Main", c.Address.Street)
}

func TestUnknownCustomerIsNotFound(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.FindByID(ctx, "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = svc.Update(ctx, domain.UpdateRequest{ID: "missing", FirstName: "X"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

type downRepo struct{}

var errDown = errors.New("connection refused")

func (downRepo) Save(context.Context, domain.Customer) error { return errDown }
func (downRepo) FindByID(context.Context, string) (domain.Customer, error) {
	return domain.Customer{}, errDown
}
func (downRepo) FindAll(context.Context) ([]domain.Customer, error) { return nil, errDown }
func (downRepo) Exists(context.Context, string) (bool, error)        { return false, errDown }
func (downRepo) Delete(context.Context, string) error                { return errDown }

func TestFallbacksWhileRepositoryIsDown(t *testing.T) {
	svc := app.NewService(downRepo{}, breaker.NewRegistry(breaker.DefaultConfig()), slog.Default())
	ctx := context.Background()

	all, err := svc.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	exists, err := svc.Exists(ctx, "C1")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = svc.FindByID(ctx, "C1")
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
	assert.Equal(t, "Customer service is currently unavailable. Please try again later.", err.Error())
	assert.ErrorIs(t, err, errDown)

	_, err = svc.Create(ctx, domain.Customer{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"})
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))

	err = svc.Delete(ctx, "C1")
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}

func TestOpenBreakerSkipsRepository(t *testing.T) {
	cfg := breaker.DefaultConfig()
	cfg.MinimumNumberOfCalls = 2
	cfg.WaitDurationInOpenState = time.Hour
	reg := breaker.NewRegistry(cfg)

	counting := &countingRepo{Memory: repository.NewMemory(), fail: true}
	svc := app.NewService(counting, reg, slog.Default())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _ = svc.FindByID(ctx, "C1")
	}
	require.Equal(t, breaker.StateOpen, reg.Get(app.OpFindByID).State())

	counting.fail = false
	_, err := svc.FindByID(ctx, "C1")
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
	assert.ErrorIs(t, err, breaker.ErrOpen)
	assert.Equal(t, 2, counting.calls)
}

type countingRepo struct {
	*repository.Memory
	fail  bool
	calls int
}

func (r *countingRepo) FindByID(ctx context.Context, id string) (domain.Customer, error) {
	r.calls++
	if r.fail {
		return domain.Customer{}, errDown
	}
	return r.Memory.FindByID(ctx, id)
}
