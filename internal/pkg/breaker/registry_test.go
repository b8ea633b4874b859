package breaker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
)

func TestRegistryReturnsOneBreakerPerOperation(t *testing.T) {
	reg := NewRegistry(DefaultConfig())

	a := reg.Get("product.purchase")
	b := reg.Get("product.purchase")
	c := reg.Get("product.findAll")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestRegistryOperationOverride(t *testing.T) {
	override := testConfig()
	override.WaitDurationInOpenState = time.Minute
	reg := NewRegistry(DefaultConfig(), WithOperationConfig("payment.create", override))

	assert.Equal(t, time.Minute, reg.Get("payment.create").Snapshot().OpenDuration)
	assert.Equal(t, 10*time.Second, reg.Get("payment.other").Snapshot().OpenDuration)
}

func TestRegistryRejectsInvalidOverride(t *testing.T) {
	override := testConfig()
	override.SlidingWindowSize = 0

	_, err := New(DefaultConfig(), WithOperationConfig("payment.create", override))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment.create")

	assert.Panics(t, func() {
		NewRegistry(DefaultConfig(), WithOperationConfig("payment.create", override))
	})
}

func TestRegistryRejectsInvalidDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PermittedCallsInHalfOpenState = 0

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestRegistryResetClosesBreaker(t *testing.T) {
	reg := NewRegistry(testConfig())
	p := &callRecorder{}
	for i := 0; i < 3; i++ {
		_, _ = Execute(context.Background(), reg, "op", p.action(errBoom), p.fallback)
	}
	require.Equal(t, StateOpen, reg.Get("op").State())

	require.NoError(t, reg.Reset("op"))

	snap := reg.Get("op").Snapshot()
	assert.Equal(t, StateClosed, snap.State)
	assert.Zero(t, snap.BufferedCalls)

	res, err := Execute(context.Background(), reg, "op", p.action(nil), p.fallback)
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
}

func TestRegistryResetUnknownOperation(t *testing.T) {
	reg := NewRegistry(DefaultConfig())

	err := reg.Reset("missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestRegistrySnapshotSortedByName(t *testing.T) {
	reg := NewRegistry(DefaultConfig())
	reg.Get("order.findAll")
	reg.Get("customer.findById")
	reg.Get("order.createOrder")

	snaps := reg.Snapshot()
	require.Len(t, snaps, 3)
	assert.Equal(t, "customer.findById", snaps[0].Name)
	assert.Equal(t, "order.createOrder", snaps[1].Name)
	assert.Equal(t, "order.findAll", snaps[2].Name)
}
