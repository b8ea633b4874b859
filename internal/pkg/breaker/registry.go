package breaker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
)

// Registry owns one CircuitBreaker per operation name. Breakers are created
// on first use and live for the lifetime of the process; the only way to
// clear one is Reset.
type Registry struct {
	defaults  Config
	overrides map[string]Config
	now       func() time.Time
	logger    *slog.Logger
	breakers  *xsync.MapOf[string, *CircuitBreaker]
}

type Option func(*Registry)

// WithOperationConfig overrides the defaults for a single operation.
func WithOperationConfig(operation string, cfg Config) Option {
	return func(r *Registry) { r.overrides[operation] = cfg }
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// New builds a registry, rejecting invalid defaults or overrides.
func New(defaults Config, opts ...Option) (*Registry, error) {
	r := &Registry{
		defaults:  defaults,
		overrides: make(map[string]Config),
		now:       time.Now,
		logger:    slog.Default(),
		breakers:  xsync.NewMapOf[string, *CircuitBreaker](),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := defaults.Validate(); err != nil {
		return nil, err
	}
	for operation, cfg := range r.overrides {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", operation, err)
		}
	}
	return r, nil
}

// NewRegistry is like New but panics on an invalid config. It is meant for
// configs fixed in code.
func NewRegistry(defaults Config, opts ...Option) *Registry {
	r, err := New(defaults, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns the breaker for operation, creating it on first use.
func (r *Registry) Get(operation string) *CircuitBreaker {
	cb, _ := r.breakers.LoadOrCompute(operation, func() *CircuitBreaker {
		cfg, ok := r.overrides[operation]
		if !ok {
			cfg = r.defaults
		}
		return newCircuitBreaker(operation, cfg, r.now, r.logger)
	})
	return cb
}

// Reset closes the named breaker and clears its statistics.
func (r *Registry) Reset(operation string) error {
	cb, ok := r.breakers.Load(operation)
	if !ok {
		return apperr.NotFound("circuit breaker %q not found", operation)
	}
	cb.Reset()
	return nil
}

// Snapshot lists every known breaker sorted by operation name.
func (r *Registry) Snapshot() []CircuitBreakerState {
	out := make([]CircuitBreakerState, 0, r.breakers.Size())
	r.breakers.Range(func(_ string, cb *CircuitBreaker) bool {
		out = append(out, cb.Snapshot())
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Execute runs action under the breaker registered for operation.
func Execute[T any](ctx context.Context, r *Registry, operation string, action Action[T], fallback Fallback[T]) (T, error) {
	return Call(ctx, r.Get(operation), action, fallback)
}
