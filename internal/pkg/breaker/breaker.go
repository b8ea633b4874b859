// Package breaker implements a per-operation circuit breaker.
//
// A breaker starts CLOSED and records the outcome of every guarded call into
// a count-based sliding window. Once the window holds at least
// MinimumNumberOfCalls outcomes and the failure rate reaches
// FailureRateThreshold, it moves to OPEN and rejects calls without running
// them. After WaitDurationInOpenState the next call moves it to HALF_OPEN,
// where PermittedCallsInHalfOpenState consecutive successes close it again
// and any failure re-opens it.
//
// Breakers are owned by a Registry and used only through Execute.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
)

type State string

const (
	StateClosed   State = "CLOSED"
	StateOpen     State = "OPEN"
	StateHalfOpen State = "HALF_OPEN"
)

// ErrOpen is the cause handed to the fallback when a call is rejected
// without running the action.
var ErrOpen = errors.New("circuit breaker is open")

type Config struct {
	// FailureRateThreshold is a percentage in (0, 100].
	FailureRateThreshold          float64
	SlidingWindowSize             int
	MinimumNumberOfCalls          int
	WaitDurationInOpenState       time.Duration
	PermittedCallsInHalfOpenState int

	// IsIgnored marks errors that are returned to the caller as-is without
	// counting as a failure or triggering the fallback.
	IsIgnored func(error) bool
}

func DefaultConfig() Config {
	return Config{
		FailureRateThreshold:          50,
		SlidingWindowSize:             10,
		MinimumNumberOfCalls:          5,
		WaitDurationInOpenState:       10 * time.Second,
		PermittedCallsInHalfOpenState: 3,
		IsIgnored:                     IgnoreClientErrors,
	}
}

// IgnoreClientErrors ignores not-found, business-rule and validation failures
// along with caller cancellation.
func IgnoreClientErrors(err error) bool {
	return apperr.IsClientError(err) || errors.Is(err, context.Canceled)
}

func (c Config) Validate() error {
	switch {
	case c.FailureRateThreshold <= 0 || c.FailureRateThreshold > 100:
		return fmt.Errorf("breaker: failure rate threshold must be in (0, 100], got %v", c.FailureRateThreshold)
	case c.SlidingWindowSize < 1:
		return fmt.Errorf("breaker: sliding window size must be positive, got %d", c.SlidingWindowSize)
	case c.MinimumNumberOfCalls < 1:
		return fmt.Errorf("breaker: minimum number of calls must be positive, got %d", c.MinimumNumberOfCalls)
	case c.WaitDurationInOpenState <= 0:
		return fmt.Errorf("breaker: open state wait duration must be positive, got %s", c.WaitDurationInOpenState)
	case c.PermittedCallsInHalfOpenState < 1:
		return fmt.Errorf("breaker: permitted half-open calls must be positive, got %d", c.PermittedCallsInHalfOpenState)
	}
	return nil
}

// CircuitBreakerState is a point-in-time view of one breaker.
type CircuitBreakerState struct {
	Name                 string        `json:"name"`
	State                State         `json:"state"`
	FailureRate          float64       `json:"failure_rate"`
	BufferedCalls        int           `json:"buffered_calls"`
	FailedCalls          int           `json:"failed_calls"`
	LastTransition       time.Time     `json:"last_transition"`
	FailureRateThreshold float64       `json:"failure_rate_threshold"`
	OpenDuration         time.Duration `json:"open_duration"`
}

type CircuitBreaker struct {
	name   string
	cfg    Config
	now    func() time.Time
	logger *slog.Logger

	mu                sync.Mutex
	state             State
	window            *window
	openedAt          time.Time
	lastTransition    time.Time
	halfOpenInFlight  int
	halfOpenSuccesses int
	// generation changes on every transition so outcomes of calls admitted
	// under an earlier state are discarded.
	generation uint64
}

func newCircuitBreaker(name string, cfg Config, now func() time.Time, logger *slog.Logger) *CircuitBreaker {
	if cfg.IsIgnored == nil {
		cfg.IsIgnored = func(error) bool { return false }
	}
	return &CircuitBreaker{
		name:           name,
		cfg:            cfg,
		now:            now,
		logger:         logger,
		state:          StateClosed,
		window:         newWindow(cfg.SlidingWindowSize),
		lastTransition: now(),
	}
}

func (cb *CircuitBreaker) Name() string { return cb.name }

// State reports the current state without triggering the lazy OPEN to
// HALF_OPEN transition.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) Snapshot() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return CircuitBreakerState{
		Name:                 cb.name,
		State:                cb.state,
		FailureRate:          cb.window.failureRate(),
		BufferedCalls:        cb.window.size,
		FailedCalls:          cb.window.failures,
		LastTransition:       cb.lastTransition,
		FailureRateThreshold: cb.cfg.FailureRateThreshold,
		OpenDuration:         cb.cfg.WaitDurationInOpenState,
	}
}

// Reset returns the breaker to CLOSED with an empty window.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.transition(StateClosed)
}

// acquire admits a call or returns an error wrapping ErrOpen.
func (cb *CircuitBreaker) acquire() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if cb.now().Sub(cb.openedAt) < cb.cfg.WaitDurationInOpenState {
			return 0, fmt.Errorf("%w: %s", ErrOpen, cb.name)
		}
		cb.transition(StateHalfOpen)
	}

	if cb.state == StateHalfOpen {
		if cb.halfOpenInFlight >= cb.cfg.PermittedCallsInHalfOpenState {
			return 0, fmt.Errorf("%w: %s", ErrOpen, cb.name)
		}
		cb.halfOpenInFlight++
	}
	return cb.generation, nil
}

func (cb *CircuitBreaker) onSuccess(gen uint64) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if gen != cb.generation {
		return
	}

	switch cb.state {
	case StateClosed:
		cb.window.record(false)
	case StateHalfOpen:
		cb.halfOpenInFlight--
		cb.halfOpenSuccesses++
		if cb.halfOpenSuccesses >= cb.cfg.PermittedCallsInHalfOpenState {
			cb.transition(StateClosed)
		}
	}
}

func (cb *CircuitBreaker) onFailure(gen uint64) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if gen != cb.generation {
		return
	}

	switch cb.state {
	case StateClosed:
		cb.window.record(true)
		if cb.window.size >= cb.cfg.MinimumNumberOfCalls &&
			cb.window.failureRate() >= cb.cfg.FailureRateThreshold {
			cb.transition(StateOpen)
		}
	case StateHalfOpen:
		cb.transition(StateOpen)
	}
}

// onIgnored releases a half-open permit without recording an outcome.
func (cb *CircuitBreaker) onIgnored(gen uint64) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if gen == cb.generation && cb.state == StateHalfOpen {
		cb.halfOpenInFlight--
	}
}

// transition must be called with mu held.
func (cb *CircuitBreaker) transition(to State) {
	from := cb.state
	now := cb.now()

	cb.state = to
	cb.lastTransition = now
	cb.generation++
	cb.halfOpenInFlight = 0
	cb.halfOpenSuccesses = 0

	switch to {
	case StateOpen:
		cb.openedAt = now
	case StateClosed:
		cb.window.reset()
	}

	level := slog.LevelInfo
	if to == StateOpen {
		level = slog.LevelWarn
	}
	cb.logger.Log(context.Background(), level, "circuit breaker state changed",
		"operation", cb.name, "from", from, "to", to)
}

// Action is the guarded call.
type Action[T any] func(ctx context.Context) (T, error)

// Fallback receives the error that made the guarded call unusable: either a
// rejection wrapping ErrOpen or the failure returned by the action.
type Fallback[T any] func(ctx context.Context, cause error) (T, error)

// Call runs action through cb. When the breaker rejects the call or the
// action fails with a counted error, fallback decides the result. A nil
// fallback returns the cause unchanged.
func Call[T any](ctx context.Context, cb *CircuitBreaker, action Action[T], fallback Fallback[T]) (T, error) {
	gen, err := cb.acquire()
	if err != nil {
		return runFallback(ctx, fallback, err)
	}

	res, err := action(ctx)
	if err == nil {
		cb.onSuccess(gen)
		return res, nil
	}
	if cb.cfg.IsIgnored(err) {
		cb.onIgnored(gen)
		return res, err
	}

	cb.onFailure(gen)
	return runFallback(ctx, fallback, err)
}

func runFallback[T any](ctx context.Context, fallback Fallback[T], cause error) (T, error) {
	if fallback == nil {
		var zero T
		return zero, cause
	}
	return fallback(ctx, cause)
}
