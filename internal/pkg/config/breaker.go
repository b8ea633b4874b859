package config

import (
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/breaker"
)

// Breaker reads the default circuit breaker settings. Unset variables keep
// the values from breaker.DefaultConfig.
func Breaker() (breaker.Config, error) {
	cfg := breaker.DefaultConfig()
	cfg.FailureRateThreshold = GetFloat("BREAKER_FAILURE_RATE", cfg.FailureRateThreshold)
	cfg.SlidingWindowSize = GetInt("BREAKER_WINDOW_SIZE", cfg.SlidingWindowSize)
	cfg.MinimumNumberOfCalls = GetInt("BREAKER_MIN_CALLS", cfg.MinimumNumberOfCalls)
	cfg.WaitDurationInOpenState = GetDuration("BREAKER_OPEN_DURATION", cfg.WaitDurationInOpenState)
	cfg.PermittedCallsInHalfOpenState = GetInt("BREAKER_HALF_OPEN_CALLS", cfg.PermittedCallsInHalfOpenState)
	if err := cfg.Validate(); err != nil {
		return breaker.Config{}, err
	}
	return cfg, nil
}
