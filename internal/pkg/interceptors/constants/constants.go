package constants

// contextKey keeps these keys from colliding with string keys set by other
// packages.
type contextKey string

const (
	HeaderRequestID      = "x-request-id"
	HeaderIdempotencyKey = "x-idempotency-key"

	ContextKeyRequestID      contextKey = HeaderRequestID
	ContextKeyIdempotencyKey contextKey = HeaderIdempotencyKey
)
