package middlewares

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"google.golang.org/grpc/metadata"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/interceptors/constants"
)

// AttachTracingMetadata copies the chi request id and the caller's
// idempotency key into the context and into outgoing gRPC metadata.
func AttachTracingMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		idempotencyKey := r.Header.Get(constants.HeaderIdempotencyKey)

		ctx := context.WithValue(r.Context(), constants.ContextKeyRequestID, requestID)
		ctx = context.WithValue(ctx, constants.ContextKeyIdempotencyKey, idempotencyKey)
		if requestID != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, constants.HeaderRequestID, requestID)
		}
		if idempotencyKey != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, constants.HeaderIdempotencyKey, idempotencyKey)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
