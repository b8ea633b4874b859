package interceptors

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/interceptors/constants"
)

// MetadataServerInterceptor copies the request id and idempotency key from
// incoming metadata into the context.
func MetadataServerInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		var requestID, idempotencyKey string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(constants.HeaderRequestID); len(ids) > 0 {
				requestID = ids[0]
			}
			if keys := md.Get(constants.HeaderIdempotencyKey); len(keys) > 0 {
				idempotencyKey = keys[0]
			}
		}
		ctx = context.WithValue(ctx, constants.ContextKeyRequestID, requestID)
		ctx = context.WithValue(ctx, constants.ContextKeyIdempotencyKey, idempotencyKey)

		logger.DebugContext(ctx, "grpc call",
			"method", info.FullMethod,
			"request_id", requestID,
			"idempotency_key", idempotencyKey,
		)
		return handler(ctx, req)
	}
}
