package interceptors

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
)

// ErrorServerInterceptor turns *apperr.Error values returned by handlers into
// gRPC status errors. Unclassified errors are logged and reported as Internal.
func ErrorServerInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		if apperr.KindOf(err) == apperr.KindInternal {
			logger.ErrorContext(ctx, "unhandled error",
				"method", info.FullMethod,
				"request_id", RequestID(ctx),
				"error", err,
			)
		}
		return nil, apperr.ToStatus(err)
	}
}

// ServerOptions returns the interceptor chain shared by every service.
func ServerOptions(logger *slog.Logger) []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			MetadataServerInterceptor(logger),
			ErrorServerInterceptor(logger),
		),
	}
}
