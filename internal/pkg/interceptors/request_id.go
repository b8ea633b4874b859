package interceptors

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/interceptors/constants"
)

// RequestID returns the request id attached to ctx by the HTTP middleware or
// by MetadataServerInterceptor.
func RequestID(ctx context.Context) string {
	return lookup(ctx, constants.ContextKeyRequestID, constants.HeaderRequestID)
}

// IdempotencyKey returns the caller-supplied idempotency key, if any.
func IdempotencyKey(ctx context.Context) string {
	return lookup(ctx, constants.ContextKeyIdempotencyKey, constants.HeaderIdempotencyKey)
}

func lookup(ctx context.Context, key any, header string) string {
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(header); len(vals) > 0 {
			return vals[0]
		}
	}
	if md, ok := metadata.FromOutgoingContext(ctx); ok {
		if vals := md.Get(header); len(vals) > 0 {
			return vals[0]
		}
	}
	return ""
}

// RequestIDClientInterceptor forwards the request id of an inbound call to
// every outbound call made while serving it. The idempotency key is not
// forwarded; it belongs to the edge request only.
func RequestIDClientInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		if md, ok := metadata.FromOutgoingContext(ctx); !ok || len(md.Get(constants.HeaderRequestID)) == 0 {
			if id := RequestID(ctx); id != "" {
				ctx = metadata.AppendToOutgoingContext(ctx, constants.HeaderRequestID, id)
			}
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}
