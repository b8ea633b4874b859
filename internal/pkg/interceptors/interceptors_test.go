package interceptors

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/interceptors/constants"
)

var info = &grpc.UnaryServerInfo{FullMethod: "/test.Service/Method"}

func TestMetadataServerInterceptorStoresValues(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
		constants.HeaderRequestID, "req-1",
		constants.HeaderIdempotencyKey, "idem-1",
	))

	var gotID, gotKey string
	_, err := MetadataServerInterceptor(slog.Default())(ctx, nil, info, func(ctx context.Context, _ any) (any, error) {
		gotID = RequestID(ctx)
		gotKey = IdempotencyKey(ctx)
		return nil, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "req-1", gotID)
	assert.Equal(t, "idem-1", gotKey)
}

func TestErrorServerInterceptorMapsKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"not found", apperr.NotFound("order 7 not found"), codes.NotFound},
		{"business rule", apperr.BusinessRule("product 1 is out of stock"), codes.FailedPrecondition},
		{"validation", apperr.Validation("quantity must be positive"), codes.InvalidArgument},
		{"unavailable", apperr.Unavailable(errors.New("dial tcp"), "service unavailable"), codes.Unavailable},
		{"plain error", errors.New("boom"), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ErrorServerInterceptor(slog.Default())(context.Background(), nil, info,
				func(context.Context, any) (any, error) { return nil, tt.err })

			st, ok := status.FromError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, st.Code())
		})
	}
}

func TestUnavailableHidesCause(t *testing.T) {
	_, err := ErrorServerInterceptor(slog.Default())(context.Background(), nil, info,
		func(context.Context, any) (any, error) {
			return nil, apperr.Unavailable(errors.New("pq: connection refused"), "Customer service is currently unavailable")
		})

	st, _ := status.FromError(err)
	assert.Equal(t, "Customer service is currently unavailable", st.Message())
}

func TestRequestIDClientInterceptorForwardsID(t *testing.T) {
	ctx := context.WithValue(context.Background(), constants.ContextKeyRequestID, "req-9")

	var forwarded []string
	err := RequestIDClientInterceptor()(ctx, "/m", nil, nil, nil,
		func(ctx context.Context, _ string, _, _ any, _ *grpc.ClientConn, _ ...grpc.CallOption) error {
			md, _ := metadata.FromOutgoingContext(ctx)
			forwarded = md.Get(constants.HeaderRequestID)
			return nil
		})

	require.NoError(t, err)
	assert.Equal(t, []string{"req-9"}, forwarded)
}
