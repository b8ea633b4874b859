// Package rpcjsontest runs services over an in-memory listener for tests.
package rpcjsontest

import (
	"context"
	"log/slog"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/interceptors"
)

const bufSize = 1024 * 1024

// Dial starts a gRPC server with the shared interceptors, lets register add
// services to it and returns a client connection. Both are closed when the
// test ends.
func Dial(t testing.TB, register func(s *grpc.Server)) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(bufSize)
	srv := grpc.NewServer(interceptors.ServerOptions(slog.Default())...)
	register(srv)
	go func() {
		_ = srv.Serve(lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(interceptors.RequestIDClientInterceptor()),
	)
	if err != nil {
		t.Fatalf("dial bufnet: %v", err)
	}

	t.Cleanup(func() {
		_ = conn.Close()
		srv.Stop()
	})
	return conn
}
