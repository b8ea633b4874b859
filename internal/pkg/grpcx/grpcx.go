// Package grpcx holds the server and client plumbing every service binary
// shares: tracer lifecycle, a gRPC server that stops with its context, and
// instrumented client connections.
package grpcx

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/config"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/interceptors"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/telemetry"
)

const shutdownTimeout = 5 * time.Second

// StartTracing installs the tracer for service and returns the function that
// flushes it on exit.
func StartTracing(ctx context.Context, service string, log *slog.Logger) (func(), error) {
	shutdown, err := telemetry.SetupTracer(ctx,
		config.GetEnv("OTEL_SERVICE_NAME", service),
		config.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""))
	if err != nil {
		return nil, err
	}
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Error("tracer shutdown error", "error", err)
		}
	}, nil
}

// NewServer builds a gRPC server carrying the shared interceptor chain and
// the otel stats handler.
func NewServer(log *slog.Logger) *grpc.Server {
	opts := append([]grpc.ServerOption{grpc.StatsHandler(otelgrpc.NewServerHandler())},
		interceptors.ServerOptions(log)...)
	return grpc.NewServer(opts...)
}

// Serve runs srv on lis until ctx is cancelled, then drains in-flight calls.
func Serve(ctx context.Context, srv *grpc.Server, lis net.Listener, log *slog.Logger) error {
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		log.Info("shutting down gRPC server")
		srv.GracefulStop()
	}()

	log.Info("gRPC server running", "addr", lis.Addr().String())
	err := srv.Serve(lis)
	if errors.Is(err, grpc.ErrServerStopped) {
		err = nil
	}
	if err != nil {
		return err
	}
	<-stopped
	return nil
}

// Dial opens a plaintext client connection that propagates trace context and
// the request id.
func Dial(addr string) (*grpc.ClientConn, error) {
	return grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithUnaryInterceptor(interceptors.RequestIDClientInterceptor()),
	)
}
