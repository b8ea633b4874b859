package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/customer/app"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/customer/repository"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/customer/rpc"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/breaker"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/breaker/breakerrpc"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/config"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/grpcx"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/postgres"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/telemetry"
)

func main() {
	log := telemetry.InitLogger("customer-service", config.GetEnv("LOG_LEVEL", "info"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log); err != nil {
		log.Error("customer service stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	flush, err := grpcx.StartTracing(ctx, "customer-service", log)
	if err != nil {
		return err
	}
	defer flush()

	breakerCfg, err := config.Breaker()
	if err != nil {
		return err
	}
	breakers, err := breaker.New(breakerCfg, breaker.WithLogger(log))
	if err != nil {
		return err
	}

	var repo app.Repository = repository.NewMemory()
	if url := config.GetEnv("PG_URL", ""); url != "" {
		pool, err := postgres.Open(ctx, url)
		if err != nil {
			return err
		}
		defer pool.Close()
		if config.GetBool("PG_APPLY_SCHEMA", true) {
			if err := postgres.ApplySchema(ctx, pool, repository.Schema); err != nil {
				return err
			}
		}
		repo = repository.NewPostgres(log, pool)
	} else {
		log.Warn("PG_URL not set, customers are kept in memory")
	}

	addr := ":" + config.GetEnv("PORT", "9093")
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := grpcx.NewServer(log)
	rpc.Register(srv, app.NewService(repo, breakers, log))
	breakerrpc.Register(srv, breakers)
	healthpb.RegisterHealthServer(srv, health.NewServer())

	return grpcx.Serve(ctx, srv, lis, log)
}
