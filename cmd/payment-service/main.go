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

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/payment/app"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/payment/notification"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/payment/repository"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/payment/rpc"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/breaker"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/breaker/breakerrpc"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/cache"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/config"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/grpcx"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/messaging"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/postgres"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/telemetry"
)

func main() {
	log := telemetry.InitLogger("payment-service", config.GetEnv("LOG_LEVEL", "info"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log); err != nil {
		log.Error("payment service stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	flush, err := grpcx.StartTracing(ctx, "payment-service", log)
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
		repo = repository.NewPostgres(pool)
	}

	receipts := cache.NewMemoryCache("payment")
	if redisAddr := config.GetEnv("REDIS_ADDR", ""); redisAddr != "" {
		receipts = cache.NewRedisCache(redisAddr, "payment")
	}

	var writer messaging.MessageWriter = messaging.LogWriter{Logger: log}
	if brokers := config.GetList("KAFKA_BROKERS"); len(brokers) > 0 {
		kw := messaging.NewWriter(brokers)
		defer kw.Close()
		writer = kw
	}
	producer := notification.NewProducer(
		messaging.NewPublisher(writer, config.GetEnv("PAYMENT_TOPIC", "payment-topic")), log)

	addr := ":" + config.GetEnv("PORT", "9091")
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := grpcx.NewServer(log)
	rpc.Register(srv, app.NewService(repo, producer, receipts, breakers, log))
	breakerrpc.Register(srv, breakers)
	healthpb.RegisterHealthServer(srv, health.NewServer())

	return grpcx.Serve(ctx, srv, lis, log)
}
