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

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/breaker"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/breaker/breakerrpc"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/config"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/grpcx"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/postgres"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/telemetry"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/app"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/repository"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/rpc"
)

func main() {
	log := telemetry.InitLogger("product-service", config.GetEnv("LOG_LEVEL", "info"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log); err != nil {
		log.Error("product service stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	flush, err := grpcx.StartTracing(ctx, "product-service", log)
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

	categories := config.GetList("PRODUCT_CATEGORIES")
	if len(categories) == 0 {
		categories = []string{"General"}
	}

	var repo app.Repository
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
		pg := repository.NewPostgres(log, pool)
		if err := pg.SeedCategories(ctx, categories...); err != nil {
			return err
		}
		repo = pg
	} else {
		log.Warn("PG_URL not set, products are kept in memory")
		seeded := make([]domain.Category, len(categories))
		for i, name := range categories {
			seeded[i] = domain.Category{ID: int64(i + 1), Name: name}
		}
		repo = repository.NewMemory(seeded...)
	}

	addr := ":" + config.GetEnv("PORT", "9092")
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
