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

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/coordinator"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/coordinator/sagalog"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/coordinator/sagalog/sqlite"
	customerrpc "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/customer/rpc"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/order/app"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/order/clients"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/order/events"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/order/ports"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/order/repository"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/order/rpc"
	paymentrpc "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/payment/rpc"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/breaker"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/breaker/breakerrpc"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/cache"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/config"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/grpcx"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/messaging"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/postgres"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/telemetry"
	productrpc "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/rpc"
)

func main() {
	log := telemetry.InitLogger("order-service", config.GetEnv("LOG_LEVEL", "info"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log); err != nil {
		log.Error("order service stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	flush, err := grpcx.StartTracing(ctx, "order-service", log)
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

	policy, err := coordinator.ParsePublishPolicy(config.GetEnv("PUBLISH_FAILURE_POLICY", string(coordinator.PublishFail)))
	if err != nil {
		return err
	}

	var orders ports.OrderRepository = repository.NewMemory()
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
		orders = repository.NewPostgres(pool)
	}

	var sagas sagalog.Repository = sagalog.NewMemoryRepository()
	if path := config.GetEnv("SAGA_DB_PATH", ""); path != "" {
		store, err := sqlite.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()
		sagas = store
	}

	results := cache.NewMemoryCache("order")
	if redisAddr := config.GetEnv("REDIS_ADDR", ""); redisAddr != "" {
		results = cache.NewRedisCache(redisAddr, "order")
	}

	var writer messaging.MessageWriter = messaging.LogWriter{Logger: log}
	if brokers := config.GetList("KAFKA_BROKERS"); len(brokers) > 0 {
		kw := messaging.NewWriter(brokers)
		defer kw.Close()
		writer = kw
	}

	customerConn, err := grpcx.Dial(config.GetEnv("CUSTOMER_SERVICE_ADDR", "localhost:9093"))
	if err != nil {
		return err
	}
	defer customerConn.Close()

	productConn, err := grpcx.Dial(config.GetEnv("PRODUCT_SERVICE_ADDR", "localhost:9092"))
	if err != nil {
		return err
	}
	defer productConn.Close()

	paymentConn, err := grpcx.Dial(config.GetEnv("PAYMENT_SERVICE_ADDR", "localhost:9091"))
	if err != nil {
		return err
	}
	defer paymentConn.Close()

	deps := coordinator.Dependencies{
		Customers:     clients.NewCustomer(customerrpc.NewClient(customerConn), breakers, log),
		Products:      clients.NewProduct(productrpc.NewClient(productConn), breakers, log),
		Orders:        orders,
		Payments:      clients.NewPayment(paymentrpc.NewClient(paymentConn), breakers, log),
		Publisher:     events.NewConfirmationPublisher(messaging.NewPublisher(writer, config.GetEnv("ORDER_TOPIC", "order-topic")), log),
		PublishPolicy: policy,
		Logger:        log,
	}

	addr := ":" + config.GetEnv("PORT", "9090")
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := grpcx.NewServer(log)
	rpc.Register(srv, app.NewService(deps, sagas, results, breakers,
		app.WithStuckAfter(config.GetDuration("SAGA_STUCK_AFTER", app.DefaultStuckAfter))))
	breakerrpc.Register(srv, breakers)
	healthpb.RegisterHealthServer(srv, health.NewServer())

	return grpcx.Serve(ctx, srv, lis, log)
}
