package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/api-gateway/core/ports"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/api-gateway/infra/httpx"
	customerrpc "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/customer/rpc"
	orderrpc "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/order/rpc"
	paymentrpc "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/payment/rpc"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/breaker/breakerrpc"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/config"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/grpcx"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/telemetry"
	productrpc "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/rpc"
)

func main() {
	log := telemetry.InitLogger("api-gateway", config.GetEnv("LOG_LEVEL", "info"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log); err != nil {
		log.Error("api gateway stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	flush, err := grpcx.StartTracing(ctx, "api-gateway", log)
	if err != nil {
		return err
	}
	defer flush()

	conns := map[string]string{
		"customer": config.GetEnv("CUSTOMER_SERVICE_ADDR", "localhost:9093"),
		"product":  config.GetEnv("PRODUCT_SERVICE_ADDR", "localhost:9092"),
		"payment":  config.GetEnv("PAYMENT_SERVICE_ADDR", "localhost:9091"),
		"order":    config.GetEnv("ORDER_SERVICE_ADDR", "localhost:9090"),
	}
	dialed := make(map[string]*grpc.ClientConn, len(conns))
	admins := make(map[string]ports.BreakerAdmin, len(conns))
	for service, addr := range conns {
		conn, err := grpcx.Dial(addr)
		if err != nil {
			return err
		}
		defer conn.Close()
		dialed[service] = conn
		admins[service] = breakerrpc.NewClient(conn)
	}

	handler := httpx.NewHandler(
		customerrpc.NewClient(dialed["customer"]),
		productrpc.NewClient(dialed["product"]),
		orderrpc.NewClient(dialed["order"]),
		paymentrpc.NewClient(dialed["payment"]),
		admins,
		log,
	)

	srv := &http.Server{
		Addr:              config.GetEnv("HTTP_ADDR", ":8080"),
		Handler:           httpx.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown error", "error", err)
		}
	}()

	log.Info("api gateway running", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
