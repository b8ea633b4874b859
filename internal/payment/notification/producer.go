// Package notification sends payment notifications to Kafka.
package notification

import (
	"context"
	"log/slog"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/payment/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/messaging"
)

type Producer struct {
	publisher *messaging.Publisher
	log       *slog.Logger
}

func NewProducer(publisher *messaging.Publisher, log *slog.Logger) *Producer {
	return &Producer{publisher: publisher, log: log}
}

// Notify publishes n keyed by its order reference.
func (p *Producer) Notify(ctx context.Context, n domain.Notification) error {
	p.log.InfoContext(ctx, "sending payment notification",
		"topic", p.publisher.Topic(), "order_reference", n.OrderReference)
	return p.publisher.Publish(ctx, n.OrderReference, n)
}
