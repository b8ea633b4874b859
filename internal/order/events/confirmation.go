// Package events publishes order confirmations to Kafka.
package events

import (
	"context"
	"log/slog"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/order/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/messaging"
)

type ConfirmationPublisher struct {
	publisher *messaging.Publisher
	log       *slog.Logger
}

func NewConfirmationPublisher(publisher *messaging.Publisher, log *slog.Logger) *ConfirmationPublisher {
	return &ConfirmationPublisher{publisher: publisher, log: log}
}

// PublishConfirmation sends c keyed by the order reference. It is attempted
// once and has no breaker.
func (p *ConfirmationPublisher) PublishConfirmation(ctx context.Context, c domain.Confirmation) error {
	p.log.InfoContext(ctx, "sending order confirmation",
		"topic", p.publisher.Topic(), "order_reference", c.OrderReference, "products", len(c.Products))
	return p.publisher.Publish(ctx, c.OrderReference, c)
}
