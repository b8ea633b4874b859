// Package messaging publishes JSON events to Kafka with the W3C trace
// context carried in message headers.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 5 * time.Second,
	}
}

// Publisher writes JSON values to a single topic.
type Publisher struct {
	writer MessageWriter
	topic  string
}

func NewPublisher(writer MessageWriter, topic string) *Publisher {
	return &Publisher{writer: writer, topic: topic}
}

func (p *Publisher) Topic() string { return p.topic }

// Publish sends v once. Delivery is not retried here.
func (p *Publisher) Publish(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("messaging: marshal %s event: %w", p.topic, err)
	}
	msg := kafka.Message{
		Topic:   p.topic,
		Key:     []byte(key),
		Value:   payload,
		Headers: InjectHeaders(ctx, nil),
		Time:    time.Now().UTC(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("messaging: write to %s: %w", p.topic, err)
	}
	return nil
}

func InjectHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return headers
}

func ExtractHeaders(ctx context.Context, headers []kafka.Header) context.Context {
	carrier := propagation.MapCarrier{}
	for _, h := range headers {
		carrier[h.Key] = string(h.Value)
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

// LogWriter stands in for Kafka when no brokers are configured.
type LogWriter struct {
	Logger *slog.Logger
}

func (w LogWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		w.Logger.InfoContext(ctx, "event not sent to kafka, no brokers configured",
			"topic", m.Topic,
			"key", string(m.Key),
			"payload", string(m.Value),
		)
	}
	return nil
}
