package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type captureWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestPublishWritesJSONWithTraceHeaders(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	w := &captureWriter{}
	p := NewPublisher(w, "order-topic")

	require.NoError(t, p.Publish(ctx, "ORD-1", map[string]string{"orderReference": "ORD-1"}))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "order-topic", msg.Topic)
	assert.Equal(t, "ORD-1", string(msg.Key))

	var body map[string]string
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "ORD-1", body["orderReference"])

	extracted := trace.SpanContextFromContext(ExtractHeaders(context.Background(), msg.Headers))
	assert.Equal(t, traceID, extracted.TraceID())
}

func TestPublishWrapsWriterError(t *testing.T) {
	w := &captureWriter{err: errors.New("leader not available")}
	p := NewPublisher(w, "payment-topic")

	err := p.Publish(context.Background(), "k", struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment-topic")
}
