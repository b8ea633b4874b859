package sagalog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// TraceInfo holds the OTel identifiers extracted from a context.
type TraceInfo struct {
	TraceID string
	SpanID  string
}

// ExtractTraceInfo reads the active span from ctx. Both fields are empty
// when ctx carries no valid span.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NewEntry builds a SagaLog row stamped with the trace of ctx.
//
//	entry := sagalog.NewEntry(ctx, sagaID, sagalog.StatusStepDone, "reserve_products", "reserve_products")
//	_ = repo.Save(ctx, entry)
func NewEntry(ctx context.Context, sagaID string, status Status, currentStep, furthestStep string) *SagaLog {
	ti := ExtractTraceInfo(ctx)
	return &SagaLog{
		SagaID:       sagaID,
		Status:       status,
		CurrentStep:  currentStep,
		FurthestStep: furthestStep,
		TraceID:      ti.TraceID,
		SpanID:       ti.SpanID,
		UpdatedAt:    time.Now().UTC(),
	}
}
