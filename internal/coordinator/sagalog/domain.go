// Package sagalog records every state transition of an order saga.
//
// The log is append-only. The latest row of a saga tells where it stopped,
// and FurthestStep names the last step whose side effects were committed,
// so recovery tooling can find orders that were persisted but never paid.
package sagalog

import "time"

// Status represents the lifecycle state of a saga execution.
type Status string

const (
	StatusStarted           Status = "STARTED"
	StatusStepDone          Status = "STEP_DONE"
	StatusCompleted         Status = "COMPLETED"
	StatusCompletedDegraded Status = "COMPLETED_DEGRADED"
	StatusFailed            Status = "FAILED"
)

// Terminal reports whether no further rows are expected for the saga.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCompletedDegraded || s == StatusFailed
}

// SagaLog is a single row in the saga log.
type SagaLog struct {
	SagaID string `json:"sagaId"`
	Status Status `json:"status"`

	// CurrentStep is the step that just finished or failed.
	CurrentStep string `json:"currentStep"`

	// FurthestStep is the last step that completed successfully. Empty until
	// the first step is done.
	FurthestStep string `json:"furthestStep"`

	// OrderID is zero until the order row exists.
	OrderID int64 `json:"orderId,omitempty"`

	// Payload is the JSON request that started the saga. Only set on STARTED.
	Payload string `json:"payload,omitempty"`

	Errors []string `json:"errors,omitempty"`

	TraceID   string    `json:"traceId,omitempty"`
	SpanID    string    `json:"spanId,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Stuck reports whether this row, taken as the latest of its saga, marks a
// saga that will not move on by itself: it failed, or it has not been
// updated since idleSince.
func (e SagaLog) Stuck(idleSince time.Time) bool {
	if e.Status == StatusFailed {
		return true
	}
	return !e.Status.Terminal() && e.UpdatedAt.Before(idleSince)
}
