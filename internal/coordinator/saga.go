package coordinator

import (
	"context"
	"log/slog"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/coordinator/sagalog"
)

// Step represents a single unit of work in the saga. Steps have no
// compensating action: when a step fails, the effects of the steps before
// it stay committed and the saga log records how far it got.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
}

// Degrader is implemented by steps that can succeed without one of their
// side effects. MissingSteps is read after Execute returns nil.
type Degrader interface {
	MissingSteps() []string
}

type Result struct {
	SagaID       string
	FurthestStep string
	MissingSteps []string
}

func (r Result) Degraded() bool { return len(r.MissingSteps) > 0 }

// Orchestrator runs a fixed sequence of Steps and records every transition
// in the saga log.
type Orchestrator struct {
	sagaID  string
	steps   []Step
	store   sagalog.Repository
	logger  *slog.Logger
	payload string
	orderID func() int64
}

type Option func(*Orchestrator)

// WithPayload stores the request JSON on the STARTED row.
func WithPayload(payload string) Option {
	return func(o *Orchestrator) { o.payload = payload }
}

// WithOrderID stamps each row with the order id once fn reports a non-zero value.
func WithOrderID(fn func() int64) Option {
	return func(o *Orchestrator) { o.orderID = fn }
}

func NewOrchestrator(sagaID string, steps []Step, store sagalog.Repository, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sagaID:  sagaID,
		steps:   steps,
		store:   store,
		logger:  logger.With("saga_id", sagaID),
		orderID: func() int64 { return 0 },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start runs the steps strictly in order and stops at the first failure.
// The failing step's error is returned unchanged.
func (o *Orchestrator) Start(ctx context.Context) (Result, error) {
	res := Result{SagaID: o.sagaID}

	started := sagalog.NewEntry(ctx, o.sagaID, sagalog.StatusStarted, "", "")
	started.Payload = o.payload
	o.record(ctx, started)

	for _, step := range o.steps {
		o.logger.DebugContext(ctx, "executing step", "step", step.Name())

		if err := step.Execute(ctx); err != nil {
			o.logger.WarnContext(ctx, "saga step failed",
				"step", step.Name(), "furthest_step", res.FurthestStep, "error", err)
			failed := sagalog.NewEntry(ctx, o.sagaID, sagalog.StatusFailed, step.Name(), res.FurthestStep)
			failed.Errors = []string{step.Name() + ": " + err.Error()}
			o.record(ctx, failed)
			return res, err
		}

		res.FurthestStep = step.Name()
		if d, ok := step.(Degrader); ok {
			res.MissingSteps = append(res.MissingSteps, d.MissingSteps()...)
		}
		o.record(ctx, sagalog.NewEntry(ctx, o.sagaID, sagalog.StatusStepDone, step.Name(), res.FurthestStep))
	}

	status := sagalog.StatusCompleted
	if res.Degraded() {
		status = sagalog.StatusCompletedDegraded
	}
	o.record(ctx, sagalog.NewEntry(ctx, o.sagaID, status, res.FurthestStep, res.FurthestStep))
	o.logger.InfoContext(ctx, "saga finished", "status", status, "missing_steps", res.MissingSteps)
	return res, nil
}

// record never fails the saga. A lost row only weakens recovery tooling.
func (o *Orchestrator) record(ctx context.Context, entry *sagalog.SagaLog) {
	entry.OrderID = o.orderID()
	if err := o.store.Save(ctx, entry); err != nil {
		o.logger.ErrorContext(ctx, "failed to write saga log",
			"status", entry.Status, "step", entry.CurrentStep, "error", err)
	}
}
