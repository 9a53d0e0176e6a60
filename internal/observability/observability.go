// Package observability records pipeline operation metrics and trace spans.
package observability

import (
	"context"
	"time"
)

// Operation names used as metric and span labels.
const (
	OpPaginate = "paginate"
	OpMerge    = "merge"
	OpAssemble = "assemble"
	OpFetch    = "fetch_attachment"
	OpRecord   = "ledger_record"
)

// OutcomeOK labels successful operations; failures use the error kind.
const OutcomeOK = "ok"

// Recorder observes the outcome and latency of an operation.
type Recorder interface {
	Observe(ctx context.Context, operation, outcome string, duration time.Duration)
}

// Span is an in-flight traced operation.
type Span interface {
	End(err error)
}

// Tracer starts spans.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, Span)
}

// Noop implements Recorder and Tracer by discarding everything.
type Noop struct{}

func (Noop) Observe(context.Context, string, string, time.Duration) {}

func (Noop) Start(ctx context.Context, _ string) (context.Context, Span) { return ctx, noopSpan{} }

type noopSpan struct{}

func (noopSpan) End(error) {}
