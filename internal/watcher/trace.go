package watcher

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/raoulx24/watchfiles/internal/watcher"

func endCycleSpan(span trace.Span, r CycleReport) {
	span.SetAttributes(
		attribute.Int("cycle.tracked", r.Tracked),
		attribute.Int("cycle.mature", r.Mature),
		attribute.Int("cycle.dispatched", r.Dispatched),
		attribute.Int("cycle.failed", r.Failed),
	)
	if r.ScanErr != nil {
		span.RecordError(r.ScanErr)
		span.SetStatus(codes.Error, "scan failed")
	}
	span.End()
}

func endDispatchSpan(span trace.Span, o Outcome) {
	if o.Status == Failed {
		span.SetAttributes(attribute.String("dispatch.failure", o.Kind.String()))
		span.RecordError(o.Err)
		span.SetStatus(codes.Error, o.Reason())
	}
	span.End()
}
