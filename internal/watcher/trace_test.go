package watcher_test

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/raoulx24/watchfiles/internal/fs/memfs"
	"github.com/raoulx24/watchfiles/internal/watcher"
)

func spansNamed(spans []sdktrace.ReadOnlySpan, name string) []sdktrace.ReadOnlySpan {
	var out []sdktrace.ReadOnlySpan
	for _, s := range spans {
		if s.Name() == name {
			out = append(out, s)
		}
	}
	return out
}

func TestWatch_Spans(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		sr := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
		defer func() { _ = tp.Shutdown(context.Background()) }()

		mfs := memfs.New()
		mfs.Write("/in/a.csv", "a")
		mfs.Write("/in/b.csv", "b")

		h := &recorder{fn: func(path string) error {
			if path == "/in/b.csv" {
				return errors.New("rejected")
			}
			return nil
		}}
		_, err := newWatcher(mfs, h, 0).
			WithTracerProvider(tp).
			Watch(context.Background(), watcher.FilesFound(2))
		require.NoError(t, err)

		spans := sr.Ended()
		watches := spansNamed(spans, "watch")
		cycles := spansNamed(spans, "cycle")
		dispatches := spansNamed(spans, "dispatch")
		require.Len(t, watches, 1)
		require.Len(t, cycles, 2)
		require.Len(t, dispatches, 2)

		assert.Contains(t, watches[0].Attributes(), attribute.Int("watch.outcomes", 2))
		assert.Contains(t, watches[0].Attributes(), attribute.Int("watch.failed", 1))
		for _, c := range cycles {
			assert.Equal(t, watches[0].SpanContext().SpanID(), c.Parent().SpanID())
		}

		assert.Equal(t, cycles[1].SpanContext().SpanID(), dispatches[0].Parent().SpanID())
		assert.Contains(t, dispatches[0].Attributes(), attribute.String("file.path", "/in/a.csv"))
		assert.Equal(t, codes.Unset, dispatches[0].Status().Code)

		assert.Contains(t, dispatches[1].Attributes(), attribute.String("dispatch.failure", "handler"))
		assert.Equal(t, codes.Error, dispatches[1].Status().Code)
	})
}
