package vtrenderer

import (
	"context"

	"github.com/jamesrr39/go-tracing"
)

// startSpan opens a span if the context carries a trace. The returned func ends it.
func startSpan(ctx context.Context, name string) func() {
	if ctx.Value(tracing.TracerCtxKey) == nil || ctx.Value(tracing.TraceCtxKey) == nil {
		return func() {}
	}

	span := tracing.StartSpan(ctx, name)
	return func() {
		span.End(ctx)
	}
}
