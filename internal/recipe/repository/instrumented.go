package repository

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/recipebox/recipe-service/internal/recipe"
	"github.com/recipebox/recipe-service/pkg/metrics"
)

// Instrumented wraps a Repository with a span per call plus outcome counts
// and latencies, labelled with the backend name.
type Instrumented struct {
	next    Repository
	backend string
	tracer  trace.Tracer
}

func NewInstrumented(next Repository, backend string) *Instrumented {
	return &Instrumented{next: next, backend: backend, tracer: otel.Tracer("recipe-service/repository")}
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case err != nil:
		return "error"
	}
	return "ok"
}

// begin starts the span for op; the returned func ends it and records metrics.
func (i *Instrumented) begin(ctx context.Context, op string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := i.tracer.Start(ctx, "store."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("db.system", i.backend)))
	return ctx, func(err error) {
		outcome := outcomeOf(err)
		span.SetAttributes(attribute.String("store.outcome", outcome))
		if outcome == "error" {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		metrics.StoreOperations.WithLabelValues(i.backend, op, outcome).Inc()
		metrics.StoreLatency.WithLabelValues(i.backend, op).Observe(time.Since(start).Seconds())
	}
}

func (i *Instrumented) Create(ctx context.Context, r *recipe.Recipe) (id string, err error) {
	ctx, done := i.begin(ctx, "create")
	defer func() { done(err) }()
	return i.next.Create(ctx, r)
}

func (i *Instrumented) Get(ctx context.Context, id string) (r *recipe.Recipe, err error) {
	ctx, done := i.begin(ctx, "get")
	defer func() { done(err) }()
	return i.next.Get(ctx, id)
}

func (i *Instrumented) List(ctx context.Context) (out []*recipe.Recipe, err error) {
	ctx, done := i.begin(ctx, "list")
	defer func() { done(err) }()
	return i.next.List(ctx)
}

func (i *Instrumented) Update(ctx context.Context, id string, fields map[string]any, updatedAt time.Time) (err error) {
	ctx, done := i.begin(ctx, "update")
	defer func() { done(err) }()
	return i.next.Update(ctx, id, fields, updatedAt)
}

func (i *Instrumented) Delete(ctx context.Context, id string) (err error) {
	ctx, done := i.begin(ctx, "delete")
	defer func() { done(err) }()
	return i.next.Delete(ctx, id)
}

func (i *Instrumented) Ping(ctx context.Context) (err error) {
	ctx, done := i.begin(ctx, "ping")
	defer func() { done(err) }()
	return i.next.Ping(ctx)
}
