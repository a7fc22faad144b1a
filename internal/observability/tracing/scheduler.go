package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const schedulerTracerName = "github.com/KasumiMercury/primind-practice-reminder/internal/service/scheduler"

func SchedulerTracer() trace.Tracer {
	return otel.Tracer(schedulerTracerName)
}

func StartResyncSpan(ctx context.Context, reminderID string, enabled bool, repeatDays int) (context.Context, trace.Span) {
	return SchedulerTracer().Start(ctx, "reminder.resync",
		trace.WithAttributes(
			attribute.String("reminder_id", reminderID),
			attribute.Bool("reminder.enabled", enabled),
			attribute.Int("reminder.repeat_days", repeatDays),
		),
	)
}

func StartRetractSpan(ctx context.Context, reminderID string) (context.Context, trace.Span) {
	return SchedulerTracer().Start(ctx, "reminder.retract",
		trace.WithAttributes(
			attribute.String("reminder_id", reminderID),
		),
	)
}

func StartResolveSpan(ctx context.Context, reminderID string) (context.Context, trace.Span) {
	return SchedulerTracer().Start(ctx, "reminder.resolve",
		trace.WithAttributes(
			attribute.String("reminder_id", reminderID),
		),
	)
}

func RecordResyncResult(span trace.Span, retracted, scheduled, failed int, err error) {
	span.SetAttributes(
		attribute.Int("resync.retracted_count", retracted),
		attribute.Int("resync.scheduled_count", scheduled),
		attribute.Int("resync.failed_count", failed),
	)
	RecordError(span, err)
}

func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

func ExtractFromHTTPRequest(ctx context.Context, req *http.Request) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(req.Header))
}
