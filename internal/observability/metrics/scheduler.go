package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	schedulerMeterName = "reminder.scheduler"
)

type SchedulerMetrics struct {
	triggersScheduled metric.Int64Counter
	triggersRetracted metric.Int64Counter
	triggersFailed    metric.Int64Counter
	resyncDuration    metric.Float64Histogram
	resolutions       metric.Int64Counter
}

func NewSchedulerMetrics() (*SchedulerMetrics, error) {
	meter := otel.Meter(schedulerMeterName)

	triggersScheduled, err := meter.Int64Counter(
		"reminder_triggers_scheduled_total",
		metric.WithDescription("Total number of triggers registered with the notification center"),
		metric.WithUnit("{trigger}"),
	)
	if err != nil {
		return nil, err
	}

	triggersRetracted, err := meter.Int64Counter(
		"reminder_triggers_retracted_total",
		metric.WithDescription("Total number of pending triggers removed before re-expansion"),
		metric.WithUnit("{trigger}"),
	)
	if err != nil {
		return nil, err
	}

	triggersFailed, err := meter.Int64Counter(
		"reminder_triggers_failed_total",
		metric.WithDescription("Total number of triggers the notification center refused"),
		metric.WithUnit("{trigger}"),
	)
	if err != nil {
		return nil, err
	}

	resyncDuration, err := meter.Float64Histogram(
		"reminder_resync_duration_seconds",
		metric.WithDescription("Time spent retracting and re-expanding one reminder"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5,
		),
	)
	if err != nil {
		return nil, err
	}

	resolutions, err := meter.Int64Counter(
		"reminder_resolutions_total",
		metric.WithDescription("Activated notifications by resolution outcome"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerMetrics{
		triggersScheduled: triggersScheduled,
		triggersRetracted: triggersRetracted,
		triggersFailed:    triggersFailed,
		resyncDuration:    resyncDuration,
		resolutions:       resolutions,
	}, nil
}

func (m *SchedulerMetrics) RecordTriggersScheduled(ctx context.Context, kind string, count int) {
	m.triggersScheduled.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("kind", kind),
	))
}

func (m *SchedulerMetrics) RecordTriggersRetracted(ctx context.Context, count int) {
	m.triggersRetracted.Add(ctx, int64(count))
}

func (m *SchedulerMetrics) RecordTriggerFailed(ctx context.Context, kind string) {
	m.triggersFailed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
	))
}

func (m *SchedulerMetrics) RecordResyncDuration(ctx context.Context, enabled bool, duration time.Duration) {
	m.resyncDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.Bool("enabled", enabled),
	))
}

func (m *SchedulerMetrics) RecordResolution(ctx context.Context, outcome string) {
	m.resolutions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}
