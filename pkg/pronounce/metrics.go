package pronounce

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// meterName is the instrumentation scope of evaluator metrics.
const meterName = "github.com/haivivi/pronounce/pkg/pronounce"

// Metrics holds the evaluator's OpenTelemetry instruments.
type Metrics struct {
	// Duration tracks evaluation latency from audio bytes to decision.
	Duration metric.Float64Histogram

	// Cost tracks the aggregated DTW cost of graded attempts.
	Cost metric.Float64Histogram

	// Outcomes counts evaluations. Attributes: status, tier.
	Outcomes metric.Int64Counter
}

var latencyBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

var costBuckets = []float64{25, 50, 75, 100, 110, 120, 130, 150, 200, 300}

// NewMetrics creates the instruments from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Duration, err = m.Float64Histogram("pronounce.evaluation.duration",
		metric.WithDescription("Latency of pronunciation evaluation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Cost, err = m.Float64Histogram("pronounce.evaluation.cost",
		metric.WithDescription("Aggregated alignment cost of graded attempts."),
		metric.WithExplicitBucketBoundaries(costBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Outcomes, err = m.Int64Counter("pronounce.evaluations",
		metric.WithDescription("Evaluations by response status and tier."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

// noopMetrics returns instruments that record nothing.
func noopMetrics() *Metrics {
	met, _ := NewMetrics(noop.NewMeterProvider())
	return met
}

func (m *Metrics) record(ctx context.Context, tier Tier, status Status, cost float64, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("status", string(status)),
		attribute.String("tier", string(tier)),
	)
	m.Outcomes.Add(ctx, 1, attrs)
	m.Duration.Record(ctx, elapsed.Seconds(), attrs)
	if status == StatusGraded {
		m.Cost.Record(ctx, cost, metric.WithAttributes(attribute.String("tier", string(tier))))
	}
}
