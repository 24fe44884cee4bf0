package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	OutcomeSucceeded = "succeeded"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

var (
	attrOutcome = attribute.Key("outcome")
	attrReason  = attribute.Key("reason")
)

type Instruments struct {
	deliveries     metric.Int64Counter
	commitDuration metric.Float64Histogram
}

func NewInstruments(meter metric.Meter) (*Instruments, error) {
	deliveries, err := meter.Int64Counter("shopsync.webhook.deliveries",
		metric.WithDescription("Product webhook deliveries by outcome"),
		metric.WithUnit("{delivery}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create deliveries counter: %w", err)
	}

	commitDuration, err := meter.Float64Histogram("shopsync.store.commit.duration",
		metric.WithDescription("Document store commit latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create commit duration histogram: %w", err)
	}

	return &Instruments{deliveries: deliveries, commitDuration: commitDuration}, nil
}

// Global builds instruments on the global meter provider.
func Global() (*Instruments, error) {
	return NewInstruments(otel.Meter(ScopeName))
}

func Noop() *Instruments {
	i, _ := NewInstruments(noop.NewMeterProvider().Meter(ScopeName))
	return i
}

// RecordDelivery counts one delivery. reason is empty on success.
func (i *Instruments) RecordDelivery(ctx context.Context, outcome, reason string) {
	attrs := []attribute.KeyValue{attrOutcome.String(outcome)}
	if reason != "" {
		attrs = append(attrs, attrReason.String(reason))
	}
	i.deliveries.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (i *Instruments) RecordCommit(ctx context.Context, d time.Duration, outcome string) {
	i.commitDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attrOutcome.String(outcome)))
}
