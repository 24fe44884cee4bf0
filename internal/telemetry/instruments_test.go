package telemetry

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestInstruments(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	inst, err := NewInstruments(mp.Meter(ScopeName))
	if err != nil {
		t.Fatalf("NewInstruments() error = %v", err)
	}

	inst.RecordDelivery(ctx, OutcomeSucceeded, "")
	inst.RecordDelivery(ctx, OutcomeRejected, "bad-signature")
	inst.RecordDelivery(ctx, OutcomeRejected, "bad-signature")
	inst.RecordCommit(ctx, 20*time.Millisecond, OutcomeSucceeded)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	got := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			got[m.Name] = m.Data
		}
	}

	sum, ok := got["shopsync.webhook.deliveries"].(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("deliveries data = %T, want Sum[int64]", got["shopsync.webhook.deliveries"])
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 3 {
		t.Errorf("deliveries total = %d, want 3", total)
	}
	if len(sum.DataPoints) != 2 {
		t.Errorf("deliveries series = %d, want 2", len(sum.DataPoints))
	}

	hist, ok := got["shopsync.store.commit.duration"].(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("commit duration data = %T, want Histogram[float64]", got["shopsync.store.commit.duration"])
	}
	if len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 1 {
		t.Errorf("commit duration points = %+v, want one observation", hist.DataPoints)
	}
}

func TestNoop(t *testing.T) {
	t.Parallel()
	inst := Noop()
	inst.RecordDelivery(t.Context(), OutcomeFailed, "timeout")
	inst.RecordCommit(t.Context(), time.Second, OutcomeFailed)
}

func TestSetupWithoutEndpoint(t *testing.T) {
	t.Parallel()
	shutdown, err := Setup(t.Context(), Config{ServiceName: "shopsync"}, "test")
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := shutdown(t.Context()); err != nil {
		t.Errorf("shutdown() error = %v", err)
	}
}
