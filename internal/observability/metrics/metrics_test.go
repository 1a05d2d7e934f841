package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("provider", "dlocal_go"),
		attribute.String("order_id", "VLX-1-abc"),
		attribute.String("outcome", "paid"),
	)
	require.Len(t, attrs, 2)
	keys := []attribute.Key{attrs[0].Key, attrs[1].Key}
	assert.Contains(t, keys, attribute.Key("provider"))
	assert.Contains(t, keys, attribute.Key("outcome"))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordPaymentLinkCreated(ctx, "usd", "demo")
		m.RecordPaymentProcessed(ctx, "dlocal_go", "paid")
		m.RecordWebhookEvent(ctx, "dlocal_go", "paid")
		m.RecordNotificationCreated(ctx, "payment")
		m.RecordRateLimitAllowed(ctx, "/api/deals")
		m.RecordRateLimitDenied(ctx, "/api/deals", "exhausted")
		m.RecordSchedulerJob(ctx, "expire_payment_links", "ok", 3)
	})
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{ServiceName: "verlyx-hub"}, noop.NewMeterProvider())
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		m.RecordPaymentLinkCreated(context.Background(), "USD", "live")
	})
}

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	totals := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[m.Name] += dp.Value
			}
		}
	}
	return totals
}

func TestSchedulerJobCountsRunsAndRows(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	m, err := New(Config{Prefix: "vx"}, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordSchedulerJob(ctx, "expire_payment_links", "ok", 4)
	m.RecordSchedulerJob(ctx, "overdue_task_reminders", "ok", 0)
	m.RecordPaymentLinkCreated(ctx, " usd ", "demo")

	totals := collectSums(t, reader)
	assert.Equal(t, int64(2), totals["vx_scheduler_job_runs_total"])
	assert.Equal(t, int64(4), totals["vx_scheduler_job_processed_total"])
	assert.Equal(t, int64(1), totals["vx_payment_links_created_total"])
	_, denied := totals["vx_rate_limit_denied_total"]
	assert.False(t, denied)
}
