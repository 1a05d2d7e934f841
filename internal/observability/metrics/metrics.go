package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
	Prefix           string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	paymentLinksCreated metric.Int64Counter
	paymentsProcessed   metric.Int64Counter
	webhookEvents       metric.Int64Counter
	notifications       metric.Int64Counter
	rateLimitAllowed    metric.Int64Counter
	rateLimitDenied     metric.Int64Counter
	schedulerJobs       metric.Int64Counter
	schedulerProcessed  metric.Int64Counter
}

const exportInterval = 10 * time.Second

// NewProvider registers the global meter provider. With OTel disabled the
// provider is a no-op and the domain counters cost nothing.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, fmt.Errorf("metrics exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(exportInterval))),
		sdkmetric.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("deployment.environment", cfg.Environment),
		)),
	)
	otel.SetMeterProvider(provider)
	if lc != nil {
		lc.Append(fx.StopHook(provider.Shutdown))
	}
	if log != nil {
		log.Info("metrics export enabled",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
			zap.Duration("interval", exportInterval),
		)
	}
	return provider, nil
}

// New registers the domain counters on the provider's meter. Every
// Record method is a no-op on a nil *Metrics.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "verlyx-hub"
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "verlyx"
	}
	meter := provider.Meter(name)

	m := &Metrics{}
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.paymentLinksCreated, "payment_links_created_total", "Payment links issued, by currency and live or demo mode."},
		{&m.paymentsProcessed, "payments_processed_total", "Card payment attempts, by provider and outcome."},
		{&m.webhookEvents, "payment_webhook_events_total", "Gateway webhook notifications, by mapped status."},
		{&m.notifications, "notifications_created_total", "In-app notifications created, by type."},
		{&m.rateLimitAllowed, "rate_limit_allowed_total", "Requests admitted by the rate limiter."},
		{&m.rateLimitDenied, "rate_limit_denied_total", "Requests refused by the rate limiter."},
		{&m.schedulerJobs, "scheduler_job_runs_total", "Background job runs, by job and outcome."},
		{&m.schedulerProcessed, "scheduler_job_processed_total", "Rows changed by background jobs."},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(prefix+"_"+c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", c.name, err)
		}
		*c.dst = counter
	}
	return m, nil
}

func (m *Metrics) add(ctx context.Context, counter metric.Int64Counter, n int64, attrs ...attribute.KeyValue) {
	if m == nil || counter == nil || n <= 0 {
		return
	}
	counter.Add(ctx, n, metric.WithAttributes(FilterAttributes(attrs...)...))
}

// RecordPaymentLinkCreated counts issued links; mode is "live" or "demo".
func (m *Metrics) RecordPaymentLinkCreated(ctx context.Context, currency, mode string) {
	if m == nil {
		return
	}
	m.add(ctx, m.paymentLinksCreated, 1,
		attribute.String("currency", strings.ToUpper(strings.TrimSpace(currency))),
		attribute.String("mode", strings.TrimSpace(mode)),
	)
}

func (m *Metrics) RecordPaymentProcessed(ctx context.Context, provider, outcome string) {
	if m == nil {
		return
	}
	m.add(ctx, m.paymentsProcessed, 1, attribute.String("provider", provider), attribute.String("outcome", outcome))
}

func (m *Metrics) RecordWebhookEvent(ctx context.Context, provider, status string) {
	if m == nil {
		return
	}
	m.add(ctx, m.webhookEvents, 1, attribute.String("provider", provider), attribute.String("status", status))
}

func (m *Metrics) RecordNotificationCreated(ctx context.Context, notificationType string) {
	if m == nil {
		return
	}
	m.add(ctx, m.notifications, 1, attribute.String("type", notificationType))
}

func (m *Metrics) RecordRateLimitAllowed(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	m.add(ctx, m.rateLimitAllowed, 1, attribute.String("endpoint", endpoint))
}

func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	m.add(ctx, m.rateLimitDenied, 1, attribute.String("endpoint", endpoint), attribute.String("reason", reason))
}

// RecordSchedulerJob counts one job run and the rows it touched.
func (m *Metrics) RecordSchedulerJob(ctx context.Context, job, outcome string, processed int) {
	if m == nil {
		return
	}
	m.add(ctx, m.schedulerJobs, 1, attribute.String("job", job), attribute.String("outcome", outcome))
	m.add(ctx, m.schedulerProcessed, int64(processed), attribute.String("job", job))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"endpoint":    {},
	"status_code": {},
	"provider":    {},
	"outcome":     {},
	"status":      {},
	"currency":    {},
	"mode":        {},
	"type":        {},
	"reason":      {},
	"job":         {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
