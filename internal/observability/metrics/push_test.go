package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/golang/snappy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/prometheus/prompb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newPushRegistry(t *testing.T) *prometheus.Registry {
	t.Helper()
	registry := prometheus.NewRegistry()

	links := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "verlyx_payment_links_created_total",
		Help: "Payment links created.",
	}, []string{"mode", "currency"})
	inflight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "verlyx_http_inflight_requests",
		Help: "In-flight requests.",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "verlyx_http_request_duration_seconds",
		Help: "Request latency.",
	})
	registry.MustRegister(links, inflight, latency)

	links.WithLabelValues("demo", "USD").Add(3)
	inflight.Set(2)
	latency.Observe(0.2)
	return registry
}

func TestBuildRemoteWriteSeriesSkipsHistograms(t *testing.T) {
	families, err := newPushRegistry(t).Gather()
	require.NoError(t, err)

	series := buildRemoteWriteSeries(families, 1700000000000)
	require.Len(t, series, 2)

	byName := map[string]prompb.TimeSeries{}
	for _, s := range series {
		assert.Equal(t, "__name__", s.Labels[0].Name)
		byName[s.Labels[0].Value] = s
	}

	links := byName["verlyx_payment_links_created_total"]
	require.Len(t, links.Samples, 1)
	assert.Equal(t, 3.0, links.Samples[0].Value)
	assert.Equal(t, int64(1700000000000), links.Samples[0].Timestamp)
	assert.Equal(t, []prompb.Label{
		{Name: "__name__", Value: "verlyx_payment_links_created_total"},
		{Name: "currency", Value: "USD"},
		{Name: "mode", Value: "demo"},
	}, links.Labels)

	assert.Equal(t, 2.0, byName["verlyx_http_inflight_requests"].Samples[0].Value)
}

func TestRemoteWritePusherSendsSnappyProtobuf(t *testing.T) {
	var (
		mu      sync.Mutex
		headers http.Header
		written prompb.WriteRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		payload, err := snappy.Decode(nil, body)
		require.NoError(t, err)

		mu.Lock()
		defer mu.Unlock()
		headers = r.Header.Clone()
		require.NoError(t, written.Unmarshal(payload))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	pusher := NewRemoteWritePusher(srv.URL+"/api/v1/write", " secret-token ")
	require.NoError(t, pusher.Push(context.Background(), newPushRegistry(t)))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "snappy", headers.Get("Content-Encoding"))
	assert.Equal(t, "application/x-protobuf", headers.Get("Content-Type"))
	assert.Equal(t, "Bearer secret-token", headers.Get("Authorization"))
	assert.Len(t, written.Timeseries, 2)
}

func TestRemoteWritePusherReportsRejectedWrites(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewRemoteWritePusher(srv.URL, "").Push(context.Background(), newPushRegistry(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestPushgatewayPusherUsesJobAndGrouping(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		method, path = r.Method, r.URL.Path
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	pusher := NewPushgatewayPusher(srv.URL, "verlyx-hub", map[string]string{"environment": "staging", "empty": " "})
	require.NoError(t, pusher.Push(context.Background(), newPushRegistry(t)))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.True(t, strings.HasPrefix(path, "/metrics/job/verlyx-hub"), path)
	assert.Contains(t, path, "/environment/staging")
	assert.NotContains(t, path, "empty")
}

func TestPushgatewayPusherRequiresJob(t *testing.T) {
	err := NewPushgatewayPusher("http://localhost:9091", " ", nil).Push(context.Background(), prometheus.NewRegistry())
	assert.Error(t, err)
}

func TestNewPusher(t *testing.T) {
	log := zaptest.NewLogger(t)

	assert.Nil(t, NewPusher(PushConfig{}, log))
	assert.Nil(t, NewPusher(PushConfig{Exporter: ExporterRemoteWrite}, log))
	assert.Nil(t, NewPusher(PushConfig{Exporter: ExporterRemoteWrite, Endpoint: "not a url"}, log))
	assert.Nil(t, NewPusher(PushConfig{Exporter: "statsd", Endpoint: "http://localhost:8125"}, log))

	assert.IsType(t, &RemoteWritePusher{}, NewPusher(PushConfig{
		Exporter: " Prometheus_Remote_Write ",
		Endpoint: "https://metrics.verlyx.com/api/v1/write",
	}, log))
	assert.IsType(t, &PushgatewayPusher{}, NewPusher(PushConfig{
		Exporter: ExporterPushgateway,
		Endpoint: "http://pushgateway:9091",
		Job:      "verlyx-hub",
	}, log))
}
