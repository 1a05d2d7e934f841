package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// TelemetryConfig carries logging, tracing and metrics settings.
type TelemetryConfig struct {
	// DeploymentEnv overrides Environment in telemetry labels only.
	DeploymentEnv string
	LogLevel      string
	LogFormat     string

	OTelEnabled      bool
	OTLPEndpoint     string
	OTLPProtocol     string
	TraceSampleRatio float64
	MetricsPrefix    string
	PushExporter     string
	PushEndpoint     string
	PushAuthToken    string
	PushInterval     time.Duration
}

// IsDevEnvironment reports whether env names a non-shared environment.
func IsDevEnvironment(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func loadTelemetry(environment string) TelemetryConfig {
	deployment := strings.TrimSpace(getenv("DEPLOYMENT_ENV", environment))

	protocol := getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	if traces := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL")); traces != "" {
		protocol = traces
	}

	return TelemetryConfig{
		DeploymentEnv:    deployment,
		LogLevel:         strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
		LogFormat:        strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", "json"))),
		OTelEnabled:      getenvBool("OTEL_ENABLED", !IsDevEnvironment(deployment)),
		OTLPEndpoint:     strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_ENDPOINT", getenv("OTLP_ENDPOINT", "localhost:4317"))),
		OTLPProtocol:     strings.ToLower(strings.TrimSpace(protocol)),
		TraceSampleRatio: getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
		MetricsPrefix:    strings.TrimSpace(getenv("METRICS_PREFIX", "verlyx")),
		PushExporter:     strings.ToLower(strings.TrimSpace(getenv("METRICS_PUSH_EXPORTER", ""))),
		PushEndpoint:     strings.TrimSpace(getenv("METRICS_PUSH_ENDPOINT", "")),
		PushAuthToken:    strings.TrimSpace(getenv("METRICS_PUSH_AUTH_TOKEN", "")),
		PushInterval:     getenvDuration("METRICS_PUSH_INTERVAL", 15*time.Second),
	}
}

func getenvFloat(key string, def float64) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return def
	}
	return parsed
}
