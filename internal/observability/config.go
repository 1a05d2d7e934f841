package observability

import (
	"strings"
	"time"

	"github.com/verlyx/hub/internal/config"
)

// Config is the telemetry view of the application config.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64

	MetricsPrefix string

	MetricsPushExporter  string
	MetricsPushEndpoint  string
	MetricsPushAuthToken string
	MetricsPushInterval  time.Duration
}

func LoadConfig(cfg config.Config) Config {
	t := cfg.Telemetry
	return Config{
		ServiceName: firstNonEmpty(cfg.AppName, "verlyx-hub"),
		Environment: firstNonEmpty(t.DeploymentEnv, cfg.Environment),
		Version:     strings.TrimSpace(cfg.AppVersion),

		LogLevel:  t.LogLevel,
		LogFormat: t.LogFormat,

		OtelEnabled:          t.OTelEnabled,
		OtelExporterEndpoint: t.OTLPEndpoint,
		OtelExporterProtocol: t.OTLPProtocol,
		OtelSamplingRatio:    t.TraceSampleRatio,

		MetricsPrefix: t.MetricsPrefix,

		MetricsPushExporter:  t.PushExporter,
		MetricsPushEndpoint:  t.PushEndpoint,
		MetricsPushAuthToken: t.PushAuthToken,
		MetricsPushInterval:  t.PushInterval,
	}
}

// Debug turns on stack traces and unsampled logging.
func (c Config) Debug() bool {
	return c.LogLevel == "debug" || config.IsDevEnvironment(c.Environment)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
