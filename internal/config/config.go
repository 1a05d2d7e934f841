package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	Port        string
	APIPrefix   string
	AppURL      string
	CORSOrigins []string
	StorageDir  string

	SnowflakeNodeID int64

	Telemetry TelemetryConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	JWTSecret           string
	JWTExpiresIn        time.Duration
	JWTRefreshSecret    string
	JWTRefreshExpiresIn time.Duration

	DLocal DLocalConfig

	RedisAddr     string
	RedisPassword string
	NATSURL       string

	RateLimitTTL time.Duration
	RateLimitMax int

	SchedulerEnabled  bool
	SchedulerInterval time.Duration
	SchedulerJobs     []string
}

// DLocalConfig carries the card gateway credentials. An empty key or secret
// puts payment links into demo mode.
type DLocalConfig struct {
	APIKey        string
	SecretKey     string
	APIURL        string
	WebhookSecret string
}

// Configured reports whether both gateway credentials are present.
func (c DLocalConfig) Configured() bool {
	return strings.TrimSpace(c.APIKey) != "" && strings.TrimSpace(c.SecretKey) != ""
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "verlyx-hub"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		Port:        getenv("PORT", "8080"),
		APIPrefix:   strings.Trim(getenv("API_PREFIX", "api"), "/"),
		AppURL:      strings.TrimRight(getenv("APP_URL", "http://localhost:3000"), "/"),
		CORSOrigins: splitList(getenv("CORS_ORIGIN", "http://localhost:3000")),
		StorageDir:  getenv("STORAGE_DIR", "./storage"),

		SnowflakeNodeID: int64(getenvInt("SNOWFLAKE_NODE_ID", 1)),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "verlyx"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 10),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 50),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),

		JWTSecret:           strings.TrimSpace(getenv("JWT_SECRET", "")),
		JWTExpiresIn:        getenvDuration("JWT_EXPIRES_IN", 15*time.Minute),
		JWTRefreshSecret:    strings.TrimSpace(getenv("JWT_REFRESH_SECRET", "")),
		JWTRefreshExpiresIn: getenvDuration("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour),

		DLocal: DLocalConfig{
			APIKey:        strings.TrimSpace(getenv("DLOCAL_GO_API_KEY", "")),
			SecretKey:     strings.TrimSpace(getenv("DLOCAL_GO_SECRET_KEY", "")),
			APIURL:        strings.TrimRight(getenv("DLOCAL_GO_API_URL", "https://api-sbx.dlocalgo.com"), "/"),
			WebhookSecret: strings.TrimSpace(getenv("DLOCAL_GO_WEBHOOK_SECRET", "")),
		},

		RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		NATSURL:       strings.TrimSpace(getenv("NATS_URL", "")),

		RateLimitTTL: getenvDuration("RATE_LIMIT_TTL", 60*time.Second),
		RateLimitMax: getenvInt("RATE_LIMIT_MAX", 100),

		SchedulerEnabled:  getenvBool("SCHEDULER_ENABLED", true),
		SchedulerInterval: getenvDuration("SCHEDULER_INTERVAL", time.Minute),
		SchedulerJobs:     splitList(getenv("SCHEDULER_JOBS", "")),
	}
	cfg.Telemetry = loadTelemetry(cfg.Environment)

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

// getenvDuration accepts Go durations ("15m") and the shorthand used by the
// web client ("7d"). A bare number is read as seconds.
func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	if strings.HasSuffix(value, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(value, "d"))
		if err != nil {
			return def
		}
		return time.Duration(days) * 24 * time.Hour
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
