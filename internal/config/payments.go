package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// PaymentsConfig tunes the payment link flow at runtime.
type PaymentsConfig struct {
	MinAmount         float64 `mapstructure:"minAmount"`
	DefaultExpiryDays int     `mapstructure:"defaultExpiryDays"`
	DefaultCountry    string  `mapstructure:"defaultCountry"`
	DefaultCurrency   string  `mapstructure:"defaultCurrency"`
	AllowRawCard      bool    `mapstructure:"allowRawCard"`
}

func DefaultPaymentsConfig() PaymentsConfig {
	return PaymentsConfig{
		MinAmount:         100,
		DefaultExpiryDays: 7,
		DefaultCountry:    "UY",
		DefaultCurrency:   "USD",
		AllowRawCard:      getenvBool("PAYMENTS_ALLOW_RAW_CARD", false),
	}
}

type PaymentsConfigHolder struct {
	current atomic.Value // holds PaymentsConfig
}

// NewStaticPaymentsConfigHolder returns a holder that never reloads.
func NewStaticPaymentsConfigHolder(cfg PaymentsConfig) *PaymentsConfigHolder {
	holder := &PaymentsConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewPaymentsConfigHolder(log *zap.Logger) (*PaymentsConfigHolder, error) {
	log = log.Named("payments.config")
	v := viper.New()

	v.SetConfigName("payments")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/verlyx")
	v.AddConfigPath(".")

	v.SetEnvPrefix("VERLYX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPaymentsConfig()
	v.SetDefault("payments.minAmount", defaults.MinAmount)
	v.SetDefault("payments.defaultExpiryDays", defaults.DefaultExpiryDays)
	v.SetDefault("payments.defaultCountry", defaults.DefaultCountry)
	v.SetDefault("payments.defaultCurrency", defaults.DefaultCurrency)
	v.SetDefault("payments.allowRawCard", defaults.AllowRawCard)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	var cfg PaymentsConfig
	if err := v.UnmarshalKey("payments", &cfg); err != nil {
		return nil, err
	}
	if err := validatePaymentsConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticPaymentsConfigHolder(cfg)
	if !fileFound {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PaymentsConfig
		if err := v.UnmarshalKey("payments", &updated); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validatePaymentsConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *PaymentsConfigHolder) Get() PaymentsConfig {
	if h == nil {
		return DefaultPaymentsConfig()
	}
	cfg, ok := h.current.Load().(PaymentsConfig)
	if !ok {
		return DefaultPaymentsConfig()
	}
	return cfg
}

func validatePaymentsConfig(cfg PaymentsConfig) error {
	if cfg.MinAmount < 0 {
		return errors.New("payments.minAmount cannot be negative")
	}
	if cfg.DefaultExpiryDays <= 0 {
		return errors.New("payments.defaultExpiryDays must be positive")
	}
	if len(strings.TrimSpace(cfg.DefaultCountry)) != 2 {
		return errors.New("payments.defaultCountry must be an ISO-3166 alpha-2 code")
	}
	if len(strings.TrimSpace(cfg.DefaultCurrency)) != 3 {
		return errors.New("payments.defaultCurrency must be an ISO-4217 code")
	}
	return nil
}
