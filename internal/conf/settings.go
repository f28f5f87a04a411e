// Package conf loads and holds runtime configuration.
package conf

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// HTTPSettings configures the REST/SSE server.
type HTTPSettings struct {
	Addr            string   `mapstructure:"addr"`
	RequestTimeout  Duration `mapstructure:"request_timeout"`
	ShutdownTimeout Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseSettings configures the backing store.
type DatabaseSettings struct {
	// Driver is "mysql" or "sqlite".
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// MQTTSettings configures the broker-side ingestion transport.
type MQTTSettings struct {
	Enabled        bool     `mapstructure:"enabled"`
	Broker         string   `mapstructure:"broker"`
	Username       string   `mapstructure:"username"`
	Password       string   `mapstructure:"password"`
	ClientIDPrefix string   `mapstructure:"client_id_prefix"`
	Topic          string   `mapstructure:"topic"`
	ConnectTimeout Duration `mapstructure:"connect_timeout"`
	StepTimeout    Duration `mapstructure:"step_timeout"`
}

// AlertingSettings configures the threshold alerting pipeline.
type AlertingSettings struct {
	DedupWindow       Duration `mapstructure:"dedup_window"`
	ThresholdCacheTTL Duration `mapstructure:"threshold_cache_ttl"`
}

// SentrySettings configures error reporting. Reporting is active only when a
// DSN is set.
type SentrySettings struct {
	DSN              string  `mapstructure:"dsn"`
	Environment      string  `mapstructure:"environment"`
	TracesSampleRate float64 `mapstructure:"traces_sample_rate"`
}

// LiveSettings configures the dashboard broadcast hub.
type LiveSettings struct {
	DeliveryTimeout Duration `mapstructure:"delivery_timeout"`
}

// Settings is the root configuration.
type Settings struct {
	LogLevel string           `mapstructure:"log_level"`
	HTTP     HTTPSettings     `mapstructure:"http"`
	Database DatabaseSettings `mapstructure:"database"`
	MQTT     MQTTSettings     `mapstructure:"mqtt"`
	Alerting AlertingSettings `mapstructure:"alerting"`
	Live     LiveSettings     `mapstructure:"live"`
	Sentry   SentrySettings   `mapstructure:"sentry"`
}

// Load reads settings from the given config file (optional) and AGRISENSE_*
// environment variables, applying defaults for anything unset.
func Load(configFile string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("agrisense")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s, viper.DecodeHook(DurationDecodeHook())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks settings for values the process cannot start with.
func (s *Settings) Validate() error {
	switch s.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", s.Database.Driver)
	}
	if s.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if s.MQTT.Enabled && s.MQTT.Broker == "" {
		return fmt.Errorf("mqtt broker is required when mqtt is enabled")
	}
	if s.Alerting.DedupWindow.Std() <= 0 {
		return fmt.Errorf("alerting dedup window must be positive")
	}
	if s.Sentry.TracesSampleRate < 0 || s.Sentry.TracesSampleRate > 1 {
		return fmt.Errorf("sentry traces sample rate must be in [0, 1]")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.request_timeout", "10s")
	v.SetDefault("http.shutdown_timeout", "15s")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "agrisense.db")
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.client_id_prefix", "agrisense")
	v.SetDefault("mqtt.topic", "sensores/+/data")
	v.SetDefault("mqtt.connect_timeout", "30s")
	v.SetDefault("mqtt.step_timeout", "5s")
	v.SetDefault("alerting.dedup_window", (2 * time.Hour).String())
	v.SetDefault("alerting.threshold_cache_ttl", "1m")
	v.SetDefault("live.delivery_timeout", "2s")
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.traces_sample_rate", 0.1)
}
