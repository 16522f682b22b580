// Package config loads and validates bipwatch configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/bipwatch/crawler/internal/bip"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Scraper   ScraperConfig   `mapstructure:"scraper"`
	Snapshots SnapshotsConfig `mapstructure:"snapshots"`
	Agent     AgentConfig     `mapstructure:"agent"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Sources   []bip.Source    `mapstructure:"sources"`
}

// ScraperConfig governs fetch and enrichment behavior.
type ScraperConfig struct {
	RequestTimeoutSeconds int     `mapstructure:"request_timeout"`
	UserAgent             string  `mapstructure:"user_agent"`
	EntryWorkers          int     `mapstructure:"entry_workers"`
	PerHostRPS            float64 `mapstructure:"per_host_rps"`
}

// SnapshotsConfig sets where payload snapshots are written.
type SnapshotsConfig struct {
	Dir string `mapstructure:"dir"`
}

// AgentConfig describes the downstream webhook consumer.
type AgentConfig struct {
	WebhookURL   string `mapstructure:"webhook_url"`
	APIKey       string `mapstructure:"api_key"`
	APIKeyHeader string `mapstructure:"api_key_header"`
	Instruction  string `mapstructure:"instruction"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BIPWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	normalizeSources(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scraper.request_timeout", 15)
	v.SetDefault("scraper.user_agent", "BIPWatch/1.0 (+https://github.com/bipwatch/crawler)")
	v.SetDefault("scraper.entry_workers", 4)
	v.SetDefault("scraper.per_host_rps", 1.0)
	v.SetDefault("snapshots.dir", "snapshots")
	v.SetDefault("agent.api_key_header", "Authorization")
	v.SetDefault("agent.instruction", "Przeanalizuj nowe ogłoszenia i przygotuj streszczenie.")
	v.SetDefault("logging.development", true)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9090")
}

// normalizeSources fills in the kind for sources configured the legacy way
// (a bare listing URL plus the dynamic_registry flag).
func normalizeSources(cfg *Config) {
	for i := range cfg.Sources {
		src := &cfg.Sources[i]
		if src.Kind != "" {
			continue
		}
		if src.DynamicRegistry {
			src.Kind = bip.KindDynamicRegistry
		} else {
			src.Kind = bip.KindGenericList
		}
	}
}

// Validate enforces required values. A source without a listing locator is
// the one fatal condition; it is rejected here, before any fetch.
func (c Config) Validate() error {
	if c.Scraper.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("scraper.request_timeout must be > 0")
	}
	if c.Scraper.EntryWorkers <= 0 {
		return fmt.Errorf("scraper.entry_workers must be > 0")
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source must be configured")
	}
	for _, src := range c.Sources {
		if strings.TrimSpace(src.ListingURL) == "" {
			return fmt.Errorf("source %q: %w", src.Name, bip.ErrNoListingURL)
		}
		switch src.Kind {
		case bip.KindFeed, bip.KindDynamicRegistry, bip.KindGenericList:
		default:
			return fmt.Errorf("source %q: unknown kind %q", src.Name, src.Kind)
		}
	}
	return nil
}

// RequestTimeout converts the configured timeout into a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Scraper.RequestTimeoutSeconds) * time.Second
}
