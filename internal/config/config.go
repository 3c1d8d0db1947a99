// Package config provides configuration management for the signal trader.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Risk    RiskConfig    `mapstructure:"risk"`
	Dedupe  DedupeConfig  `mapstructure:"dedupe"`
	Planner PlannerConfig `mapstructure:"planner"`
	Batcher BatcherConfig `mapstructure:"batcher"`
	Broker  BrokerConfig  `mapstructure:"broker"`
	Store   StoreConfig   `mapstructure:"store"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// RiskConfig holds per-trade risk budgets in rupees.
type RiskConfig struct {
	Intraday   float64 `mapstructure:"intraday"`
	Positional float64 `mapstructure:"positional"`
}

// Amount returns the risk budget for the trade style.
func (r RiskConfig) Amount(positional bool) float64 {
	if positional {
		return r.Positional
	}
	return r.Intraday
}

// DedupeConfig holds signal deduplication settings.
type DedupeConfig struct {
	WindowMinutes int `mapstructure:"window_minutes"`
}

// Window returns the dedup window as a duration.
func (d DedupeConfig) Window() time.Duration {
	return time.Duration(d.WindowMinutes) * time.Minute
}

// PlannerConfig holds execution planning parameters.
type PlannerConfig struct {
	SkipThresholdPct float64 `mapstructure:"skip_threshold_pct"`
	TargetMultiplier float64 `mapstructure:"target_multiplier"`
	DefaultSLPct     float64 `mapstructure:"default_sl_pct"`
	TrailingPct      float64 `mapstructure:"trailing_pct"`
}

// BatcherConfig holds message batching settings.
type BatcherConfig struct {
	QuietSeconds float64 `mapstructure:"quiet_seconds"`
	StaleSeconds float64 `mapstructure:"stale_seconds"`
}

// QuietPeriod returns the arrival-silence gap that closes a batch.
func (b BatcherConfig) QuietPeriod() time.Duration {
	return time.Duration(b.QuietSeconds * float64(time.Second))
}

// StaleGap returns the gap that flushes a stitch buffer mid-batch.
func (b BatcherConfig) StaleGap() time.Duration {
	return time.Duration(b.StaleSeconds * float64(time.Second))
}

// BrokerConfig holds Dhan API configuration.
type BrokerConfig struct {
	ClientID    string `mapstructure:"client_id"`
	AccessToken string `mapstructure:"access_token"`
	BaseURL     string `mapstructure:"base_url"`
	MasterURL   string `mapstructure:"master_url"`
	MasterCache string `mapstructure:"master_cache"`
	Paper       bool   `mapstructure:"paper"`
}

// StoreConfig holds persistence settings.
type StoreConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Console  bool   `mapstructure:"console"`
	File     bool   `mapstructure:"file"`
	FilePath string `mapstructure:"file_path"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/dhan-signal-trader"
	}
	return filepath.Join(home, ".config", "dhan-signal-trader")
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	v := viper.New()
	setDefaults(v)
	// Unmarshal of pure defaults cannot fail
	_ = v.Unmarshal(cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("risk.intraday", 3500.0)
	v.SetDefault("risk.positional", 5000.0)
	v.SetDefault("dedupe.window_minutes", 60)
	v.SetDefault("planner.skip_threshold_pct", 0.03)
	v.SetDefault("planner.target_multiplier", 10.0)
	v.SetDefault("planner.default_sl_pct", 0.10)
	v.SetDefault("planner.trailing_pct", 0.05)
	v.SetDefault("batcher.quiet_seconds", 1.5)
	v.SetDefault("batcher.stale_seconds", 300.0)
	v.SetDefault("broker.base_url", "https://api.dhan.co/v2")
	v.SetDefault("broker.master_url", "https://images.dhan.co/api-data/api-scrip-master.csv")
	v.SetDefault("broker.master_cache", filepath.Join(DefaultConfigDir(), "cache", "scrip-master.csv"))
	v.SetDefault("broker.paper", false)
	v.SetDefault("store.db_path", filepath.Join(DefaultConfigDir(), "signals.db"))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join(DefaultConfigDir(), "logs", "trader.log"))
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("TRADER")
	v.AutomaticEnv()
	bindLegacyEnv(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file falls back to defaults; anything else is fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindLegacyEnv keeps the flat env keys the deployment scripts already use.
func bindLegacyEnv(v *viper.Viper) {
	pairs := map[string]string{
		"risk.intraday":              "RISK_INTRADAY",
		"risk.positional":            "RISK_POSITIONAL",
		"dedupe.window_minutes":      "DEDUPE_WINDOW_MINUTES",
		"planner.skip_threshold_pct": "SKIP_THRESHOLD_PCT",
		"planner.target_multiplier":  "TARGET_MULTIPLIER",
		"planner.default_sl_pct":     "DEFAULT_SL_PCT",
		"planner.trailing_pct":       "TRAILING_PCT",
		"broker.client_id":           "DHAN_CLIENT_ID",
		"broker.access_token":        "DHAN_ACCESS_TOKEN",
	}
	for key, env := range pairs {
		_ = v.BindEnv(key, env)
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Risk.Intraday <= 0 || c.Risk.Positional <= 0 {
		return fmt.Errorf("risk budgets must be positive (intraday=%v positional=%v)",
			c.Risk.Intraday, c.Risk.Positional)
	}
	if c.Dedupe.WindowMinutes < 0 {
		return fmt.Errorf("dedupe window must not be negative, got %d", c.Dedupe.WindowMinutes)
	}
	if c.Planner.SkipThresholdPct < 0 {
		return fmt.Errorf("skip threshold must not be negative, got %v", c.Planner.SkipThresholdPct)
	}
	if c.Planner.DefaultSLPct <= 0 || c.Planner.DefaultSLPct >= 1 {
		return fmt.Errorf("default SL pct must be in (0,1), got %v", c.Planner.DefaultSLPct)
	}
	if c.Planner.TargetMultiplier <= 0 {
		return fmt.Errorf("target multiplier must be positive, got %v", c.Planner.TargetMultiplier)
	}
	return nil
}
