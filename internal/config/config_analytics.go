package config

import (
	"strings"
	"time"
)

// AnalyticsConfig configures the non-hot-path behavior-profiling sink.
type AnalyticsConfig struct {
	Enabled       bool          `yaml:"enabled"`
	BufferSize    int           `yaml:"buffer_size"`
	BatchSize     int           `yaml:"batch_size"`
	DrainInterval time.Duration `yaml:"drain_interval"`
	CleanInterval time.Duration `yaml:"clean_interval"`
	Retention     time.Duration `yaml:"retention"`
	// DatabasePath is the modernc.org/sqlite file backing persisted
	// profiles. ":memory:" keeps profiles in-process only.
	DatabasePath string `yaml:"database_path"`
}

func applyAnalyticsDefaults(cfg *AnalyticsConfig) {
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 1000
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 50
	}
	if cfg.DrainInterval == 0 {
		cfg.DrainInterval = 5 * time.Second
	}
	if cfg.CleanInterval == 0 {
		cfg.CleanInterval = time.Hour
	}
	if cfg.Retention == 0 {
		cfg.Retention = 30 * 24 * time.Hour
	}
	if strings.TrimSpace(cfg.DatabasePath) == "" {
		cfg.DatabasePath = "jarvisgate-analytics.db"
	}
}

func validateAnalytics(cfg *AnalyticsConfig) []string {
	var issues []string
	if cfg.BufferSize < 0 {
		issues = append(issues, "analytics.buffer_size must be >= 0")
	}
	if cfg.BatchSize < 0 {
		issues = append(issues, "analytics.batch_size must be >= 0")
	}
	if cfg.DrainInterval < 0 {
		issues = append(issues, "analytics.drain_interval must be >= 0")
	}
	if cfg.CleanInterval < 0 {
		issues = append(issues, "analytics.clean_interval must be >= 0")
	}
	if cfg.Retention < 0 {
		issues = append(issues, "analytics.retention must be >= 0")
	}
	return issues
}
