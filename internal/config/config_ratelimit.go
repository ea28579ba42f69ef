package config

import "time"

// RateLimitConfig configures the per-key token bucket and the priority
// batch queue sitting in front of the classifier and cache.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`

	BatchSize    int           `yaml:"batch_size"`
	BatchTimeout time.Duration `yaml:"batch_timeout"`
}

func applyRateLimitDefaults(cfg *RateLimitConfig) {
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = 10.0
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = int(cfg.RequestsPerSecond * 2)
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 32
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 200 * time.Millisecond
	}
}

func validateRateLimit(cfg *RateLimitConfig) []string {
	var issues []string
	if cfg.RequestsPerSecond < 0 {
		issues = append(issues, "rate_limit.requests_per_second must be >= 0")
	}
	if cfg.BurstSize < 0 {
		issues = append(issues, "rate_limit.burst_size must be >= 0")
	}
	if cfg.BatchSize < 0 {
		issues = append(issues, "rate_limit.batch_size must be >= 0")
	}
	if cfg.BatchTimeout < 0 {
		issues = append(issues, "rate_limit.batch_timeout must be >= 0")
	}
	return issues
}
