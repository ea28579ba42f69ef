package config

import "time"

// CacheConfig configures the two-tier classification cache's local tier.
// The shared tier (sharedkv.Store) is wired up by the process, not by
// this file, since it may be a remote dependency with its own
// connection settings.
type CacheConfig struct {
	// LocalCapacity bounds the in-process LRU tier.
	LocalCapacity int `yaml:"local_capacity"`
	// TTL is how long an entry stays fresh in either tier.
	TTL time.Duration `yaml:"ttl"`
}

func applyCacheDefaults(cfg *CacheConfig) {
	if cfg.LocalCapacity == 0 {
		cfg.LocalCapacity = 1000
	}
	if cfg.TTL == 0 {
		cfg.TTL = time.Hour
	}
}

func validateCache(cfg *CacheConfig) []string {
	var issues []string
	if cfg.LocalCapacity < 0 {
		issues = append(issues, "cache.local_capacity must be >= 0")
	}
	if cfg.TTL < 0 {
		issues = append(issues, "cache.ttl must be >= 0")
	}
	return issues
}
