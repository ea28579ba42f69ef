// Package config loads and validates jarvisgate's YAML configuration file:
// one struct per subsystem, defaults applied after parsing, then
// environment overrides, then validation.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for a gateway process.
type Config struct {
	Server       ServerConfig                `yaml:"server"`
	Auth         AuthConfig                  `yaml:"auth"`
	Cache        CacheConfig                 `yaml:"cache"`
	ContextStore ContextStoreConfig          `yaml:"context_store"`
	Broker       BrokerConfig                `yaml:"broker"`
	Session      SessionConfig               `yaml:"session"`
	RateLimit    RateLimitConfig             `yaml:"rate_limit"`
	Analytics    AnalyticsConfig             `yaml:"analytics"`
	AIProviders  map[string]AIProviderConfig `yaml:"ai_providers"`
	WebSearch    WebSearchConfig             `yaml:"websearch"`
	Logging      LoggingConfig               `yaml:"logging"`
	Metrics      MetricsConfig               `yaml:"metrics"`
	Tracing      TracingConfig               `yaml:"tracing"`
}

// Load reads path, decodes it as YAML with unknown-field rejection,
// expands ${VAR} references against the process environment, applies
// defaults, applies explicit env overrides, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(expanded))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := decoder.Decode(new(struct{})); err != io.EOF {
		return nil, fmt.Errorf("parse config: expected a single YAML document")
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyAuthDefaults(&cfg.Auth)
	applyCacheDefaults(&cfg.Cache)
	applyContextStoreDefaults(&cfg.ContextStore)
	applyBrokerDefaults(&cfg.Broker)
	applySessionDefaults(&cfg.Session)
	applyRateLimitDefaults(&cfg.RateLimit)
	applyAnalyticsDefaults(&cfg.Analytics)
	applyLoggingDefaults(&cfg.Logging)
	applyMetricsDefaults(&cfg.Metrics)
	applyTracingDefaults(&cfg.Tracing)
}

func applyEnvOverrides(cfg *Config) {
	if value := strings.TrimSpace(os.Getenv("JARVISGATE_HOST")); value != "" {
		cfg.Server.Host = value
	}
	if value := strings.TrimSpace(os.Getenv("JARVISGATE_HTTP_PORT")); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			cfg.Server.HTTPPort = parsed
		}
	}
	if value := strings.TrimSpace(os.Getenv("JARVISGATE_JWT_SECRET")); value != "" {
		cfg.Auth.JWTSecret = value
	}
	if value := strings.TrimSpace(os.Getenv("JARVISGATE_TOKEN_TTL")); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			cfg.Auth.TokenTTL = parsed
		}
	}
	if value := strings.TrimSpace(os.Getenv("JARVISGATE_ANALYTICS_DB")); value != "" {
		cfg.Analytics.DatabasePath = value
	}
	if value := strings.TrimSpace(os.Getenv("JARVISGATE_LOG_LEVEL")); value != "" {
		cfg.Logging.Level = value
	}
}

// ValidationError collects every config problem found, instead of
// failing on the first one.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "config validation failed:\n- " + strings.Join(e.Issues, "\n- ")
}

func validate(cfg *Config) error {
	var issues []string
	issues = append(issues, validateServer(&cfg.Server)...)
	issues = append(issues, validateAuth(&cfg.Auth)...)
	issues = append(issues, validateCache(&cfg.Cache)...)
	issues = append(issues, validateContextStore(&cfg.ContextStore)...)
	issues = append(issues, validateBroker(&cfg.Broker)...)
	issues = append(issues, validateSession(&cfg.Session)...)
	issues = append(issues, validateRateLimit(&cfg.RateLimit)...)
	issues = append(issues, validateAnalytics(&cfg.Analytics)...)
	issues = append(issues, validateLogging(&cfg.Logging)...)
	issues = append(issues, validateWebSearch(&cfg.WebSearch)...)

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
