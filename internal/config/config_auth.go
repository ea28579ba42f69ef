package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthConfig configures the bearer-token authenticator.
type AuthConfig struct {
	// JWTSecret signs issued tokens. Required in production; Load does
	// not itself fail on an empty secret so that `gateway config
	// validate` can still inspect the rest of the file, but the
	// authenticator refuses to issue tokens without one.
	JWTSecret string `yaml:"jwt_secret"`
	// TokenTTL is how long an issued token stays valid.
	TokenTTL time.Duration `yaml:"token_ttl"`
	// APIKeys is the static catalog of service-to-service keys that
	// bypass interactive login.
	APIKeys []APIKeyConfig `yaml:"api_keys"`
}

// APIKeyConfig declares one recognized external service key.
type APIKeyConfig struct {
	Key    string `yaml:"key"`
	UserID string `yaml:"user_id"`
}

func applyAuthDefaults(cfg *AuthConfig) {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 15 * time.Minute
	}
}

func validateAuth(cfg *AuthConfig) []string {
	var issues []string
	if cfg.TokenTTL < 0 {
		issues = append(issues, "auth.token_ttl must be >= 0")
	}
	if secret := strings.TrimSpace(cfg.JWTSecret); secret != "" && len(secret) < 32 {
		issues = append(issues, "auth.jwt_secret must be at least 32 characters")
	}
	seen := map[string]struct{}{}
	for i, key := range cfg.APIKeys {
		trimmed := strings.TrimSpace(key.Key)
		if trimmed == "" {
			issues = append(issues, fmt.Sprintf("auth.api_keys[%d].key must be set", i))
			continue
		}
		if _, ok := seen[trimmed]; ok {
			issues = append(issues, fmt.Sprintf("auth.api_keys[%d].key must be unique", i))
		}
		seen[trimmed] = struct{}{}
	}
	return issues
}
