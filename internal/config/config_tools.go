package config

import "strings"

// AIProviderConfig configures one AI chat provider the "ai" tool kind
// can dispatch to (anthropic, openai, bedrock).
type AIProviderConfig struct {
	APIKey       string `yaml:"api_key"`
	DefaultModel string `yaml:"default_model"`
	BaseURL      string `yaml:"base_url"`
}

// WebSearchConfig configures the web-search fan-out aggregator.
type WebSearchConfig struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
}

func validateWebSearch(cfg *WebSearchConfig) []string {
	var issues []string
	if provider := strings.ToLower(strings.TrimSpace(cfg.Provider)); provider != "" {
		switch provider {
		case "searxng", "brave", "duckduckgo":
		default:
			issues = append(issues, "websearch.provider must be \"searxng\", \"brave\", or \"duckduckgo\"")
		}
	}
	return issues
}
