package config

import "fmt"

// BrokerConfig configures the tool broker's registered tool servers.
type BrokerConfig struct {
	// StartTimeout bounds how long a single tool's Start gets during
	// broker startup.
	StartTimeoutSeconds int `yaml:"start_timeout_seconds"`
	// Tools lists the tool servers to register, keyed by name.
	Tools []ToolConfig `yaml:"tools"`
}

// ToolConfig declares one tool server the broker should register and
// start. Kind selects which concrete Handler implementation cmd/gateway
// wires up (document_generation, email, calendar, web_search, ai, voice).
type ToolConfig struct {
	Name    string            `yaml:"name"`
	Kind    string            `yaml:"kind"`
	Enabled bool              `yaml:"enabled"`
	Options map[string]string `yaml:"options"`
}

func applyBrokerDefaults(cfg *BrokerConfig) {
	if cfg.StartTimeoutSeconds == 0 {
		cfg.StartTimeoutSeconds = 10
	}
}

func validateBroker(cfg *BrokerConfig) []string {
	var issues []string
	if cfg.StartTimeoutSeconds < 0 {
		issues = append(issues, "broker.start_timeout_seconds must be >= 0")
	}
	seen := map[string]struct{}{}
	for i, tool := range cfg.Tools {
		if tool.Name == "" {
			issues = append(issues, fmt.Sprintf("broker.tools[%d].name must be set", i))
			continue
		}
		if _, ok := seen[tool.Name]; ok {
			issues = append(issues, fmt.Sprintf("broker.tools[%d].name %q must be unique", i, tool.Name))
		}
		seen[tool.Name] = struct{}{}
		switch tool.Kind {
		case "document_generation", "email", "calendar", "web_search", "ai", "voice", "":
		default:
			issues = append(issues, fmt.Sprintf("broker.tools[%d].kind %q is not recognized", i, tool.Kind))
		}
	}
	return issues
}
