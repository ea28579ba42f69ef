package config

// SessionConfig configures the duplex session multiplexer. Idle limit
// and janitor interval are fixed data-model invariants; only the
// per-client outbound buffer depth is tunable here.
type SessionConfig struct {
	// SendBufferSize is the depth of each client's outbound channel
	// before SendPersonal starts reporting the client as unreachable.
	SendBufferSize int `yaml:"send_buffer_size"`
}

func applySessionDefaults(cfg *SessionConfig) {
	if cfg.SendBufferSize == 0 {
		cfg.SendBufferSize = 64
	}
}

func validateSession(cfg *SessionConfig) []string {
	var issues []string
	if cfg.SendBufferSize < 0 {
		issues = append(issues, "session.send_buffer_size must be >= 0")
	}
	return issues
}
