package model

import "time"

// ToolStatus is the lifecycle state of a registered tool.
type ToolStatus string

const (
	ToolInitialized ToolStatus = "initialized"
	ToolRunning     ToolStatus = "running"
	ToolStoppedS    ToolStatus = "stopped"
	ToolError       ToolStatus = "error"
)

// ToolDescriptor describes a registered tool server.
type ToolDescriptor struct {
	Name         string
	Capabilities []string
	Status       ToolStatus
	LastPing     time.Time
	ErrorMessage string
}

// HasCapability reports whether the tool declares command as a capability.
func (t ToolDescriptor) HasCapability(command string) bool {
	for _, c := range t.Capabilities {
		if c == command {
			return true
		}
	}
	return false
}

// DispatchResult is the outcome of a single tool dispatch.
type DispatchResult struct {
	Tool    string
	Command string
	Output  any
}
