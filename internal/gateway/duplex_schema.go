package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const audioPayloadSchema = `{
	"type": "object",
	"required": ["audio"],
	"properties": {
		"audio": {"type": "string"},
		"user_id": {"type": "string"},
		"session_id": {"type": "string"}
	}
}`

const aiRequestPayloadSchema = `{
	"type": "object",
	"required": ["prompt"],
	"properties": {
		"prompt": {"type": "string"},
		"user_id": {"type": "string"},
		"session_id": {"type": "string"}
	}
}`

const mcpCommandPayloadSchema = `{
	"type": "object",
	"required": ["tool", "command"],
	"properties": {
		"tool": {"type": "string"},
		"command": {"type": "string"},
		"priority": {"type": "string", "enum": ["low", "normal", "high"]},
		"params": {"type": "object"}
	}
}`

var (
	duplexSchemasOnce sync.Once
	duplexSchemas     map[string]*jsonschema.Schema
	duplexSchemasErr  error
)

func loadDuplexSchemas() (map[string]*jsonschema.Schema, error) {
	duplexSchemasOnce.Do(func() {
		raw := map[string]string{
			"audio":       audioPayloadSchema,
			"ai_request":  aiRequestPayloadSchema,
			"mcp_command": mcpCommandPayloadSchema,
		}
		compiled := make(map[string]*jsonschema.Schema, len(raw))
		for msgType, src := range raw {
			compiler := jsonschema.NewCompiler()
			resource := msgType + ".json"
			if err := compiler.AddResource(resource, bytes.NewReader([]byte(src))); err != nil {
				duplexSchemasErr = fmt.Errorf("compile duplex schema %s: %w", msgType, err)
				return
			}
			schema, err := compiler.Compile(resource)
			if err != nil {
				duplexSchemasErr = fmt.Errorf("compile duplex schema %s: %w", msgType, err)
				return
			}
			compiled[msgType] = schema
		}
		duplexSchemas = compiled
	})
	return duplexSchemas, duplexSchemasErr
}

// validateDuplexFrame checks an inbound frame's payload against the
// registered schema for its message type. Unknown message types are
// not validated here; handleDuplexFrame rejects them as
// unsupported_command before validation would run.
func validateDuplexFrame(msgType string, rawPayload json.RawMessage) error {
	schemas, err := loadDuplexSchemas()
	if err != nil {
		return err
	}
	schema, ok := schemas[msgType]
	if !ok {
		return nil
	}
	var payload any
	if err := json.Unmarshal(rawPayload, &payload); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("payload failed schema validation: %w", err)
	}
	return nil
}
