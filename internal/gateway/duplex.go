package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/haasonsaas/jarvisgate/internal/model"
	"github.com/haasonsaas/jarvisgate/internal/observability"
	"github.com/haasonsaas/jarvisgate/internal/ratelimit"
)

const (
	duplexPingInterval  = 30 * time.Second
	duplexConnectionTTL = time.Hour
)

var duplexUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// duplexEnvelope is the wire shape for every duplex message, inbound
// and outbound alike. RequestID lets a client correlate a result or
// error with the frame that caused it.
type duplexEnvelope struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Error     *wireError      `json:"error,omitempty"`
}

type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// wsConn adapts a *websocket.Conn to session.Conn. gorilla/websocket
// forbids concurrent writers on the same connection, so every write
// path funnels through writeMu.
type wsConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsConn) WriteMessage(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *wsConn) Ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// serveDuplex upgrades the connection, registers it with the session
// registry, and pumps inbound frames until the client disconnects or
// the server begins draining.
func (s *Server) serveDuplex(w http.ResponseWriter, r *http.Request) {
	if s.draining.Load() {
		writeDomainError(w, model.NewError(model.KindInternal, "gateway", "server is shutting down", nil))
		return
	}
	clientID := r.PathValue("client_id")
	if clientID == "" {
		writeDomainError(w, model.NewError(model.KindInvalidInput, "gateway", "client_id is required", nil))
		return
	}

	raw, err := duplexUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logWarn(r.Context(), "duplex upgrade failed", "client_id", clientID, "error", err)
		return
	}

	ctx := observability.AddChannel(r.Context(), "duplex")
	ctx = observability.AddSessionID(ctx, clientID)

	conn := &wsConn{conn: raw}
	s.sessions.Connect(clientID, conn)
	defer s.sessions.Disconnect(clientID)

	if s.shared != nil {
		_ = s.shared.Set(ctx, "ws_connections:"+clientID, []byte(s.now().Format(time.RFC3339)), duplexConnectionTTL)
	}

	s.sendDuplexEvent(clientID, "welcome", s.buildWelcomePayload())
	s.logInfo(ctx, "duplex connection established", "client_id", clientID)

	tickerCtx, cancelTicker := context.WithCancel(ctx)
	defer cancelTicker()
	go s.runDuplexTicker(tickerCtx, clientID)

	for {
		_, payload, err := raw.ReadMessage()
		if err != nil {
			return
		}
		s.handleDuplexFrame(ctx, clientID, payload)
	}
}

func (s *Server) runDuplexTicker(ctx context.Context, clientID string) {
	ticker := time.NewTicker(duplexPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sendDuplexEvent(clientID, "ping", nil)
		}
	}
}

func (s *Server) handleDuplexFrame(ctx context.Context, clientID string, raw []byte) {
	var envelope duplexEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		s.sendDuplexError(clientID, "", model.KindInvalidInput, "malformed frame")
		return
	}
	if err := validateDuplexFrame(envelope.Type, envelope.Payload); err != nil {
		s.sendDuplexError(clientID, envelope.RequestID, model.KindInvalidInput, err.Error())
		return
	}

	switch envelope.Type {
	case "audio":
		s.handleDuplexAudio(ctx, clientID, envelope)
	case "ai_request":
		s.handleDuplexAIRequest(ctx, clientID, envelope)
	case "mcp_command":
		s.handleDuplexMCPCommand(clientID, envelope)
	default:
		s.sendDuplexError(clientID, envelope.RequestID, model.KindInvalidInput, "unsupported command: "+envelope.Type)
	}
}

func (s *Server) handleDuplexAudio(ctx context.Context, clientID string, envelope duplexEnvelope) {
	var payload struct {
		Audio string `json:"audio"`
	}
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		s.sendDuplexError(clientID, envelope.RequestID, model.KindInvalidInput, "invalid audio payload")
		return
	}
	result, err := s.broker.ProcessVoice(ctx, []byte(payload.Audio))
	if err != nil {
		kind := model.KindToolError
		if de, ok := model.AsError(err); ok {
			kind = de.Kind
		}
		s.sendDuplexError(clientID, envelope.RequestID, kind, err.Error())
		return
	}
	s.sendDuplexResult(clientID, envelope.RequestID, map[string]any{
		"transcript": result.Transcript,
		"reply":      result.Reply,
		"audio":      base64.StdEncoding.EncodeToString(result.Audio),
	})
}

func (s *Server) handleDuplexAIRequest(ctx context.Context, clientID string, envelope duplexEnvelope) {
	var payload struct {
		Prompt string `json:"prompt"`
	}
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		s.sendDuplexError(clientID, envelope.RequestID, model.KindInvalidInput, "invalid ai_request payload")
		return
	}
	reply, err := s.broker.RouteAI(ctx, payload.Prompt)
	if err != nil {
		s.sendDuplexError(clientID, envelope.RequestID, model.KindToolError, err.Error())
		return
	}
	s.sendDuplexResult(clientID, envelope.RequestID, map[string]any{"reply": reply})
}

type mcpQueuedCommand struct {
	clientID  string
	requestID string
	tool      string
	command   string
	params    map[string]any
}

func (s *Server) handleDuplexMCPCommand(clientID string, envelope duplexEnvelope) {
	var payload struct {
		Tool     string         `json:"tool"`
		Command  string         `json:"command"`
		Priority string         `json:"priority"`
		Params   map[string]any `json:"params"`
	}
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		s.sendDuplexError(clientID, envelope.RequestID, model.KindInvalidInput, "invalid mcp_command payload")
		return
	}
	priority := ratelimit.PriorityNormal
	switch payload.Priority {
	case "low":
		priority = ratelimit.PriorityLow
	case "high":
		priority = ratelimit.PriorityHigh
	}
	s.mcpQueue.Enqueue(priority, mcpQueuedCommand{
		clientID:  clientID,
		requestID: envelope.RequestID,
		tool:      payload.Tool,
		command:   payload.Command,
		params:    payload.Params,
	}, s.now())
}

// runMCPDrainer batches queued mcp_command jobs and dispatches each
// through the broker, delivering the outcome back to the originating
// client. It runs for the lifetime of the server and exits when ctx is
// cancelled during shutdown.
func (s *Server) runMCPDrainer(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		items := s.mcpQueue.Drain(ctx, s.mcpBatchSize, s.mcpBatchTimeout)
		for _, item := range items {
			job, ok := item.Payload.(mcpQueuedCommand)
			if !ok {
				continue
			}
			result, err := s.broker.Dispatch(ctx, job.tool, job.command, job.params)
			if err != nil {
				s.sendDuplexError(job.clientID, job.requestID, model.KindToolError, err.Error())
				continue
			}
			s.sendDuplexResult(job.clientID, job.requestID, map[string]any{
				"tool": result.Tool, "command": result.Command, "output": result.Output,
			})
		}
	}
}

func (s *Server) buildWelcomePayload() map[string]any {
	return map[string]any{
		"version":       Version,
		"open_sessions": s.sessions.Count(),
	}
}

func (s *Server) sendDuplexEvent(clientID, eventType string, payload any) {
	envelope := duplexEnvelope{Type: eventType, Timestamp: s.now()}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err == nil {
			envelope.Payload = raw
		}
	}
	s.writeDuplexEnvelope(clientID, envelope)
}

func (s *Server) sendDuplexResult(clientID, requestID string, payload any) {
	envelope := duplexEnvelope{Type: "result", RequestID: requestID, Timestamp: s.now()}
	if raw, err := json.Marshal(payload); err == nil {
		envelope.Payload = raw
	}
	s.writeDuplexEnvelope(clientID, envelope)
}

func (s *Server) sendDuplexError(clientID, requestID string, kind model.ErrorKind, message string) {
	envelope := duplexEnvelope{
		Type:      "error",
		RequestID: requestID,
		Timestamp: s.now(),
		Error:     &wireError{Code: string(kind), Message: message},
	}
	s.writeDuplexEnvelope(clientID, envelope)
}

func (s *Server) writeDuplexEnvelope(clientID string, envelope duplexEnvelope) {
	raw, err := json.Marshal(envelope)
	if err != nil {
		return
	}
	_ = s.sessions.SendPersonal(clientID, raw)
}

// buildShutdownEnvelope builds the server_shutdown notice broadcast to
// every connected client as the gateway begins draining.
func buildShutdownEnvelope(now time.Time) ([]byte, error) {
	return json.Marshal(duplexEnvelope{Type: "server_shutdown", Timestamp: now})
}
