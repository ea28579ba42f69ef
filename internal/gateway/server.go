// Package gateway implements the Request Gateway: the system boundary
// that validates payloads, enforces bearer auth, maps domain errors to
// HTTP/duplex responses, and wires together every other component
// (classifier, cache, context store, workflow engine, tool broker,
// session multiplexer, rate limiter, analytics sink) behind REST
// handlers and one duplex per-client channel.
//
// Adapted from the teacher's internal/gateway/server.go +
// http_server.go split: a single Server value owns every collaborator
// and the HTTP listener, started and stopped as one unit.
package gateway

import (
	"context"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/haasonsaas/jarvisgate/internal/analytics"
	"github.com/haasonsaas/jarvisgate/internal/auth"
	"github.com/haasonsaas/jarvisgate/internal/broker"
	"github.com/haasonsaas/jarvisgate/internal/cache"
	"github.com/haasonsaas/jarvisgate/internal/classifier"
	"github.com/haasonsaas/jarvisgate/internal/contextstore"
	"github.com/haasonsaas/jarvisgate/internal/observability"
	"github.com/haasonsaas/jarvisgate/internal/ratelimit"
	"github.com/haasonsaas/jarvisgate/internal/session"
	"github.com/haasonsaas/jarvisgate/internal/sharedkv"
	"github.com/haasonsaas/jarvisgate/internal/workflow"
)

// Version is stamped at build time via -ldflags. "dev" otherwise.
var Version = "dev"

// Config wires every collaborator the Server needs. Only Addr is
// required to have a sane zero value (":8080"); every component field
// must be supplied by the caller (cmd/gateway), since the gateway has
// no business constructing its own dependencies.
type Config struct {
	Host string
	Port int

	Auth       *auth.Service
	Cache      *cache.ClassificationCache
	Classifier *classifier.Classifier
	Contexts   *contextstore.Store
	Workflows  *workflow.Engine
	Broker     *broker.Broker
	Sessions   *session.Registry
	Limiter    *ratelimit.Limiter
	MCPQueue   *ratelimit.PriorityQueue
	Analytics  *analytics.Sink
	Shared     sharedkv.Store

	MCPBatchSize    int
	MCPBatchTimeout time.Duration

	Logger  *observability.Logger
	Metrics *observability.Metrics
	Tracer  *observability.Tracer

	Now   func() time.Time
	NewID func() string
}

// Server is the Request Gateway runtime: REST handlers, the duplex
// endpoint, and the background tasks (session janitor, analytics
// drainer, mcp priority-queue drainer, broker lifecycle) it owns.
type Server struct {
	host string
	port int

	auth       *auth.Service
	cache      *cache.ClassificationCache
	classifier *classifier.Classifier
	contexts   *contextstore.Store
	workflows  *workflow.Engine
	broker     *broker.Broker
	sessions   *session.Registry
	limiter    *ratelimit.Limiter
	mcpQueue   *ratelimit.PriorityQueue
	analytics  *analytics.Sink
	shared     sharedkv.Store
	dispatcher *broker.WorkflowDispatcher

	mcpBatchSize    int
	mcpBatchTimeout time.Duration

	logger  *observability.Logger
	metrics *observability.Metrics
	tracer  *observability.Tracer

	now   func() time.Time
	newID func() string

	mu           sync.Mutex
	httpServer   *http.Server
	httpListener net.Listener
	bgCancel     func()
	bgWG         sync.WaitGroup

	startedAt time.Time
	draining  atomic.Bool
}

// New builds a Server from cfg. It does not start any listener or
// background task; call Start for that.
func New(cfg Config) *Server {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	batchSize := cfg.MCPBatchSize
	if batchSize <= 0 {
		batchSize = ratelimit.DefaultBatchSize
	}
	batchTimeout := cfg.MCPBatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = ratelimit.DefaultBatchTimeout
	}
	return &Server{
		host:            cfg.Host,
		port:            cfg.Port,
		auth:            cfg.Auth,
		cache:           cfg.Cache,
		classifier:      cfg.Classifier,
		contexts:        cfg.Contexts,
		workflows:       cfg.Workflows,
		broker:          cfg.Broker,
		sessions:        cfg.Sessions,
		limiter:         cfg.Limiter,
		mcpQueue:        cfg.MCPQueue,
		analytics:       cfg.Analytics,
		shared:          cfg.Shared,
		dispatcher:      broker.NewWorkflowDispatcher(cfg.Broker),
		mcpBatchSize:    batchSize,
		mcpBatchTimeout: batchTimeout,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
		tracer:          cfg.Tracer,
		now:             now,
		newID:           cfg.NewID,
	}
}

// logInfo/logWarn/logError accept an explicit context so request-scoped
// correlation fields (request id, channel, user id) set by
// observeMiddleware or serveDuplex flow into the structured log line.
// Background-task call sites that have no request in flight pass
// context.Background().
func (s *Server) logInfo(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(ctx, msg, args...)
	}
}

func (s *Server) logWarn(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(ctx, msg, args...)
	}
}

func (s *Server) logError(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(ctx, msg, args...)
	}
}
