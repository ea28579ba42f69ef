package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/haasonsaas/jarvisgate/internal/aiprovider"
	"github.com/haasonsaas/jarvisgate/internal/analytics"
	"github.com/haasonsaas/jarvisgate/internal/auth"
	"github.com/haasonsaas/jarvisgate/internal/broker"
	"github.com/haasonsaas/jarvisgate/internal/cache"
	"github.com/haasonsaas/jarvisgate/internal/classifier"
	"github.com/haasonsaas/jarvisgate/internal/config"
	"github.com/haasonsaas/jarvisgate/internal/contextstore"
	"github.com/haasonsaas/jarvisgate/internal/gateway"
	"github.com/haasonsaas/jarvisgate/internal/observability"
	"github.com/haasonsaas/jarvisgate/internal/ratelimit"
	"github.com/haasonsaas/jarvisgate/internal/session"
	"github.com/haasonsaas/jarvisgate/internal/sharedkv"
	"github.com/haasonsaas/jarvisgate/internal/tools/ai"
	"github.com/haasonsaas/jarvisgate/internal/tools/calendar"
	"github.com/haasonsaas/jarvisgate/internal/tools/document"
	"github.com/haasonsaas/jarvisgate/internal/tools/email"
	"github.com/haasonsaas/jarvisgate/internal/tools/search"
	"github.com/haasonsaas/jarvisgate/internal/tools/voice"
	"github.com/haasonsaas/jarvisgate/internal/websearch"
	"github.com/haasonsaas/jarvisgate/internal/workflow"
)

// runServe implements the serve command: load config, build every
// collaborator, start the gateway, and block until a shutdown signal
// or a fatal server error arrives.
func runServe(ctx context.Context, configPath string, debug bool) error {
	if debug {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	slog.Info("starting jarvisgate gateway",
		"version", version, "commit", commit, "config", configPath, "debug", debug)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	server, shutdownTracer, err := buildServer(cfg)
	if err != nil {
		return fmt.Errorf("build gateway: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(ctx)
	}()

	slog.Info("jarvisgate gateway started",
		"addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort))

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	slog.Info("shutdown signal received, draining")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(), time.Duration(cfg.Server.ShutdownGrace)*time.Second)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		slog.Warn("tracer shutdown error", "error", err)
	}

	slog.Info("jarvisgate gateway stopped gracefully")
	return nil
}

// buildServer wires every internal/* collaborator named in cfg into a
// gateway.Server, the way runServe needs it. The returned shutdown func
// flushes and tears down the tracer provider; callers must invoke it
// during graceful shutdown.
func buildServer(cfg *config.Config) (*gateway.Server, func(context.Context) error, error) {
	now := time.Now

	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	tracerEndpoint := ""
	if cfg.Tracing.Enabled {
		tracerEndpoint = cfg.Tracing.OTLPEndpoint
	}
	tracer, shutdownTracer := observability.NewTracer(observability.TraceConfig{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: version,
		Endpoint:       tracerEndpoint,
		SamplingRate:   cfg.Tracing.SampleRatio,
	})

	shared, err := buildSharedStore(cfg)
	if err != nil {
		return nil, shutdownTracer, err
	}

	authSvc := auth.NewService(auth.Config{
		JWTSecret: cfg.Auth.JWTSecret,
		TokenTTL:  cfg.Auth.TokenTTL,
		APIKeys:   buildAPIKeys(cfg.Auth.APIKeys),
		Now:       now,
	})

	classifierSvc := classifier.New(classifier.BagOfWordsScorer{})

	cacheSvc := cache.New(cache.Config{
		LocalCapacity: cfg.Cache.LocalCapacity,
		TTL:           cfg.Cache.TTL,
		Shared:        shared,
		Now:           now,
	})

	contexts := contextstore.New(contextstore.Config{
		MaxContexts: cfg.ContextStore.MaxContexts,
		Shared:      shared,
		Now:         now,
	})

	workflows := workflow.New(workflow.Config{
		Now:   now,
		NewID: uuid.NewString,
	})

	brokerSvc := broker.New(now)
	if err := registerTools(brokerSvc, cfg, shared); err != nil {
		return nil, shutdownTracer, err
	}

	sessions := session.New(now)

	limiter := ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.BurstSize,
		Enabled:           cfg.RateLimit.Enabled,
	})
	mcpQueue := ratelimit.NewPriorityQueue()

	var analyticsSink *analytics.Sink
	if cfg.Analytics.Enabled {
		store, err := analytics.NewStore(cfg.Analytics.DatabasePath)
		if err != nil {
			return nil, shutdownTracer, fmt.Errorf("open analytics store: %w", err)
		}
		analyticsSink = analytics.New(store, analytics.Config{
			BufferSize:    cfg.Analytics.BufferSize,
			BatchSize:     cfg.Analytics.BatchSize,
			DrainInterval: cfg.Analytics.DrainInterval,
			CleanInterval: cfg.Analytics.CleanInterval,
			Retention:     cfg.Analytics.Retention,
			Now:           now,
		})
	} else {
		store, err := analytics.NewStore(":memory:")
		if err != nil {
			return nil, shutdownTracer, fmt.Errorf("open in-memory analytics store: %w", err)
		}
		analyticsSink = analytics.New(store, analytics.Config{Now: now})
	}

	return gateway.New(gateway.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.HTTPPort,

		Auth:       authSvc,
		Cache:      cacheSvc,
		Classifier: classifierSvc,
		Contexts:   contexts,
		Workflows:  workflows,
		Broker:     brokerSvc,
		Sessions:   sessions,
		Limiter:    limiter,
		MCPQueue:   mcpQueue,
		Analytics:  analyticsSink,
		Shared:     shared,

		MCPBatchSize:    cfg.RateLimit.BatchSize,
		MCPBatchTimeout: cfg.RateLimit.BatchTimeout,

		Logger:  logger,
		Metrics: metrics,
		Tracer:  tracer,

		Now:   now,
		NewID: uuid.NewString,
	}), shutdownTracer, nil
}

func buildAPIKeys(in []config.APIKeyConfig) []auth.APIKeyConfig {
	out := make([]auth.APIKeyConfig, len(in))
	for i, key := range in {
		out[i] = auth.APIKeyConfig{Key: key.Key, UserID: key.UserID}
	}
	return out
}

// buildSharedStore picks the shared-KV backend. A Redis URL in
// JARVISGATE_REDIS_URL opts into the distributed tier; otherwise the
// gateway runs with a single-process in-memory store.
func buildSharedStore(cfg *config.Config) (sharedkv.Store, error) {
	if url := os.Getenv("JARVISGATE_REDIS_URL"); url != "" {
		store, err := sharedkv.NewRedisStoreFromURL(url)
		if err != nil {
			return nil, fmt.Errorf("connect redis shared store: %w", err)
		}
		return store, nil
	}
	return sharedkv.NewMemoryStore(), nil
}

// registerTools builds and registers the concrete broker.Handler for
// every enabled tool in cfg.Broker.Tools, keyed by Kind.
func registerTools(b *broker.Broker, cfg *config.Config, shared sharedkv.Store) error {
	now := time.Now
	usage := aiprovider.NewUsageTracker(shared, now)

	for _, toolCfg := range cfg.Broker.Tools {
		if !toolCfg.Enabled {
			continue
		}
		switch toolCfg.Kind {
		case "document_generation":
			b.Register(toolCfg.Name, document.New(now, uuid.NewString))
		case "email":
			b.Register(toolCfg.Name, email.New(shared, now, uuid.NewString))
		case "calendar":
			b.Register(toolCfg.Name, calendar.New(now, uuid.NewString))
		case "web_search":
			aggregator := buildSearchAggregator(cfg, shared)
			b.Register(toolCfg.Name, search.New(aggregator))
		case "ai":
			catalog, providers := buildAICatalog(cfg)
			defaultModel := toolCfg.Options["default_model"]
			b.Register(toolCfg.Name, ai.New(catalog, providers, usage, defaultModel))
		case "voice":
			b.Register(toolCfg.Name, voice.New(nil, nil))
		default:
			return fmt.Errorf("tool %q has unrecognized kind %q", toolCfg.Name, toolCfg.Kind)
		}
	}
	return nil
}

func buildSearchAggregator(cfg *config.Config, shared sharedkv.Store) *websearch.Aggregator {
	switch cfg.WebSearch.Provider {
	case "brave":
		return websearch.NewAggregator(shared, websearch.NewBraveProvider(cfg.WebSearch.APIKey))
	case "searxng":
		return websearch.NewAggregator(shared, websearch.NewSearXNGProvider(cfg.WebSearch.BaseURL))
	default:
		return websearch.NewAggregator(shared, websearch.NewDuckDuckGoProvider())
	}
}

func buildAICatalog(cfg *config.Config) (*aiprovider.Catalog, map[aiprovider.Vendor]aiprovider.Provider) {
	catalog := aiprovider.NewCatalog()
	providers := make(map[aiprovider.Vendor]aiprovider.Provider)

	if providerCfg, ok := cfg.AIProviders["anthropic"]; ok && providerCfg.APIKey != "" {
		providers[aiprovider.VendorAnthropic] = aiprovider.NewAnthropicProvider(providerCfg.APIKey)
	}
	if providerCfg, ok := cfg.AIProviders["openai"]; ok && providerCfg.APIKey != "" {
		providers[aiprovider.VendorOpenAI] = aiprovider.NewOpenAIProvider(providerCfg.APIKey)
	}

	return catalog, providers
}
