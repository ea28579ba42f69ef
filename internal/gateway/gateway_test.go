package gateway

import (
	"testing"
	"time"

	"github.com/haasonsaas/jarvisgate/internal/analytics"
	"github.com/haasonsaas/jarvisgate/internal/auth"
	"github.com/haasonsaas/jarvisgate/internal/broker"
	"github.com/haasonsaas/jarvisgate/internal/cache"
	"github.com/haasonsaas/jarvisgate/internal/classifier"
	"github.com/haasonsaas/jarvisgate/internal/contextstore"
	"github.com/haasonsaas/jarvisgate/internal/ratelimit"
	"github.com/haasonsaas/jarvisgate/internal/session"
	"github.com/haasonsaas/jarvisgate/internal/sharedkv"
	"github.com/haasonsaas/jarvisgate/internal/workflow"
)

const testAPIKey = "test-api-key"

// newTestServer wires a full Server out of in-memory collaborators, the
// way a handler test needs it: no network listener, no Prometheus
// registration, a fixed clock so responses are deterministic.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	fixedNow := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return fixedNow }

	authSvc := auth.NewService(auth.Config{
		JWTSecret: "unit-test-secret",
		APIKeys:   []auth.APIKeyConfig{{Key: testAPIKey, UserID: "user-1"}},
		Now:       now,
	})

	shared := sharedkv.NewMemoryStore()

	analyticsStore, err := analytics.NewStore(":memory:")
	if err != nil {
		t.Fatalf("analytics.NewStore: %v", err)
	}
	t.Cleanup(func() { analyticsStore.Close() })
	analyticsSink := analytics.New(analyticsStore, analytics.Config{Now: now})

	cfg := Config{
		Host:       "127.0.0.1",
		Auth:       authSvc,
		Cache:      cache.New(cache.Config{LocalCapacity: 64, TTL: time.Minute, Now: now}),
		Classifier: classifier.New(classifier.BagOfWordsScorer{}),
		Contexts:   contextstore.New(contextstore.Config{MaxContexts: 64, Now: now}),
		Workflows:  workflow.New(workflow.Config{Now: now, NewID: func() string { return "wf-test" }}),
		Broker:     broker.New(now),
		Sessions:   session.New(now),
		Limiter:    ratelimit.NewLimiter(ratelimit.Config{RequestsPerSecond: 1000, BurstSize: 1000}),
		MCPQueue:   ratelimit.NewPriorityQueue(),
		Analytics:  analyticsSink,
		Shared:     shared,
		Now:        now,
		NewID:      func() string { return "id-test" },
	}
	return New(cfg)
}

func issueTestToken(t *testing.T, s *Server) string {
	t.Helper()
	token, _, err := s.auth.Issue(testAPIKey, "")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}
