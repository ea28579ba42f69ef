package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/haasonsaas/jarvisgate/internal/session"
)

// shutdownDrainGrace bounds how long Stop waits for in-flight workflow
// steps to leave the running state before proceeding with broker
// shutdown regardless.
const shutdownDrainGrace = 5 * time.Second

// drainPollInterval is how often Stop re-checks the running-step count
// during the bounded grace period.
const drainPollInterval = 100 * time.Millisecond

// Start brings up every background task (session janitor, analytics
// drainer, mcp priority-queue drainer) and the HTTP listener. Adapted
// from the teacher's startHTTPServer, generalized to the gateway's
// full component set.
func (s *Server) Start(ctx context.Context) error {
	s.startedAt = s.now()

	for name, err := range s.broker.StartAll(ctx) {
		s.logWarn(ctx, "tool failed to start", "tool", name, "error", err)
	}

	bgCtx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		s.sessions.RunJanitor(bgCtx)
	}()

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		s.analytics.Run(bgCtx)
	}()

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		s.runMCPDrainer(bgCtx)
	}()

	if err := s.startHTTPServer(); err != nil {
		cancel()
		return err
	}
	return nil
}

func (s *Server) startHTTPServer() error {
	if s.port == 0 {
		return nil
	}
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}

	s.mu.Lock()
	s.httpServer = server
	s.httpListener = listener
	s.mu.Unlock()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logError(context.Background(), "http server error", "error", err)
		}
	}()
	s.logInfo(context.Background(), "starting http server", "addr", addr)
	return nil
}

// Stop runs the shutdown sequence: refuse new connections, broadcast a
// shutdown notice on every duplex session, disconnect them, drain
// in-flight workflow steps within a bounded grace period, stop the
// tool broker in reverse registration order, then take down the HTTP
// listener and background tasks.
func (s *Server) Stop(ctx context.Context) error {
	s.draining.Store(true)

	shutdownNotice, err := buildShutdownEnvelope(s.now())
	if err == nil {
		s.sessions.Broadcast(shutdownNotice, session.DeliveryParallel)
	}
	s.sessions.DisconnectAll()

	s.waitForDrain()

	for name, err := range s.broker.Shutdown(ctx) {
		s.logWarn(ctx, "tool failed to stop cleanly", "tool", name, "error", err)
	}

	s.stopHTTPServer(ctx)

	if s.bgCancel != nil {
		s.bgCancel()
	}
	s.bgWG.Wait()
	return nil
}

func (s *Server) waitForDrain() {
	deadline := s.now().Add(shutdownDrainGrace)
	for s.workflows.RunningCount() > 0 && s.now().Before(deadline) {
		time.Sleep(drainPollInterval)
	}
}

func (s *Server) stopHTTPServer(ctx context.Context) {
	s.mu.Lock()
	server := s.httpServer
	s.httpServer = nil
	s.httpListener = nil
	s.mu.Unlock()

	if server == nil {
		return
	}
	shutdownCtx := ctx
	var cancel context.CancelFunc
	if shutdownCtx == nil {
		shutdownCtx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.logWarn(ctx, "http server shutdown error", "error", err)
	}
}
