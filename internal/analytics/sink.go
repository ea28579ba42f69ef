package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/haasonsaas/jarvisgate/internal/model"
)

// DefaultBufferSize is the bounded event buffer's default capacity.
const DefaultBufferSize = 1000

// DefaultBatchSize is how many events the drainer pulls per batch.
const DefaultBatchSize = 50

// DefaultDrainInterval is how often the drainer wakes to flush a batch,
// even if it hasn't filled.
const DefaultDrainInterval = 5 * time.Second

// DefaultCleanInterval is how often the background cleaner sweeps for
// inactive profiles.
const DefaultCleanInterval = 1 * time.Hour

// Config configures a Sink.
type Config struct {
	BufferSize    int
	BatchSize     int
	DrainInterval time.Duration
	CleanInterval time.Duration
	Retention     time.Duration
	Now           func() time.Time
}

func (c Config) withDefaults() Config {
	if c.BufferSize <= 0 {
		c.BufferSize = DefaultBufferSize
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.DrainInterval <= 0 {
		c.DrainInterval = DefaultDrainInterval
	}
	if c.CleanInterval <= 0 {
		c.CleanInterval = DefaultCleanInterval
	}
	if c.Retention <= 0 {
		c.Retention = DefaultRetention
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Sink is the analytics subsystem's hot-path entrypoint: Track() appends
// to a bounded buffer without blocking the caller. A background drainer
// folds batches into per-user profiles, persisted via Store; a separate
// cleaner retires profiles that have gone idle past Retention.
type Sink struct {
	cfg    Config
	store  *Store
	events chan model.AnalyticsEvent
	dropped uint64

	mu       sync.Mutex
	profiles map[string]*Profile
}

// New builds a Sink backed by store. store may be nil, in which case
// profiles are kept in memory only and never survive a restart.
func New(store *Store, cfg Config) *Sink {
	cfg = cfg.withDefaults()
	return &Sink{
		cfg:      cfg,
		store:    store,
		events:   make(chan model.AnalyticsEvent, cfg.BufferSize),
		profiles: map[string]*Profile{},
	}
}

// Track appends event to the buffer without blocking. If the buffer is
// full, the event is dropped: analytics loss under overload is
// acceptable, unlike the request hot path it must never slow down.
func (s *Sink) Track(event model.AnalyticsEvent) {
	select {
	case s.events <- event:
	default:
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
	}
}

// Dropped reports how many events have been discarded due to a full buffer.
func (s *Sink) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Run drives the batch drainer and the idle-profile cleaner until ctx is
// cancelled. Call it once from a background goroutine.
func (s *Sink) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.runDrainer(ctx)
	}()
	go func() {
		defer wg.Done()
		s.runCleaner(ctx)
	}()
	wg.Wait()
}

func (s *Sink) runDrainer(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.DrainInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.drainBatch(context.Background())
			return
		case <-ticker.C:
			s.drainBatch(ctx)
		}
	}
}

// drainBatch pulls up to BatchSize buffered events and folds them into
// profiles, persisting any touched profile.
func (s *Sink) drainBatch(ctx context.Context) int {
	batch := make([]model.AnalyticsEvent, 0, s.cfg.BatchSize)
collect:
	for len(batch) < s.cfg.BatchSize {
		select {
		case event := <-s.events:
			batch = append(batch, event)
		default:
			break collect
		}
	}
	if len(batch) == 0 {
		return 0
	}

	touched := map[string]*Profile{}
	s.mu.Lock()
	for _, event := range batch {
		profile, ok := s.profiles[event.UserID]
		if !ok {
			profile = newProfile(event.UserID, s.cfg.Now())
			s.profiles[event.UserID] = profile
		}
		profile.apply(event)
		touched[event.UserID] = profile
	}
	s.mu.Unlock()

	if s.store != nil {
		for _, profile := range touched {
			_ = s.store.Upsert(ctx, profile) // best-effort: persistence never blocks the drainer
		}
	}
	return len(batch)
}

func (s *Sink) runCleaner(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.CleanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanInactive(ctx)
		}
	}
}

func (s *Sink) cleanInactive(ctx context.Context) {
	cutoff := s.cfg.Now().Add(-s.cfg.Retention)
	s.mu.Lock()
	for userID, profile := range s.profiles {
		if profile.LastActive.Before(cutoff) {
			delete(s.profiles, userID)
		}
	}
	s.mu.Unlock()

	if s.store != nil {
		_, _ = s.store.DeleteInactiveBefore(ctx, cutoff)
	}
}

// Profile returns a copy of a user's in-memory profile, if one has been
// drained yet. Callers that need a profile the in-memory drainer hasn't
// seen since the last restart should consult Store directly.
func (s *Sink) Profile(userID string) (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return Profile{}, false
	}
	return *profile, true
}
