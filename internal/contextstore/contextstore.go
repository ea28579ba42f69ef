// Package contextstore implements the Context Store: a
// per-(user,session) conversation record with bounded history, mirrored
// into the shared KV. The in-memory map/bounded-eviction shape is adapted
// from the teacher's internal/sessions/memory.go MemoryStore.
package contextstore

import (
	"context"
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/haasonsaas/jarvisgate/internal/model"
	"github.com/haasonsaas/jarvisgate/internal/sharedkv"
)

// DefaultMaxContexts is the bounded local map capacity.
const DefaultMaxContexts = 100

const overflowEvictFraction = 0.2

type contextKey struct {
	user    string
	session string
}

func (k contextKey) sharedKey() string { return "context:" + k.user + ":" + k.session }

// perContextLock guards one (user,session) record's compare-modify-write,
// held only during the mutation itself, never across a classifier call.
type perContextLock struct {
	mu sync.Mutex
}

// Store implements get/save/append_interaction/summary/suggestions/clear.
type Store struct {
	mapMu    sync.RWMutex // guards insert/delete into contexts and locks
	contexts map[contextKey]*model.ConversationContext
	locks    map[contextKey]*perContextLock

	maxContexts int
	shared      sharedkv.Store
	now         func() time.Time
}

// Config configures Store capacity and shared-KV mirror.
type Config struct {
	MaxContexts int
	Shared      sharedkv.Store
	Now         func() time.Time
}

// New builds a Store. Shared may be nil; on shared-KV failure, Store
// degrades to local-only state rather than failing the caller.
func New(cfg Config) *Store {
	max := cfg.MaxContexts
	if max <= 0 {
		max = DefaultMaxContexts
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		contexts:    map[contextKey]*model.ConversationContext{},
		locks:       map[contextKey]*perContextLock{},
		maxContexts: max,
		shared:      cfg.Shared,
		now:         now,
	}
}

func (s *Store) lockFor(key contextKey) *perContextLock {
	s.mapMu.Lock()
	defer s.mapMu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &perContextLock{}
		s.locks[key] = l
	}
	return l
}

// Get returns the context for (user,session), creating it if missing and
// createIfMissing is set.
func (s *Store) Get(user, session string, createIfMissing bool) (*model.ConversationContext, bool) {
	key := contextKey{user, session}
	s.mapMu.RLock()
	ctx, ok := s.contexts[key]
	s.mapMu.RUnlock()
	if ok {
		if ctx.Expired(s.now()) {
			s.clear(key)
			ok = false
		} else {
			return cloneContext(ctx), true
		}
	}
	if !createIfMissing {
		return nil, false
	}
	s.mapMu.Lock()
	defer s.mapMu.Unlock()
	if existing, ok := s.contexts[key]; ok {
		return cloneContext(existing), true
	}
	fresh := model.NewConversationContext(user, session, s.now())
	s.contexts[key] = fresh
	s.evictIfNeededLocked()
	return cloneContext(fresh), true
}

// Save writes back a full context value).
func (s *Store) Save(ctx *model.ConversationContext) {
	key := contextKey{ctx.UserID, ctx.SessionID}
	lock := s.lockFor(key)
	lock.mu.Lock()
	defer lock.mu.Unlock()

	s.mapMu.Lock()
	s.contexts[key] = cloneContext(ctx)
	s.evictIfNeededLocked()
	s.mapMu.Unlock()

	s.mirror(key, ctx)
}

// AppendInteraction performs an atomic read-modify-write: the per-context
// lock is held only for this call, never
// across a classifier invocation.
func (s *Store) AppendInteraction(user, session, userText, assistantText string, category model.Category, params map[string]any) *model.ConversationContext {
	key := contextKey{user, session}
	lock := s.lockFor(key)
	lock.mu.Lock()
	defer lock.mu.Unlock()

	s.mapMu.Lock()
	ctx, ok := s.contexts[key]
	if !ok {
		ctx = model.NewConversationContext(user, session, s.now())
		s.contexts[key] = ctx
		s.evictIfNeededLocked()
	}
	s.mapMu.Unlock()

	now := s.now()
	ctx.AppendInteraction(model.Interaction{
		Timestamp:        now,
		UserText:         userText,
		AssistantText:    assistantText,
		Category:         category,
		ActiveParameters: params,
	})
	ctx.CurrentTopic = extractTopic(category, userText, ctx.CurrentTopic)

	s.mirror(key, ctx)
	return cloneContext(ctx)
}

// Summary returns a point-in-time view of a context's recent activity.
func (s *Store) Summary(user, session string) (model.Summary, bool) {
	ctx, ok := s.Get(user, session, false)
	if !ok {
		return model.Summary{}, false
	}
	categorySeen := map[model.Category]bool{}
	var categories []model.Category
	var topics []string
	for _, in := range ctx.History {
		if !categorySeen[in.Category] {
			categorySeen[in.Category] = true
			categories = append(categories, in.Category)
		}
	}
	if ctx.CurrentTopic != "" {
		topics = append(topics, ctx.CurrentTopic)
	}
	var duration float64
	if len(ctx.History) > 0 {
		duration = ctx.LastActivity.Sub(ctx.History[0].Timestamp).Seconds()
	}
	return model.Summary{
		UserID:            user,
		SessionID:         session,
		TotalInteractions: len(ctx.History),
		CategoriesUsed:    categories,
		RecentTopics:      topics,
		LastActivity:      ctx.LastActivity,
		DurationSeconds:   duration,
	}, true
}

// Suggestions returns seed suggestions when history is empty, otherwise
// derives them from recent categories and
// current topic.
func (s *Store) Suggestions(user, session string) []string {
	ctx, ok := s.Get(user, session, false)
	if !ok || len(ctx.History) == 0 {
		return []string{
			"Try: \"create a PDF report about <topic>\"",
			"Try: \"send an email to <address>\"",
			"Try: \"search for <topic>\"",
		}
	}
	out := []string{}
	if ctx.CurrentTopic != "" {
		out = append(out, "Continue with: \""+ctx.CurrentTopic+"\"?")
	}
	if ctx.LastCategory != "" {
		out = append(out, "Another "+string(ctx.LastCategory)+" request?")
	}
	return out
}

// Clear removes one user/session's context.
func (s *Store) Clear(user, session string) {
	s.clear(contextKey{user, session})
}

func (s *Store) clear(key contextKey) {
	s.mapMu.Lock()
	delete(s.contexts, key)
	delete(s.locks, key)
	s.mapMu.Unlock()
	if s.shared != nil {
		_ = s.shared.Delete(context.Background(), key.sharedKey())
		_ = s.shared.RemoveFromSet(context.Background(), "user_sessions:"+key.user, key.session)
	}
}

// ClearUser removes every context belonging to user.
func (s *Store) ClearUser(user string) {
	s.mapMu.Lock()
	var toDelete []contextKey
	for key := range s.contexts {
		if key.user == user {
			toDelete = append(toDelete, key)
		}
	}
	for _, key := range toDelete {
		delete(s.contexts, key)
		delete(s.locks, key)
	}
	s.mapMu.Unlock()
	if s.shared != nil {
		for _, key := range toDelete {
			_ = s.shared.Delete(context.Background(), key.sharedKey())
		}
		_ = s.shared.Delete(context.Background(), "user_sessions:"+user)
	}
}

// mirror writes ctx to the shared KV and records the session id under the
// user's active-session set. Failures are swallowed: the
// shared KV is never authoritative.
func (s *Store) mirror(key contextKey, ctx *model.ConversationContext) {
	if s.shared == nil {
		return
	}
	raw, err := json.Marshal(ctx)
	if err != nil {
		return
	}
	background := context.Background()
	_ = s.shared.Set(background, key.sharedKey(), raw, model.IdleExpiry)
	_ = s.shared.AddToSet(background, "user_sessions:"+key.user, key.session, model.IdleExpiry)
}

// evictIfNeededLocked drops the oldest-by-last-activity 20% when the local
// map overflows capacity. Caller must hold s.mapMu.
func (s *Store) evictIfNeededLocked() {
	if len(s.contexts) <= s.maxContexts {
		return
	}
	type entry struct {
		key  contextKey
		last time.Time
	}
	ordered := make([]entry, 0, len(s.contexts))
	for k, v := range s.contexts {
		ordered = append(ordered, entry{k, v.LastActivity})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].last.Before(ordered[j].last) })
	toEvict := int(float64(len(ordered)) * overflowEvictFraction)
	if toEvict < len(ordered)-s.maxContexts {
		toEvict = len(ordered) - s.maxContexts
	}
	for i := 0; i < toEvict && i < len(ordered); i++ {
		delete(s.contexts, ordered[i].key)
		delete(s.locks, ordered[i].key)
	}
}

var aboutPhraseRe = regexp.MustCompile(`(?i)\b(?:about|on|regarding|for)\s+(.+)$`)

// extractTopic applies category-specific "about/on/regarding/for" capture
// for document-generation and web-search; other categories leave the topic
// unchanged.
func extractTopic(category model.Category, userText, currentTopic string) string {
	if category != model.CategoryDocumentGeneration && category != model.CategoryWebSearch {
		return currentTopic
	}
	m := aboutPhraseRe.FindStringSubmatch(userText)
	if len(m) != 2 {
		return currentTopic
	}
	return strings.TrimSpace(m[1])
}

// cloneContext deep-copies a context so callers can't mutate store-owned
// state through the returned value (adapted from the teacher's
// deepCloneMap/deepCloneValue helpers in internal/sessions/memory.go).
func cloneContext(ctx *model.ConversationContext) *model.ConversationContext {
	clone := &model.ConversationContext{
		UserID:       ctx.UserID,
		SessionID:    ctx.SessionID,
		CurrentTopic: ctx.CurrentTopic,
		LastCategory: ctx.LastCategory,
		LastActivity: ctx.LastActivity,
	}
	clone.History = append([]model.Interaction(nil), ctx.History...)
	clone.ActiveParameters = cloneMap(ctx.ActiveParameters)
	clone.Preferences = cloneMap(ctx.Preferences)
	return clone
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
