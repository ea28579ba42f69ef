// Package websearch implements the web_search tool kind of the Tool
// Broker, adapted from the teacher's
// internal/tools/websearch/search.go: concurrent multi-backend fan-out,
// dedup-by-URL merge, and composite-score ranking, supplemented per
// SPEC_FULL.md with a Provider interface over three concrete backends.
package websearch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/haasonsaas/jarvisgate/internal/sharedkv"
)

// Backend identifies a search provider.
type Backend string

const (
	BackendSearXNG    Backend = "searxng"
	BackendBrave      Backend = "brave"
	BackendDuckDuckGo Backend = "duckduckgo"
)

// Result is one search hit.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet"`
	Backend Backend `json:"backend"`
	Score   float64 `json:"score"`
}

// Provider is satisfied by each concrete search backend.
type Provider interface {
	Name() Backend
	Search(ctx context.Context, query string, count int) ([]Result, error)
}

// authoritativeDomains get a ranking bump.
var authoritativeDomains = map[string]bool{
	"wikipedia.org": true, "github.com": true, "stackoverflow.com": true,
	"docs.microsoft.com": true, "developer.mozilla.org": true,
}

const cacheTTL = time.Hour

// Aggregator fans a query out to every registered provider concurrently,
// merges by URL, scores, and caches the merged result.
type Aggregator struct {
	providers []Provider
	cache     sharedkv.Store
}

// NewAggregator builds an Aggregator over the given providers, in
// fallback-preference order.
func NewAggregator(cache sharedkv.Store, providers ...Provider) *Aggregator {
	return &Aggregator{providers: providers, cache: cache}
}

// Search runs the fan-out/merge/rank pipeline and truncates to n results.
func (a *Aggregator) Search(ctx context.Context, query string, n int) ([]Result, error) {
	if n <= 0 {
		n = 5
	}
	key := cacheKey(query, n)
	if a.cache != nil {
		if raw, ok, err := a.cache.Get(ctx, key); err == nil && ok {
			var cached []Result
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		}
	}

	outcomes := make([]providerOutcome, len(a.providers))
	var wg sync.WaitGroup
	for i, p := range a.providers {
		wg.Add(1)
		go func(idx int, provider Provider) {
			defer wg.Done()
			results, err := provider.Search(ctx, query, n)
			outcomes[idx] = providerOutcome{results: results, err: err}
		}(i, p)
	}
	wg.Wait()

	merged := mergeByURL(outcomes, query, n)
	score(merged, query)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Score > merged[j].Score })
	if len(merged) > n {
		merged = merged[:n]
	}

	anySucceeded := false
	for _, o := range outcomes {
		if o.err == nil {
			anySucceeded = true
			break
		}
	}
	if !anySucceeded && len(a.providers) > 0 {
		return nil, fmt.Errorf("websearch: all %d backends failed", len(a.providers))
	}

	if a.cache != nil {
		if raw, err := json.Marshal(merged); err == nil {
			_ = a.cache.Set(ctx, key, raw, cacheTTL)
		}
	}
	return merged, nil
}

type providerOutcome struct {
	results []Result
	err     error
}

func mergeByURL(outcomes []providerOutcome, _ string, _ int) []Result {
	seen := map[string]bool{}
	var merged []Result
	for _, o := range outcomes {
		if o.err != nil {
			continue
		}
		for _, r := range o.results {
			if seen[r.URL] {
				continue
			}
			seen[r.URL] = true
			merged = append(merged, r)
		}
	}
	return merged
}

// score ranks a result: a base relevance score plus a 0.2 bump for an
// authoritative domain and a 0.1 bump when the query
// terms appear in the title.
func score(results []Result, query string) {
	queryLower := strings.ToLower(query)
	for i := range results {
		base := 0.5 // providers here don't return a native relevance score
		if isAuthoritative(results[i].URL) {
			base += 0.2
		}
		if strings.Contains(strings.ToLower(results[i].Title), queryLower) {
			base += 0.1
		}
		results[i].Score = base
	}
}

func isAuthoritative(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	for domain := range authoritativeDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

func cacheKey(query string, n int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", query, n)))
	return "search_cache:" + hex.EncodeToString(sum[:])
}
