package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// httpProvider holds the common HTTP plumbing adapted from the teacher's
// WebSearchTool.httpClient (internal/tools/websearch/search.go).
type httpProvider struct {
	client *http.Client
}

func newHTTPProvider() httpProvider {
	return httpProvider{client: &http.Client{Timeout: 15 * time.Second}}
}

func (p httpProvider) get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", rawURL, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// SearXNGProvider queries a self-hosted SearXNG instance.
type SearXNGProvider struct {
	httpProvider
	BaseURL string
}

// NewSearXNGProvider builds a provider against baseURL.
func NewSearXNGProvider(baseURL string) *SearXNGProvider {
	return &SearXNGProvider{httpProvider: newHTTPProvider(), BaseURL: baseURL}
}

func (p *SearXNGProvider) Name() Backend { return BackendSearXNG }

func (p *SearXNGProvider) Search(ctx context.Context, query string, count int) ([]Result, error) {
	if p.BaseURL == "" {
		return nil, fmt.Errorf("searxng: base url not configured")
	}
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("searxng: invalid base url: %w", err)
	}
	u.Path = "/search"
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("categories", "general")
	u.RawQuery = q.Encode()

	body, err := p.get(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("searxng: %w", err)
	}
	var parsed struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("searxng: %w", err)
	}
	out := make([]Result, 0, count)
	for i := 0; i < len(parsed.Results) && i < count; i++ {
		r := parsed.Results[i]
		out = append(out, Result{Title: r.Title, URL: r.URL, Snippet: r.Content, Backend: BackendSearXNG})
	}
	return out, nil
}

// BraveProvider queries the Brave Search API.
type BraveProvider struct {
	httpProvider
	APIKey string
}

// NewBraveProvider builds a provider authenticated with apiKey.
func NewBraveProvider(apiKey string) *BraveProvider {
	return &BraveProvider{httpProvider: newHTTPProvider(), APIKey: apiKey}
}

func (p *BraveProvider) Name() Backend { return BackendBrave }

func (p *BraveProvider) Search(ctx context.Context, query string, count int) ([]Result, error) {
	if p.APIKey == "" {
		return nil, fmt.Errorf("brave: api key not configured")
	}
	u := url.URL{Scheme: "https", Host: "api.search.brave.com", Path: "/res/v1/web/search"}
	q := url.Values{}
	q.Set("q", query)
	q.Set("count", fmt.Sprintf("%d", count))
	u.RawQuery = q.Encode()

	body, err := p.get(ctx, u.String(), map[string]string{
		"Accept":                "application/json",
		"X-Subscription-Token": p.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("brave: %w", err)
	}
	var parsed struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("brave: %w", err)
	}
	out := make([]Result, 0, count)
	for i := 0; i < len(parsed.Web.Results) && i < count; i++ {
		r := parsed.Web.Results[i]
		out = append(out, Result{Title: r.Title, URL: r.URL, Snippet: r.Description, Backend: BackendBrave})
	}
	return out, nil
}

// DuckDuckGoProvider queries DuckDuckGo's Instant Answer API. It never
// requires credentials, so it is the fallback-of-last-resort backend.
type DuckDuckGoProvider struct {
	httpProvider
}

// NewDuckDuckGoProvider builds the no-credential fallback provider.
func NewDuckDuckGoProvider() *DuckDuckGoProvider {
	return &DuckDuckGoProvider{httpProvider: newHTTPProvider()}
}

func (p *DuckDuckGoProvider) Name() Backend { return BackendDuckDuckGo }

func (p *DuckDuckGoProvider) Search(ctx context.Context, query string, count int) ([]Result, error) {
	endpoint := fmt.Sprintf("https://api.duckduckgo.com/?q=%s&format=json&no_html=1", url.QueryEscape(query))
	body, err := p.get(ctx, endpoint, map[string]string{"User-Agent": "Mozilla/5.0 (compatible; jarvisgate/1.0)"})
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: %w", err)
	}
	var parsed struct {
		AbstractText  string `json:"AbstractText"`
		AbstractURL   string `json:"AbstractURL"`
		Heading       string `json:"Heading"`
		RelatedTopics []struct {
			FirstURL string `json:"FirstURL"`
			Text     string `json:"Text"`
		} `json:"RelatedTopics"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("duckduckgo: %w", err)
	}
	out := make([]Result, 0, count)
	if parsed.AbstractText != "" && parsed.AbstractURL != "" {
		out = append(out, Result{Title: parsed.Heading, URL: parsed.AbstractURL, Snippet: parsed.AbstractText, Backend: BackendDuckDuckGo})
	}
	for i := 0; i < len(parsed.RelatedTopics) && len(out) < count; i++ {
		topic := parsed.RelatedTopics[i]
		if topic.FirstURL == "" || topic.Text == "" {
			continue
		}
		title := topic.Text
		if len(title) > 100 {
			title = title[:100]
		}
		out = append(out, Result{Title: title, URL: topic.FirstURL, Snippet: topic.Text, Backend: BackendDuckDuckGo})
	}
	return out, nil
}
