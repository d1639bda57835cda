package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	searchEndpoint    = "https://html.duckduckgo.com/html/"
	searchTimeout     = 10 * time.Second
	searchUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	defaultNumResults = 5
	maxSnippetLength  = 200
)

// Result patterns for the DuckDuckGo HTML endpoint. The markup is stable
// enough for regex extraction; no DOM parse needed.
var (
	resultLinkRe    = regexp.MustCompile(`<a rel="nofollow" class="result__a" href="([^"]+)">([^<]+)</a>`)
	resultSnippetRe = regexp.MustCompile(`<a class="result__snippet"[^>]*>([^<]+(?:<[^>]+>[^<]*</[^>]+>)*[^<]*)</a>`)
	htmlTagRe       = regexp.MustCompile(`<[^>]+>`)
	redirectURLRe   = regexp.MustCompile(`uddg=([^&]+)`)
)

// SearchResult is one web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SearchService queries the DuckDuckGo HTML endpoint, which needs no API
// key. Failures degrade to an empty result set rather than an error; the
// chat product treats search as best-effort.
type SearchService struct {
	client   *http.Client
	endpoint string
	logger   *slog.Logger
}

// NewSearchService creates a SearchService.
func NewSearchService(logger *slog.Logger) *SearchService {
	return &SearchService{
		client:   &http.Client{Timeout: searchTimeout},
		endpoint: searchEndpoint,
		logger:   logger,
	}
}

// WithEndpoint overrides the search endpoint. Test hook.
func (s *SearchService) WithEndpoint(endpoint string) *SearchService {
	s.endpoint = endpoint
	return s
}

// Search runs a web search and returns up to numResults hits. A zero or
// negative numResults falls back to the default.
func (s *SearchService) Search(ctx context.Context, query string, numResults int) ([]SearchResult, error) {
	if query == "" {
		return nil, ErrContentRequired
	}
	if numResults <= 0 {
		numResults = defaultNumResults
	}

	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", searchUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("search request failed", slog.String("error", err.Error()))
		return []SearchResult{}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("search returned non-200", slog.Int("status", resp.StatusCode))
		return []SearchResult{}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.logger.Warn("search body read failed", slog.String("error", err.Error()))
		return []SearchResult{}, nil
	}

	return parseResults(string(body), numResults), nil
}

// parseResults extracts results from the DuckDuckGo HTML response.
func parseResults(html string, maxResults int) []SearchResult {
	links := resultLinkRe.FindAllStringSubmatch(html, -1)
	snippets := resultSnippetRe.FindAllStringSubmatch(html, -1)

	results := make([]SearchResult, 0, maxResults)
	for i, link := range links {
		if i >= maxResults {
			break
		}

		snippet := ""
		if i < len(snippets) {
			snippet = strings.TrimSpace(htmlTagRe.ReplaceAllString(snippets[i][1], ""))
		}
		if len(snippet) > maxSnippetLength {
			snippet = snippet[:maxSnippetLength] + "..."
		}

		results = append(results, SearchResult{
			Title:   strings.TrimSpace(link[2]),
			URL:     resolveRedirect(link[1]),
			Snippet: snippet,
		})
	}
	return results
}

// resolveRedirect unwraps DuckDuckGo's redirect URLs to the target URL.
func resolveRedirect(raw string) string {
	if !strings.Contains(raw, "uddg=") {
		return raw
	}
	m := redirectURLRe.FindStringSubmatch(raw)
	if m == nil {
		return raw
	}
	unescaped, err := url.QueryUnescape(m[1])
	if err != nil {
		return raw
	}
	return unescaped
}

// FormatResults renders hits for chat display.
func FormatResults(results []SearchResult) string {
	if len(results) == 0 {
		return "No results found."
	}

	var b strings.Builder
	b.WriteString("**Search Results:**\n\n")
	for i, r := range results {
		fmt.Fprintf(&b, "**%d. %s**\n", i+1, r.Title)
		fmt.Fprintf(&b, "   %s\n", r.Snippet)
		fmt.Fprintf(&b, "   %s\n\n", r.URL)
	}
	return b.String()
}
