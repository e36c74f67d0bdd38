package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var (
	ddgTitleRe   = regexp.MustCompile(`(?s)<a[^>]+class="result__a"[^>]+href="([^"]+)"[^>]*>(.+?)</a>`)
	ddgSnippetRe = regexp.MustCompile(`(?s)<a[^>]+class="result__snippet"[^>]*>(.+?)</a>`)
	tagRe        = regexp.MustCompile(`<[^>]*>`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// SearchResult is a single web search hit
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// DuckDuckGo searches the web through the key-less DuckDuckGo HTML endpoint
type DuckDuckGo struct {
	baseURL   string
	client    *http.Client
	userAgent string
}

// NewDuckDuckGo creates a search client for baseURL with a request timeout
func NewDuckDuckGo(baseURL string, timeout time.Duration) *DuckDuckGo {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &DuckDuckGo{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return errors.New("too many redirects")
				}
				return nil
			},
		},
		userAgent: defaultUserAgent,
	}
}

// Search returns up to max results for query
func (d *DuckDuckGo) Search(ctx context.Context, query string, max int) ([]SearchResult, error) {
	searchURL := d.baseURL + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web search: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	results := ParseDuckDuckGoHTML(string(body))
	if max > 0 && len(results) > max {
		results = results[:max]
	}
	return results, nil
}

// ParseDuckDuckGoHTML extracts results from the HTML endpoint's markup
func ParseDuckDuckGoHTML(page string) []SearchResult {
	titles := ddgTitleRe.FindAllStringSubmatch(page, -1)
	snippets := ddgSnippetRe.FindAllStringSubmatch(page, -1)

	results := make([]SearchResult, 0, len(titles))
	for i, m := range titles {
		r := SearchResult{
			URL:   resolveRedirect(html.UnescapeString(m[1])),
			Title: cleanHTML(m[2]),
		}
		if i < len(snippets) {
			r.Snippet = cleanHTML(snippets[i][1])
		}
		if r.Title == "" || r.URL == "" {
			continue
		}
		results = append(results, r)
	}
	return results
}

// resolveRedirect unwraps //duckduckgo.com/l/?uddg=<target> links
func resolveRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func cleanHTML(s string) string {
	s = tagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// FormatResults renders results as tool output
func FormatResults(query string, results []SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No web results found for %q.", query)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Web results for %q:\n", query)
	for i, r := range results {
		fmt.Fprintf(&sb, "\n%d. %s\n   %s\n", i+1, r.Title, r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&sb, "   %s\n", r.Snippet)
		}
	}
	return sb.String()
}
