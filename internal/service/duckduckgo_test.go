package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agentdesk/agentdesk/internal/service"
)

const ddgPage = `<html><body>
<div class="result results_links web-result">
  <h2 class="result__title">
    <a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fvpn&amp;rut=abc">Fix <b>VPN</b> issues</a>
  </h2>
  <a class="result__snippet" href="//duckduckgo.com/l/?uddg=x">Restart the &amp; client and check <b>credentials</b>.</a>
</div>
<div class="result results_links web-result">
  <h2 class="result__title">
    <a rel="nofollow" class="result__a" href="https://example.org/wifi">Wifi guide</a>
  </h2>
  <a class="result__snippet" href="https://example.org/wifi">Reset the router.</a>
</div>
</body></html>`

func TestParseDuckDuckGoHTML(t *testing.T) {
	results := service.ParseDuckDuckGoHTML(ddgPage)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Title != "Fix VPN issues" {
		t.Errorf("title = %q", results[0].Title)
	}
	if results[0].URL != "https://example.com/vpn" {
		t.Errorf("redirect not unwrapped: %q", results[0].URL)
	}
	if results[0].Snippet != "Restart the & client and check credentials." {
		t.Errorf("snippet = %q", results[0].Snippet)
	}
	if results[1].URL != "https://example.org/wifi" {
		t.Errorf("url = %q", results[1].URL)
	}
}

func TestDuckDuckGoSearch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(ddgPage))
	}))
	defer srv.Close()

	ddg := service.NewDuckDuckGo(srv.URL+"/html/", 5*time.Second)
	results, err := ddg.Search(context.Background(), "vpn not connecting", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotQuery != "vpn not connecting" {
		t.Errorf("query sent = %q", gotQuery)
	}
	if len(results) != 1 {
		t.Fatalf("max results not applied, got %d", len(results))
	}

	out := service.FormatResults("vpn not connecting", results)
	if !strings.Contains(out, "https://example.com/vpn") {
		t.Errorf("formatted output missing url: %s", out)
	}
}

func TestDuckDuckGoSearchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ddg := service.NewDuckDuckGo(srv.URL, time.Second)
	if _, err := ddg.Search(context.Background(), "anything", 5); err == nil {
		t.Error("expected error on 429")
	}
}

func TestFormatResultsEmpty(t *testing.T) {
	out := service.FormatResults("nothing", nil)
	if !strings.Contains(out, "No web results") {
		t.Errorf("unexpected output: %q", out)
	}
}
