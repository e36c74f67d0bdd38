package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/agentdesk/agentdesk/internal/models"
)

// Doc is one internal documentation entry returned by a DocSource
type Doc struct {
	Title string
	Body  string
	URL   string
}

// DocSource searches internal documentation for a category
type DocSource interface {
	Search(ctx context.Context, category models.Category, query string, limit int) ([]Doc, error)
}

// HealthChecker is implemented by backends that can report connectivity
type HealthChecker interface {
	TestConnection(ctx context.Context) error
}

// StaticDocs answers from a canned per-category response. It is the default
// source so the demo runs without a search backend.
type StaticDocs struct{}

// NewStaticDocs creates the canned doc source used when no backend is configured
func NewStaticDocs() *StaticDocs {
	return &StaticDocs{}
}

func (s *StaticDocs) Search(_ context.Context, category models.Category, query string, _ int) ([]Doc, error) {
	return []Doc{{
		Body: fmt.Sprintf("[%s DOCS] Here's how to %s", category, query),
	}}, nil
}

// FormatDocs renders search hits as tool output
func FormatDocs(category models.Category, query string, docs []Doc) string {
	if len(docs) == 0 {
		return fmt.Sprintf("No internal %s documentation matched %q.", category, query)
	}
	// untitled single entries are already formatted answers
	if len(docs) == 1 && docs[0].Title == "" {
		return docs[0].Body
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Internal %s documentation for %q:\n", category, query)
	for i, d := range docs {
		fmt.Fprintf(&sb, "\n%d. %s\n", i+1, d.Title)
		if d.URL != "" {
			fmt.Fprintf(&sb, "   %s\n", d.URL)
		}
		fmt.Fprintf(&sb, "   %s\n", truncate(strings.TrimSpace(d.Body), 600))
	}
	return sb.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "how": true, "what": true,
	"not": true, "can": true, "does": true, "need": true, "my": true, "is": true,
	"are": true, "was": true, "from": true, "this": true, "that": true, "have": true,
}

// searchTerms extracts lowercase keywords from a free-text query
func searchTerms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r > 127)
	})
	seen := make(map[string]bool, len(fields))
	var terms []string
	for _, f := range fields {
		if len(f) < 3 || stopWords[f] || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return terms
}

// termPattern builds a case-insensitive alternation usable by both RE2
// (BigQuery REGEXP_CONTAINS) and POSIX (Postgres ~*) engines
func termPattern(query string) string {
	terms := searchTerms(query)
	if len(terms) == 0 {
		return regexp.QuoteMeta(strings.ToLower(strings.TrimSpace(query)))
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return "(" + strings.Join(quoted, "|") + ")"
}
