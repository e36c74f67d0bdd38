package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/agentdesk/agentdesk/internal/agent"
	"github.com/agentdesk/agentdesk/internal/security"
)

// Researcher is satisfied by *agent.Research
type Researcher interface {
	Answer(ctx context.Context, query string) string
}

type researchPage struct {
	Query    string
	Response string
	Failed   bool
}

// ResearchHandler handles GET / and POST / for the single research agent
type ResearchHandler struct {
	researcher Researcher
	guard      *security.PromptValidator
	audit      *security.AuditLogger
}

// NewResearchHandler creates a handler serving the research form
func NewResearchHandler(researcher Researcher, guard *security.PromptValidator, audit *security.AuditLogger) *ResearchHandler {
	return &ResearchHandler{researcher: researcher, guard: guard, audit: audit}
}

func (h *ResearchHandler) Form(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, "research.html", researchPage{})
}

func (h *ResearchHandler) Submit(w http.ResponseWriter, r *http.Request) {
	query, reject := readQuery(w, r, h.guard, h.audit)
	if reject != "" {
		render(w, http.StatusBadRequest, "research.html", researchPage{
			Query:    query,
			Response: "❌ Error: " + reject,
			Failed:   true,
		})
		return
	}

	response := h.researcher.Answer(r.Context(), query)
	render(w, http.StatusOK, "research.html", researchPage{
		Query:    query,
		Response: response,
		Failed:   strings.HasPrefix(response, agent.ErrorPrefix),
	})
}
