package handler

import (
	"context"
	"net/http"

	"github.com/agentdesk/agentdesk/internal/models"
	"github.com/agentdesk/agentdesk/internal/security"
)

// QueryRouter is satisfied by *agent.Router
type QueryRouter interface {
	Route(ctx context.Context, query string) *models.AgentState
}

type helpdeskPage struct {
	Query    string
	Result   string
	Category models.Category
	Failed   bool
}

// HelpdeskHandler handles GET / and POST / for the multi-agent helpdesk
type HelpdeskHandler struct {
	router QueryRouter
	guard  *security.PromptValidator
	audit  *security.AuditLogger
}

// NewHelpdeskHandler creates a handler serving the routed helpdesk form
func NewHelpdeskHandler(router QueryRouter, guard *security.PromptValidator, audit *security.AuditLogger) *HelpdeskHandler {
	return &HelpdeskHandler{router: router, guard: guard, audit: audit}
}

// Form handles GET /
func (h *HelpdeskHandler) Form(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, "helpdesk.html", helpdeskPage{})
}

// Submit handles POST /
func (h *HelpdeskHandler) Submit(w http.ResponseWriter, r *http.Request) {
	query, reject := readQuery(w, r, h.guard, h.audit)
	if reject != "" {
		render(w, http.StatusBadRequest, "helpdesk.html", helpdeskPage{
			Query:  query,
			Result: "Error: " + reject,
			Failed: true,
		})
		return
	}

	state := h.router.Route(r.Context(), query)
	render(w, http.StatusOK, "helpdesk.html", helpdeskPage{
		Query:    query,
		Result:   state.Answer,
		Category: state.Classification,
		Failed:   state.Failed(),
	})
}
