package security

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/agentdesk/agentdesk/internal/models"
	"github.com/rs/zerolog"
)

// AuditLogger logs request outcomes with hashed query text. Events go to the
// context's logger so they carry the request id.
type AuditLogger struct {
	enabled bool
}

// NewAuditLogger creates an audit logger; a disabled one drops every event
func NewAuditLogger(enabled bool) *AuditLogger {
	return &AuditLogger{enabled: enabled}
}

// LogRoute records a routed helpdesk request
func (a *AuditLogger) LogRoute(ctx context.Context, state *models.AgentState, elapsed time.Duration) {
	if !a.enabled || state == nil {
		return
	}
	zerolog.Ctx(ctx).Info().
		Str("event", "route_audit").
		Str("query_hash", hashStr(state.Query)[:16]).
		Str("category", string(state.Classification)).
		Str("status", string(state.Status)).
		Strs("tools_used", state.ToolsUsed).
		Int64("execution_time_ms", elapsed.Milliseconds()).
		Msg("audit")
}

// LogResearch records a research request
func (a *AuditLogger) LogResearch(ctx context.Context, query string, success bool, toolsUsed []string, elapsed time.Duration) {
	if !a.enabled {
		return
	}
	zerolog.Ctx(ctx).Info().
		Str("event", "research_audit").
		Str("query_hash", hashStr(query)[:16]).
		Bool("success", success).
		Strs("tools_used", toolsUsed).
		Int64("execution_time_ms", elapsed.Milliseconds()).
		Msg("audit")
}

// LogRejected records a query refused by the input guard
func (a *AuditLogger) LogRejected(ctx context.Context, query, reason, remoteAddr string) {
	if !a.enabled {
		return
	}
	zerolog.Ctx(ctx).Warn().
		Str("event", "query_rejected").
		Str("query_hash", hashStr(query)[:16]).
		Str("reason", reason).
		Str("remote_addr", remoteAddr).
		Msg("audit")
}

func hashStr(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", h)
}
