package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agentdesk/agentdesk/internal/models"
	"github.com/agentdesk/agentdesk/internal/service"
	"github.com/agentdesk/agentdesk/internal/tools"
	"github.com/rs/zerolog"
)

// ErrorPrefix starts every answer produced for a failed run
const ErrorPrefix = "Agent error: "

// Specialist is the agent configuration for one category
type Specialist struct {
	Category     models.Category
	SystemPrompt string
	Tools        []tools.Tool
	Runner       Runner // nil uses the router default
}

// RouteAuditor receives one event per routed request
type RouteAuditor interface {
	LogRoute(ctx context.Context, state *models.AgentState, elapsed time.Duration)
}

// Router classifies a query once and hands it to that category's specialist
type Router struct {
	classifier  *service.Classifier
	specialists map[models.Category]Specialist
	audit       RouteAuditor
}

// NewRouter fails unless every category the classifier can produce has a
// specialist with a runner.
func NewRouter(classifier *service.Classifier, specialists []Specialist, defaultRunner Runner, audit RouteAuditor) (*Router, error) {
	if classifier == nil {
		return nil, errors.New("router: classifier is required")
	}

	bound := make(map[models.Category]Specialist, len(specialists))
	for _, s := range specialists {
		if _, dup := bound[s.Category]; dup {
			return nil, fmt.Errorf("router: duplicate specialist for %q", s.Category)
		}
		if s.Runner == nil {
			s.Runner = defaultRunner
		}
		if s.Runner == nil {
			return nil, fmt.Errorf("router: specialist %q has no runner", s.Category)
		}
		bound[s.Category] = s
	}

	for _, c := range classifier.Categories() {
		if _, ok := bound[c]; !ok {
			return nil, fmt.Errorf("router: no specialist for category %q", c)
		}
	}

	return &Router{classifier: classifier, specialists: bound, audit: audit}, nil
}

// Route runs the full pipeline for one query. It never returns an error and
// never panics: failures come back as a failed state whose Answer starts
// with ErrorPrefix.
func (r *Router) Route(ctx context.Context, query string) *models.AgentState {
	start := time.Now()
	logger := zerolog.Ctx(ctx)
	state := &models.AgentState{Query: query, Status: models.StatusClassifying}

	detail := r.classifier.ClassifyDetail(query)
	state.Classification = detail.Category
	logger.Debug().
		Str("category", string(detail.Category)).
		Str("keyword", detail.Keyword).
		Bool("matched", detail.Matched).
		Msg(detail.Reasoning)

	specialist := r.specialists[state.Classification]
	state.Status = models.StatusDispatched

	res, err := runSafely(ctx, specialist.Runner, string(specialist.Category), specialist.SystemPrompt, query, specialist.Tools)
	if res != nil {
		state.ToolsUsed = res.ToolsUsed
	}
	if err == nil && (res == nil || strings.TrimSpace(res.Answer) == "") {
		err = models.ErrNoAnswer
	}

	if err != nil {
		state.Status = models.StatusFailed
		state.Answer = ErrorPrefix + err.Error()
		logger.Error().Err(err).
			Str("category", string(state.Classification)).
			Strs("tools_used", state.ToolsUsed).
			Msg("specialist failed")
	} else {
		state.Status = models.StatusAnswered
		state.Answer = strings.TrimSpace(res.Answer)
	}

	logger.Info().
		Str("category", string(state.Classification)).
		Str("status", string(state.Status)).
		Int("tool_calls", len(state.ToolsUsed)).
		Dur("elapsed", time.Since(start)).
		Msg("query routed")

	if r.audit != nil {
		r.audit.LogRoute(ctx, state, time.Since(start))
	}
	return state
}

// runSafely converts a runner panic into an error
func runSafely(ctx context.Context, runner Runner, label, systemPrompt, query string, toolSet []tools.Tool) (res *RunResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			zerolog.Ctx(ctx).Error().Interface("panic", rec).Str("agent", label).Msg("runner panicked")
			res, err = nil, fmt.Errorf("internal failure in %s agent: %v", label, rec)
		}
	}()
	return runner.Run(ctx, systemPrompt, query, toolSet)
}
