package agent_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/agentdesk/agentdesk/internal/agent"
	"github.com/agentdesk/agentdesk/internal/config"
	"github.com/agentdesk/agentdesk/internal/models"
	"github.com/agentdesk/agentdesk/internal/service"
	"github.com/agentdesk/agentdesk/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toolFirstRunner calls the first tool with the query and answers with its output
type toolFirstRunner struct {
	prompts []string
}

func (r *toolFirstRunner) Run(ctx context.Context, systemPrompt, query string, toolSet []tools.Tool) (*agent.RunResult, error) {
	r.prompts = append(r.prompts, systemPrompt)
	if len(toolSet) == 0 {
		return &agent.RunResult{Answer: "no tools"}, nil
	}
	out, err := toolSet[0].Invoke(ctx, query)
	if err != nil {
		return nil, err
	}
	return &agent.RunResult{Answer: out, ToolsUsed: []string{toolSet[0].Name}}, nil
}

type runnerFunc func(ctx context.Context, systemPrompt, query string, toolSet []tools.Tool) (*agent.RunResult, error)

func (f runnerFunc) Run(ctx context.Context, systemPrompt, query string, toolSet []tools.Tool) (*agent.RunResult, error) {
	return f(ctx, systemPrompt, query, toolSet)
}

type recordingAuditor struct {
	states []*models.AgentState
}

func (a *recordingAuditor) LogRoute(_ context.Context, state *models.AgentState, _ time.Duration) {
	a.states = append(a.states, state)
}

func newRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	reg := tools.NewRegistry()
	docs := service.NewStaticDocs()
	reg.MustRegister(
		tools.ReadITDocs(docs),
		tools.ReadFinanceDocs(docs),
		tools.Tool{
			Name:        tools.WebSearchName,
			Description: "stub",
			Invoke: func(_ context.Context, input string) (string, error) {
				return "[WEB SEARCH] external info on " + input, nil
			},
		},
	)
	reg.Freeze()
	return reg
}

func newRouter(t *testing.T, runner agent.Runner, audit agent.RouteAuditor) *agent.Router {
	t.Helper()
	classifier, err := service.NewClassifier(config.DefaultRules(), config.DefaultCategory)
	require.NoError(t, err)
	specialists, err := agent.DefaultSpecialists(newRegistry(t))
	require.NoError(t, err)
	router, err := agent.NewRouter(classifier, specialists, runner, audit)
	require.NoError(t, err)
	return router
}

func TestRouteITEndToEnd(t *testing.T) {
	audit := &recordingAuditor{}
	runner := &toolFirstRunner{}
	router := newRouter(t, runner, audit)

	state := router.Route(context.Background(), "my VPN is not connecting")

	assert.Equal(t, models.CategoryIT, state.Classification)
	assert.Equal(t, models.StatusAnswered, state.Status)
	assert.Equal(t, []string{tools.ReadITDocsName}, state.ToolsUsed)
	assert.Equal(t, "[IT DOCS] Here's how to my VPN is not connecting", state.Answer)
	require.Len(t, runner.prompts, 1)
	assert.Contains(t, runner.prompts[0], "IT helpdesk")
	require.Len(t, audit.states, 1)
	assert.Same(t, state, audit.states[0])
}

func TestRouteFinanceEndToEnd(t *testing.T) {
	router := newRouter(t, &toolFirstRunner{}, nil)

	state := router.Route(context.Background(), "need reimbursement for travel")

	assert.Equal(t, models.CategoryFinance, state.Classification)
	assert.Equal(t, models.StatusAnswered, state.Status)
	assert.Equal(t, []string{tools.ReadFinanceDocsName}, state.ToolsUsed)
	assert.NotEmpty(t, state.Answer)
	assert.Contains(t, state.Answer, "[Finance DOCS]")
}

func TestRouteUnmatchedGoesToDefault(t *testing.T) {
	router := newRouter(t, &toolFirstRunner{}, nil)
	state := router.Route(context.Background(), "where is the cafeteria")
	assert.Equal(t, models.CategoryIT, state.Classification)
	assert.False(t, state.Failed())
}

func TestRouteContainsRunnerFailures(t *testing.T) {
	tests := []struct {
		name   string
		runner agent.Runner
		want   string
	}{
		{
			name: "error",
			runner: runnerFunc(func(context.Context, string, string, []tools.Tool) (*agent.RunResult, error) {
				return nil, errors.New("could not parse LLM output")
			}),
			want: "could not parse LLM output",
		},
		{
			name: "panic",
			runner: runnerFunc(func(context.Context, string, string, []tools.Tool) (*agent.RunResult, error) {
				panic("boom")
			}),
			want: "boom",
		},
		{
			name: "empty answer",
			runner: runnerFunc(func(context.Context, string, string, []tools.Tool) (*agent.RunResult, error) {
				return &agent.RunResult{Answer: "  ", ToolsUsed: []string{"WebSearch"}}, nil
			}),
			want: models.ErrNoAnswer.Error(),
		},
		{
			name: "nil result",
			runner: runnerFunc(func(context.Context, string, string, []tools.Tool) (*agent.RunResult, error) {
				return nil, nil
			}),
			want: models.ErrNoAnswer.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(t, tt.runner, nil)

			var state *models.AgentState
			require.NotPanics(t, func() {
				state = router.Route(context.Background(), "invoice missing")
			})
			assert.Equal(t, models.CategoryFinance, state.Classification)
			assert.Equal(t, models.StatusFailed, state.Status)
			assert.True(t, strings.HasPrefix(state.Answer, agent.ErrorPrefix), state.Answer)
			assert.Contains(t, state.Answer, tt.want)
		})
	}
}

func TestNewRouterRequiresEverySpecialist(t *testing.T) {
	classifier, err := service.NewClassifier(config.DefaultRules(), config.DefaultCategory)
	require.NoError(t, err)
	runner := &toolFirstRunner{}

	_, err = agent.NewRouter(classifier, []agent.Specialist{{Category: models.CategoryIT}}, runner, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Finance")

	_, err = agent.NewRouter(classifier, []agent.Specialist{
		{Category: models.CategoryIT},
		{Category: models.CategoryFinance},
	}, nil, nil)
	require.Error(t, err, "specialists without any runner")

	_, err = agent.NewRouter(classifier, []agent.Specialist{
		{Category: models.CategoryIT},
		{Category: models.CategoryIT},
		{Category: models.CategoryFinance},
	}, runner, nil)
	require.Error(t, err, "duplicate specialist")
}

func TestSpecialistRunnerOverridesDefault(t *testing.T) {
	classifier, err := service.NewClassifier(config.DefaultRules(), config.DefaultCategory)
	require.NoError(t, err)

	finance := runnerFunc(func(context.Context, string, string, []tools.Tool) (*agent.RunResult, error) {
		return &agent.RunResult{Answer: "finance runner"}, nil
	})
	router, err := agent.NewRouter(classifier, []agent.Specialist{
		{Category: models.CategoryIT},
		{Category: models.CategoryFinance, Runner: finance},
	}, &toolFirstRunner{}, nil)
	require.NoError(t, err)

	assert.Equal(t, "finance runner", router.Route(context.Background(), "budget").Answer)
	assert.Equal(t, "no tools", router.Route(context.Background(), "wifi").Answer)
}
