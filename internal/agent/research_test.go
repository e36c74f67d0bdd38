package agent_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agentdesk/agentdesk/internal/agent"
	"github.com/agentdesk/agentdesk/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePrompt(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent_prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func researchTools() []tools.Tool {
	noop := func(_ context.Context, input string) (string, error) { return input, nil }
	return []tools.Tool{
		{Name: tools.WebSearchName, Description: "search the web", Invoke: noop},
		{Name: tools.WriteFileName, Description: "write the report", Invoke: noop},
	}
}

type researchAudit struct {
	success []bool
}

func (a *researchAudit) LogResearch(_ context.Context, _ string, success bool, _ []string, _ time.Duration) {
	a.success = append(a.success, success)
}

func TestLoadPromptTemplateMissing(t *testing.T) {
	_, err := agent.LoadPromptTemplate(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}

func TestResearchRendersPrompt(t *testing.T) {
	tmpl, err := agent.LoadPromptTemplate(writePrompt(t, "Tools:\n{{.Tools}}\nUse one of [{{.ToolNames}}]."))
	require.NoError(t, err)

	var got string
	runner := runnerFunc(func(_ context.Context, systemPrompt, _ string, _ []tools.Tool) (*agent.RunResult, error) {
		got = systemPrompt
		return &agent.RunResult{Answer: "done"}, nil
	})
	r, err := agent.NewResearch(runner, tmpl, researchTools(), nil)
	require.NoError(t, err)

	assert.Equal(t, "done", r.Answer(context.Background(), "latest go release"))
	assert.Equal(t, "Tools:\nWebSearch: search the web\nWriteFile: write the report\nUse one of [WebSearch, WriteFile].", got)
	assert.Equal(t, got, r.SystemPrompt())
}

func TestResearchAnswerFailures(t *testing.T) {
	tmpl, err := agent.LoadPromptTemplate(writePrompt(t, "{{.ToolNames}}"))
	require.NoError(t, err)

	audit := &researchAudit{}
	failing := runnerFunc(func(context.Context, string, string, []tools.Tool) (*agent.RunResult, error) {
		return nil, errors.New("ollama unreachable")
	})
	r, err := agent.NewResearch(failing, tmpl, researchTools(), audit)
	require.NoError(t, err)
	out := r.Answer(context.Background(), "q")
	assert.True(t, strings.HasPrefix(out, agent.ErrorPrefix))
	assert.Contains(t, out, "ollama unreachable")

	empty := runnerFunc(func(context.Context, string, string, []tools.Tool) (*agent.RunResult, error) {
		return &agent.RunResult{}, nil
	})
	r, err = agent.NewResearch(empty, tmpl, researchTools(), audit)
	require.NoError(t, err)
	assert.Equal(t, agent.NoOutput, r.Answer(context.Background(), "q"))

	panicking := runnerFunc(func(context.Context, string, string, []tools.Tool) (*agent.RunResult, error) {
		panic("nil map")
	})
	r, err = agent.NewResearch(panicking, tmpl, researchTools(), audit)
	require.NoError(t, err)
	assert.Contains(t, r.Answer(context.Background(), "q"), "nil map")

	assert.Equal(t, []bool{false, true, false}, audit.success)
}
