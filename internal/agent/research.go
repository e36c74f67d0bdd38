package agent

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/agentdesk/agentdesk/internal/tools"
	"github.com/rs/zerolog"
)

// NoOutput is returned when the research run ends without any text
const NoOutput = "No output returned."

// PromptData is what the research prompt template can reference
type PromptData struct {
	Tools     string // "Name: description" lines
	ToolNames string // comma separated
}

// LoadPromptTemplate reads and parses the research prompt. The server must
// not start without it.
func LoadPromptTemplate(path string) (*template.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt template: %w", err)
	}
	tmpl, err := template.New("research").Option("missingkey=error").Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", path, err)
	}
	return tmpl, nil
}

// ResearchAuditor receives one event per research request
type ResearchAuditor interface {
	LogResearch(ctx context.Context, query string, success bool, toolsUsed []string, elapsed time.Duration)
}

// Research is the single-agent variant: one runner, one tool set, no routing
type Research struct {
	runner       Runner
	toolSet      []tools.Tool
	systemPrompt string
	audit        ResearchAuditor
}

// NewResearch renders the system prompt from tmpl with the tool set's
// descriptions. A template that references an unknown field is an error.
func NewResearch(runner Runner, tmpl *template.Template, toolSet []tools.Tool, audit ResearchAuditor) (*Research, error) {
	if runner == nil {
		return nil, fmt.Errorf("research: runner is required")
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, PromptData{
		Tools:     tools.Describe(toolSet),
		ToolNames: tools.NameList(toolSet),
	}); err != nil {
		return nil, fmt.Errorf("render prompt template: %w", err)
	}
	return &Research{
		runner:       runner,
		toolSet:      toolSet,
		systemPrompt: buf.String(),
		audit:        audit,
	}, nil
}

// SystemPrompt returns the rendered prompt
func (r *Research) SystemPrompt() string {
	return r.systemPrompt
}

// Answer runs the agent and always returns displayable text
func (r *Research) Answer(ctx context.Context, query string) string {
	start := time.Now()
	res, err := runSafely(ctx, r.runner, "research", r.systemPrompt, query, r.toolSet)

	var used []string
	if res != nil {
		used = res.ToolsUsed
	}
	if r.audit != nil {
		defer func() { r.audit.LogResearch(ctx, query, err == nil, used, time.Since(start)) }()
	}

	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Strs("tools_used", used).Msg("research agent failed")
		return ErrorPrefix + err.Error()
	}
	if res == nil || strings.TrimSpace(res.Answer) == "" {
		return NoOutput
	}
	answer := strings.TrimSpace(res.Answer)

	zerolog.Ctx(ctx).Info().
		Strs("tools_used", used).
		Dur("elapsed", time.Since(start)).
		Msg("research answered")
	return answer
}
