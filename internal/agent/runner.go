// Package agent runs tool-using model conversations and routes helpdesk
// queries to the specialist for their category.
package agent

import (
	"context"
	"fmt"

	"github.com/agentdesk/agentdesk/internal/tools"
)

// finalAnswerNudge is sent when the iteration cap is reached
const finalAnswerNudge = "You have enough information. Provide your final answer now without calling any more tools."

// RunResult is the outcome of one agent run
type RunResult struct {
	Answer    string
	ToolsUsed []string
}

// Runner drives the model's reasoning loop over a tool set. Implementations
// own their iteration cap and timeout.
type Runner interface {
	Run(ctx context.Context, systemPrompt, query string, toolSet []tools.Tool) (*RunResult, error)
}

// ToolCall represents a tool invocation request from the model
type ToolCall struct {
	ID    string
	Name  string
	Input map[string]interface{}
}

// RunnerOptions are shared by the model adapters
type RunnerOptions struct {
	MaxIterations int
	Timeout       int // seconds, 0 disables
}

func (o RunnerOptions) maxIterations() int {
	if o.MaxIterations < 1 {
		return 8
	}
	return o.MaxIterations
}

func executeTool(ctx context.Context, tc ToolCall, toolSet []tools.Tool) (string, error) {
	for _, t := range toolSet {
		if t.Name == tc.Name {
			return t.Call(ctx, tc.Input)
		}
	}
	return "", fmt.Errorf("unknown tool: %s", tc.Name)
}

func preview(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
