package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agentdesk/agentdesk/internal/tools"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
)

// AnthropicRunner runs the tool loop on the Anthropic Messages API or a
// compatible provider
type AnthropicRunner struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	opts      RunnerOptions
}

// NewAnthropicRunner creates a runner backed by the Anthropic Messages API.
// An empty baseURL uses the SDK default.
func NewAnthropicRunner(apiKey, model, baseURL string, opts RunnerOptions) *AnthropicRunner {
	if model == "" {
		model = "claude-sonnet-4-6"
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(reqOpts...)
	return &AnthropicRunner{
		client:    client,
		model:     model,
		maxTokens: 4096,
		opts:      opts,
	}
}

// Run calls the model until it stops asking for tools. Tool failures are fed
// back as error tool results; on the last iteration the model is told to
// answer without tools.
func (a *AnthropicRunner) Run(ctx context.Context, systemPrompt, query string, toolSet []tools.Tool) (*RunResult, error) {
	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(a.opts.Timeout)*time.Second)
		defer cancel()
	}

	toolParams := make([]anthropic.ToolUnionUnionParam, len(toolSet))
	for i, t := range toolSet {
		toolParams[i] = anthropic.ToolParam{
			Name:        anthropic.String(t.Name),
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.F[interface{}](t.Schema()),
		}
	}

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(query)),
	}

	result := &RunResult{}
	maxIter := a.opts.maxIterations()

	for iter := 0; iter < maxIter; iter++ {
		params := a.params(systemPrompt, messages)
		params.Tools = anthropic.F(toolParams)

		resp, err := a.client.Messages.New(ctx, params)
		if err != nil {
			return result, fmt.Errorf("LLM call failed: %w", err)
		}

		var text string
		var pending []ToolCall
		for _, block := range resp.Content {
			switch b := block.AsUnion().(type) {
			case anthropic.TextBlock:
				text += b.Text
			case anthropic.ToolUseBlock:
				var input map[string]interface{}
				if err := json.Unmarshal(b.Input, &input); err != nil {
					zerolog.Ctx(ctx).Warn().Err(err).Str("tool", b.Name).Msg("failed to parse tool input")
					input = map[string]interface{}{}
				}
				pending = append(pending, ToolCall{ID: b.ID, Name: b.Name, Input: input})
			}
		}

		zerolog.Ctx(ctx).Debug().
			Int("iter", iter).
			Str("stop_reason", string(resp.StopReason)).
			Str("text_preview", preview(text, 80)).
			Int("tool_calls", len(pending)).
			Msg("agent iteration")

		if resp.StopReason != "tool_use" || len(pending) == 0 {
			result.Answer = text
			return result, nil
		}

		messages = append(messages, resp.ToParam())

		var toolResults []anthropic.ContentBlockParamUnion
		for _, tc := range pending {
			result.ToolsUsed = append(result.ToolsUsed, tc.Name)
			out, execErr := executeTool(ctx, tc, toolSet)
			if execErr != nil {
				zerolog.Ctx(ctx).Warn().Err(execErr).Str("tool", tc.Name).Msg("tool execution error")
				out = fmt.Sprintf("error: %v", execErr)
			}
			toolResults = append(toolResults, anthropic.NewToolResultBlock(tc.ID, out, execErr != nil))
		}
		messages = append(messages, anthropic.NewUserMessage(toolResults...))
	}

	// iteration cap reached. The history carries tool_use blocks, so the API
	// still requires the tool definitions; the nudge asks for plain text.
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(finalAnswerNudge)))
	final := a.params(systemPrompt, messages)
	final.Tools = anthropic.F(toolParams)
	finalResp, err := a.client.Messages.New(ctx, final)
	if err != nil {
		return result, fmt.Errorf("final answer call failed: %w", err)
	}
	for _, block := range finalResp.Content {
		if b, ok := block.AsUnion().(anthropic.TextBlock); ok {
			result.Answer += b.Text
		}
	}
	return result, nil
}

func (a *AnthropicRunner) params(systemPrompt string, messages []anthropic.MessageParam) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.F(anthropic.Model(a.model)),
		MaxTokens: anthropic.F(int64(a.maxTokens)),
		Messages:  anthropic.F(messages),
	}
	if systemPrompt != "" {
		params.System = anthropic.F([]anthropic.TextBlockParam{
			anthropic.NewTextBlock(systemPrompt),
		})
	}
	return params
}
