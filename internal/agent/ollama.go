package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/agentdesk/agentdesk/internal/tools"
	ollama "github.com/ollama/ollama/api"
	"github.com/rs/zerolog"
)

// OllamaRunner runs the tool loop against a local Ollama server using its
// native chat tool calling
type OllamaRunner struct {
	client *ollama.Client
	model  string
	opts   RunnerOptions
}

// NewOllamaRunner creates a runner backed by an Ollama server. An empty host
// means http://localhost:11434.
func NewOllamaRunner(host, model string, opts RunnerOptions) (*OllamaRunner, error) {
	if host == "" {
		host = "http://localhost:11434"
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_HOST %q: %w", host, err)
	}

	// local models can be slow; the per-run timeout bounds the total instead
	httpClient := &http.Client{}
	return &OllamaRunner{
		client: ollama.NewClient(u, httpClient),
		model:  model,
		opts:   opts,
	}, nil
}

// TestConnection checks that the Ollama server answers
func (o *OllamaRunner) TestConnection(ctx context.Context) error {
	if err := o.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("ollama heartbeat: %w", err)
	}
	return nil
}

func (o *OllamaRunner) Run(ctx context.Context, systemPrompt, query string, toolSet []tools.Tool) (*RunResult, error) {
	if o.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(o.opts.Timeout)*time.Second)
		defer cancel()
	}

	toolDefs, err := ollamaTools(toolSet)
	if err != nil {
		return nil, err
	}

	var messages []ollama.Message
	if systemPrompt != "" {
		messages = append(messages, ollama.Message{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, ollama.Message{Role: "user", Content: query})

	result := &RunResult{}
	maxIter := o.opts.maxIterations()

	for iter := 0; iter < maxIter; iter++ {
		msg, err := o.chat(ctx, messages, toolDefs)
		if err != nil {
			return result, fmt.Errorf("LLM call failed: %w", err)
		}

		zerolog.Ctx(ctx).Debug().
			Int("iter", iter).
			Str("text_preview", preview(msg.Content, 80)).
			Int("tool_calls", len(msg.ToolCalls)).
			Msg("agent iteration")

		if len(msg.ToolCalls) == 0 {
			result.Answer = msg.Content
			return result, nil
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			tc := ToolCall{Name: call.Function.Name, Input: toolArguments(call.Function.Arguments)}
			result.ToolsUsed = append(result.ToolsUsed, tc.Name)

			out, execErr := executeTool(ctx, tc, toolSet)
			if execErr != nil {
				zerolog.Ctx(ctx).Warn().Err(execErr).Str("tool", tc.Name).Msg("tool execution error")
				out = fmt.Sprintf("error: %v", execErr)
			}
			messages = append(messages, ollama.Message{Role: "tool", Content: out, ToolName: tc.Name})
		}
	}

	messages = append(messages, ollama.Message{Role: "user", Content: finalAnswerNudge})
	msg, err := o.chat(ctx, messages, nil)
	if err != nil {
		return result, fmt.Errorf("final answer call failed: %w", err)
	}
	result.Answer = msg.Content
	return result, nil
}

func (o *OllamaRunner) chat(ctx context.Context, messages []ollama.Message, toolDefs ollama.Tools) (ollama.Message, error) {
	stream := false
	req := &ollama.ChatRequest{
		Model:    o.model,
		Messages: messages,
		Stream:   &stream,
		Tools:    toolDefs,
	}

	var out ollama.Message
	err := o.client.Chat(ctx, req, func(resp ollama.ChatResponse) error {
		out.Role = resp.Message.Role
		out.Content += resp.Message.Content
		out.ToolCalls = append(out.ToolCalls, resp.Message.ToolCalls...)
		return nil
	})
	return out, err
}

// ollamaTools converts tool schemas through their JSON form, which is the
// shape the Ollama API documents
func ollamaTools(toolSet []tools.Tool) (ollama.Tools, error) {
	defs := make([]map[string]interface{}, len(toolSet))
	for i, t := range toolSet {
		defs[i] = map[string]interface{}{
			"type": "function",
			"function": map[string]interface{}{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  t.Schema(),
			},
		}
	}
	raw, err := json.Marshal(defs)
	if err != nil {
		return nil, fmt.Errorf("marshal tools: %w", err)
	}
	var out ollama.Tools
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("convert tools: %w", err)
	}
	return out, nil
}

func toolArguments(args interface{}) map[string]interface{} {
	raw, err := json.Marshal(args)
	if err != nil {
		return map[string]interface{}{}
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return map[string]interface{}{}
	}
	return m
}
