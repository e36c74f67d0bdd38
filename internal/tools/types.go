// Package tools defines the Tool type, the registry the agents draw their
// tool sets from, and the concrete tools the agents can call.
package tools

import (
	"context"
	"fmt"
	"strings"
)

// InputField is the single argument every tool receives from the model
const InputField = "input"

// Tool is a named capability the model can invoke. Invoke maps free text to
// free text and may block on network or filesystem I/O.
type Tool struct {
	Name        string
	Description string
	Invoke      func(ctx context.Context, input string) (string, error)
}

// Schema returns the JSON schema advertised to the model backend
func (t Tool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			InputField: map[string]interface{}{
				"type":        "string",
				"description": "Free-text input for " + t.Name,
			},
		},
		"required": []string{InputField},
	}
}

// Call runs the tool with the arguments decoded from a model tool call
func (t Tool) Call(ctx context.Context, args map[string]interface{}) (string, error) {
	input, _ := args[InputField].(string)
	if input == "" {
		// small local models often say "query" despite the schema
		input, _ = args["query"].(string)
	}
	if input == "" && len(args) == 1 {
		for _, v := range args {
			input, _ = v.(string)
		}
	}
	if strings.TrimSpace(input) == "" {
		return "", fmt.Errorf("%s: %s is required", t.Name, InputField)
	}
	return t.Invoke(ctx, input)
}

// Describe renders "name: description" lines for prompts
func Describe(toolSet []Tool) string {
	lines := make([]string, len(toolSet))
	for i, t := range toolSet {
		lines[i] = t.Name + ": " + t.Description
	}
	return strings.Join(lines, "\n")
}

// NameList renders a comma separated list of tool names
func NameList(toolSet []Tool) string {
	names := make([]string, len(toolSet))
	for i, t := range toolSet {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}
