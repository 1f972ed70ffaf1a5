package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	lctools "github.com/tmc/langchaingo/tools"
)

// langchainTool exposes a Tool through langchaingo's string-in/string-out contract.
type langchainTool struct {
	tool Tool
}

var _ lctools.Tool = (*langchainTool)(nil)

// AsLangchainTool wraps t so it can be handed to a langchaingo agent. Input is a JSON object,
// output is the JSON encoding of the tool's result.
func AsLangchainTool(t Tool) lctools.Tool {
	return &langchainTool{tool: t}
}

func (l *langchainTool) Name() string        { return l.tool.Name() }
func (l *langchainTool) Description() string { return l.tool.Description() }

func (l *langchainTool) Call(ctx context.Context, input string) (string, error) {
	var args map[string]any
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}
	out, err := l.tool.Execute(ctx, args)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("marshal output: %w", err)
	}
	return string(data), nil
}

// FunctionDefinitions describes every registered tool as a function an LLM may call.
func (r *Registry) FunctionDefinitions() []llms.Tool {
	var llmTools []llms.Tool
	for _, t := range r.All() {
		llmTools = append(llmTools, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return llmTools
}
