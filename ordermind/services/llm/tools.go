package llm

import (
	"context"
	"errors"
	"fmt"

	"ordermind/ordermind/utils/logging"

	"github.com/openai/openai-go"
	"go.uber.org/zap"
)

var ErrNoToolCall = errors.New("model did not call a tool")

// ToolDefinition describes a function the model may call. Parameters is a
// JSON schema object.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is the function the model picked and its raw JSON arguments.
type ToolCall struct {
	Name      string
	Arguments string
}

// CallTool forces the model to pick exactly one of tools for prompt.
func (c *Client) CallTool(ctx context.Context, prompt, system string, tools []ToolDefinition, temperature float64) (ToolCall, error) {
	defer logging.LogDuration(ctx, "llm_call_tool")()

	params := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, t := range tools {
		params = append(params, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  openai.FunctionParameters(t.Parameters),
			},
		})
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages(prompt, system),
		Temperature: openai.Float(temperature),
		Tools:       params,
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String("required"),
		},
	})
	if err != nil {
		return ToolCall{}, fmt.Errorf("tool completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return ToolCall{}, ErrNoChoices
	}
	calls := resp.Choices[0].Message.ToolCalls
	if len(calls) == 0 {
		return ToolCall{}, ErrNoToolCall
	}
	call := ToolCall{Name: calls[0].Function.Name, Arguments: calls[0].Function.Arguments}
	logging.AppLogger.Info("model picked tool", zap.String("tool", call.Name), zap.String("arguments", call.Arguments))
	return call, nil
}
