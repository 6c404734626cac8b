package core

import (
	"context"
	"fmt"

	"ordermind/ordermind/agents/actions"
	"ordermind/ordermind/agents/configs"
	"ordermind/ordermind/services/llm"
	"ordermind/ordermind/utils/logging"

	"go.uber.org/zap"
)

const DefaultTemp = 0.1

// Model is what the agent needs from the language model.
type Model interface {
	CallTool(ctx context.Context, prompt, system string, tools []llm.ToolDefinition, temperature float64) (llm.ToolCall, error)
	Complete(ctx context.Context, prompt, system string) (string, error)
}

// Tools executes a tool the model picked.
type Tools interface {
	Definitions() []llm.ToolDefinition
	ExecuteAction(ctx context.Context, name, arguments string) (string, error)
}

// BaseAgent answers a query in two phases: the model picks a tool, the tool
// runs, then a second completion phrases the answer from the tool's output.
type BaseAgent struct {
	Name   string
	LLM    Model
	Config *configs.AgentConfig
	tools  Tools
}

func NewBaseAgent(cfg *configs.AgentConfig, model Model, tools Tools) *BaseAgent {
	temp := cfg.ToolTemperature
	if temp == 0 {
		temp = DefaultTemp
	}
	c := *cfg
	c.ToolTemperature = temp
	return &BaseAgent{
		Name:   cfg.AgentName,
		LLM:    model,
		Config: &c,
		tools:  tools,
	}
}

// ProcessQuery returns the final answer for query.
func (a *BaseAgent) ProcessQuery(ctx context.Context, query string) (string, error) {
	defer logging.LogDuration(ctx, "agent_process_query")()

	call, err := a.LLM.CallTool(ctx, query, a.Config.ToolSelection, a.tools.Definitions(), a.Config.ToolTemperature)
	if err != nil {
		return "", fmt.Errorf("select tool: %w", err)
	}

	result, err := a.tools.ExecuteAction(ctx, call.Name, call.Arguments)
	if err != nil {
		return "", fmt.Errorf("run tool %s: %w", call.Name, err)
	}
	logging.AppLogger.Info("tool result",
		zap.String("agent", a.Name),
		zap.String("tool", call.Name),
		zap.Int("result_len", len(result)),
	)

	answer, err := a.LLM.Complete(ctx, buildResponsePrompt(result, query), a.Config.ToolAnswer)
	if err != nil {
		return "", fmt.Errorf("compose answer: %w", err)
	}
	return answer, nil
}

func buildResponsePrompt(toolResponse, query string) string {
	return fmt.Sprintf("Tool's response: %s \n User's query: %s", toolResponse, query)
}

var _ Tools = (*actions.DataActions)(nil)
