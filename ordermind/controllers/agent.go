package controllers

import (
	"context"
	"errors"
	"strings"

	"ordermind/ordermind/agents/core"
)

var ErrEmptyQuery = errors.New("query is required")

type AgentController struct {
	agent *core.BaseAgent
}

func NewAgentController(agent *core.BaseAgent) *AgentController {
	return &AgentController{agent: agent}
}

func (c *AgentController) Ask(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", ErrEmptyQuery
	}
	return c.agent.ProcessQuery(ctx, query)
}
