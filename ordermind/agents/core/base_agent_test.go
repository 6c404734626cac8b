package core

import (
	"context"
	"errors"
	"testing"

	"ordermind/ordermind/agents/actions"
	"ordermind/ordermind/agents/configs"
	"ordermind/ordermind/services/llm"
	"ordermind/ordermind/sources/psql/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	call        llm.ToolCall
	callErr     error
	answer      string
	toolPrompt  string
	toolTemp    float64
	toolCount   int
	answerInput string
	answerSys   string
}

func (m *fakeModel) CallTool(_ context.Context, prompt, _ string, tools []llm.ToolDefinition, temperature float64) (llm.ToolCall, error) {
	m.toolPrompt = prompt
	m.toolTemp = temperature
	m.toolCount = len(tools)
	return m.call, m.callErr
}

func (m *fakeModel) Complete(_ context.Context, prompt, system string) (string, error) {
	m.answerInput = prompt
	m.answerSys = system
	return m.answer, nil
}

type orders map[int]models.Order

func (o orders) GetOrderByID(_ context.Context, id int) (*models.Order, error) {
	if v, ok := o[id]; ok {
		return &v, nil
	}
	return nil, nil
}

func newAgent(t *testing.T, m *fakeModel) *BaseAgent {
	t.Helper()
	cfg, err := configs.LoadConfig("")
	require.NoError(t, err)
	return NewBaseAgent(cfg, m, actions.NewDataActions(orders{2: {ID: 2, ProductName: "Lamp", Status: "shipped"}}))
}

func TestProcessQueryRunsToolThenAnswers(t *testing.T) {
	m := &fakeModel{
		call:   llm.ToolCall{Name: "get_order", Arguments: `{"order_id":"2"}`},
		answer: "Your lamp has shipped.",
	}
	a := newAgent(t, m)

	out, err := a.ProcessQuery(context.Background(), "Can you provide the status of my order 2?")
	require.NoError(t, err)
	assert.Equal(t, "Your lamp has shipped.", out)

	assert.Equal(t, "Can you provide the status of my order 2?", m.toolPrompt)
	assert.InDelta(t, 0.1, m.toolTemp, 1e-9)
	assert.Equal(t, 3, m.toolCount)
	assert.Contains(t, m.answerInput, `"product_name":"Lamp"`)
	assert.Contains(t, m.answerInput, "User's query: Can you provide the status of my order 2?")
	assert.Equal(t, a.Config.ToolAnswer, m.answerSys)
}

func TestProcessQueryOrderNotFound(t *testing.T) {
	m := &fakeModel{call: llm.ToolCall{Name: "get_order", Arguments: `{"order_id":"7"}`}, answer: "sorry"}
	_, err := newAgent(t, m).ProcessQuery(context.Background(), "order 7?")
	require.NoError(t, err)
	assert.Contains(t, m.answerInput, actions.OrderNotFound)
}

func TestProcessQueryUnknownTool(t *testing.T) {
	m := &fakeModel{call: llm.ToolCall{Name: "launch_rocket"}}
	_, err := newAgent(t, m).ProcessQuery(context.Background(), "go")
	assert.ErrorIs(t, err, actions.ErrUnknownAction)
}

func TestProcessQueryToolSelectionError(t *testing.T) {
	m := &fakeModel{callErr: llm.ErrNoToolCall}
	_, err := newAgent(t, m).ProcessQuery(context.Background(), "hi")
	assert.True(t, errors.Is(err, llm.ErrNoToolCall))
	assert.Empty(t, m.answerInput)
}
