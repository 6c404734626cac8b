// Package actions holds the tools the agent can call.
package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ordermind/ordermind/services/llm"
	"ordermind/ordermind/sources/psql/models"
	"ordermind/ordermind/utils/logging"

	"go.uber.org/zap"
)

var ErrUnknownAction = errors.New("unknown action")

// OrderNotFound is returned to the model when get_order finds nothing.
const OrderNotFound = "Order not found."

// OrderReader is the slice of the order DAO the actions need.
type OrderReader interface {
	GetOrderByID(ctx context.Context, id int) (*models.Order, error)
}

type action struct {
	def llm.ToolDefinition
	run func(ctx context.Context, args json.RawMessage) (string, error)
}

// DataActions is the registry of callable tools, kept in registration order.
type DataActions struct {
	fnMaps map[string]action
	names  []string
	orders OrderReader
}

type PrintHelloWorldParams struct {
	Name string `json:"name"`
}

type GetWeatherParams struct {
	Country string `json:"country"`
}

type GetOrderParams struct {
	OrderID string `json:"order_id"`
}

// NewDataActions registers print_hello_world, get_weather and get_order.
func NewDataActions(orders OrderReader) *DataActions {
	a := &DataActions{
		fnMaps: make(map[string]action),
		orders: orders,
	}
	a.register(llm.ToolDefinition{
		Name:        "print_hello_world",
		Description: "Prints a greeting message with the provided name.",
		Parameters:  objectSchema("name", "The name to include in the greeting message."),
	}, decoded(a.printHelloWorld))
	a.register(llm.ToolDefinition{
		Name:        "get_weather",
		Description: "Retrieves the weather information for the provided country.",
		Parameters:  objectSchema("country", "The country for which to retrieve the weather information."),
	}, decoded(a.getWeather))
	a.register(llm.ToolDefinition{
		Name:        "get_order",
		Description: "Retrieves the details of an order by its ID.",
		Parameters:  objectSchema("order_id", "The ID of the order to retrieve."),
	}, decoded(a.getOrder))
	return a
}

func (a *DataActions) register(def llm.ToolDefinition, run func(context.Context, json.RawMessage) (string, error)) {
	a.fnMaps[def.Name] = action{def: def, run: run}
	a.names = append(a.names, def.Name)
}

// Definitions lists every registered tool for the model.
func (a *DataActions) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(a.names))
	for _, name := range a.names {
		defs = append(defs, a.fnMaps[name].def)
	}
	return defs
}

// ExecuteAction runs the named tool with the model's raw JSON arguments.
func (a *DataActions) ExecuteAction(ctx context.Context, name, arguments string) (string, error) {
	act, ok := a.fnMaps[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}
	if strings.TrimSpace(arguments) == "" {
		arguments = "{}"
	}
	out, err := act.run(ctx, json.RawMessage(arguments))
	if err != nil {
		logging.ErrorLogger.Error("action failed", zap.String("action", name), zap.Error(err))
		return "", err
	}
	logging.AppLogger.Info("action executed", zap.String("action", name))
	return out, nil
}

func decoded[P any](fn func(context.Context, P) (string, error)) func(context.Context, json.RawMessage) (string, error) {
	return func(ctx context.Context, raw json.RawMessage) (string, error) {
		var params P
		if err := json.Unmarshal(raw, &params); err != nil {
			return "", fmt.Errorf("decode arguments: %w", err)
		}
		return fn(ctx, params)
	}
}

func objectSchema(field, description string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			field: map[string]any{"type": "string", "description": description},
		},
		"required": []string{field},
	}
}

func (a *DataActions) printHelloWorld(_ context.Context, params PrintHelloWorldParams) (string, error) {
	return "Print a greeting message for the name: " + params.Name, nil
}

func (a *DataActions) getWeather(_ context.Context, params GetWeatherParams) (string, error) {
	switch params.Country {
	case "India":
		return "accha", nil
	case "Indonesia":
		return "anjayyyy", nil
	default:
		return "Unsupported country. Only Indonesia and India are supported.", nil
	}
}

func (a *DataActions) getOrder(ctx context.Context, params GetOrderParams) (string, error) {
	id, err := strconv.Atoi(strings.TrimSpace(params.OrderID))
	if err != nil {
		return OrderNotFound, nil
	}
	order, err := a.orders.GetOrderByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("get order %d: %w", id, err)
	}
	if order == nil {
		return OrderNotFound, nil
	}
	data, err := json.Marshal([]models.Order{*order})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
