package tools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/athenaeum-labs/minerva/internal/mathexpr"
	"github.com/athenaeum-labs/minerva/internal/metrics"
)

// CalculateTool evaluates arithmetic expressions with the restricted parser.
type CalculateTool struct{}

// NewCalculateTool creates the calculate tool.
func NewCalculateTool() *CalculateTool {
	return &CalculateTool{}
}

func (t *CalculateTool) Name() string { return "calculate" }

func (t *CalculateTool) Description() string {
	return `Perform mathematical calculations. Examples: "2 + 2", "sqrt(16)", "3 ** 2", "sin(pi/2)"`
}

func (t *CalculateTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"expression": {
				"type": "string",
				"description": "The arithmetic expression to evaluate"
			}
		},
		"required": ["expression"]
	}`)
}

type calculateArgs struct {
	Expression string `json:"expression"`
}

// Invoke evaluates the expression. Every evaluation problem is reported as an
// "Error: ..." result string so the model can relay it; Invoke itself never
// fails.
func (t *CalculateTool) Invoke(_ context.Context, args string) (string, error) {
	var parsed calculateArgs
	if err := json.Unmarshal([]byte(args), &parsed); err != nil {
		metrics.ToolInvocationsTotal.WithLabelValues(t.Name(), "error").Inc()
		return "Error: invalid arguments, expected {\"expression\": \"...\"}", nil
	}

	result, err := mathexpr.Evaluate(parsed.Expression)
	if err != nil {
		metrics.ToolInvocationsTotal.WithLabelValues(t.Name(), "error").Inc()
		var notAllowed *mathexpr.NotAllowedError
		switch {
		case errors.As(err, &notAllowed):
			return "Error: '" + notAllowed.Word + "' not allowed", nil
		case errors.Is(err, mathexpr.ErrDivisionByZero):
			return "Error: Division by zero", nil
		default:
			return "Error: " + err.Error(), nil
		}
	}

	metrics.ToolInvocationsTotal.WithLabelValues(t.Name(), "success").Inc()
	return result, nil
}
