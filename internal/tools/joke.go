package tools

import (
	"context"
	"encoding/json"

	"github.com/athenaeum-labs/minerva/internal/metrics"
)

// JokeSource produces a joke string. It never fails; providers degrade to a
// fallback joke internally.
type JokeSource interface {
	RandomJoke(ctx context.Context) string
}

// JokeTool fetches a random joke.
type JokeTool struct {
	source JokeSource
}

// NewJokeTool creates the get_joke tool.
func NewJokeTool(source JokeSource) *JokeTool {
	return &JokeTool{source: source}
}

func (t *JokeTool) Name() string { return "get_joke" }

func (t *JokeTool) Description() string {
	return "Fetch a random clean joke. Use this whenever the visitor asks for a joke."
}

func (t *JokeTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {},
		"required": []
	}`)
}

// Invoke ignores its arguments; the joke takes no parameters.
func (t *JokeTool) Invoke(ctx context.Context, _ string) (string, error) {
	joke := t.source.RandomJoke(ctx)
	metrics.ToolInvocationsTotal.WithLabelValues(t.Name(), "success").Inc()
	return joke, nil
}
