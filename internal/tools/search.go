package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/athenaeum-labs/minerva/internal/domain"
	"github.com/athenaeum-labs/minerva/internal/metrics"
)

// notIndexedMessage is shown to the model when the collection is empty, so
// it can tell the visitor what is wrong instead of hallucinating passages.
const notIndexedMessage = "Database not set up. Please run: minerva index"

// noHitsMessage is returned when the query matched nothing.
const noHitsMessage = "No relevant passages found."

// Retriever finds the passages most similar to a query.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]domain.Hit, error)
}

// SearchTool retrieves passages from the story collection.
type SearchTool struct {
	retriever Retriever
	topK      int
}

// NewSearchTool creates the search_stories tool returning up to topK passages.
func NewSearchTool(retriever Retriever, topK int) *SearchTool {
	return &SearchTool{retriever: retriever, topK: topK}
}

func (t *SearchTool) Name() string { return "search_stories" }

func (t *SearchTool) Description() string {
	return "Search the Father Brown mystery stories by G.K. Chesterton. " +
		"Use this to find passages or answer questions about the stories."
}

func (t *SearchTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "What to look for in the stories"
			}
		},
		"required": ["query"]
	}`)
}

type searchArgs struct {
	Query string `json:"query"`
}

// Invoke runs the retrieval. Input problems and an unindexed collection are
// reported as result text; only infrastructure failures surface as errors.
func (t *SearchTool) Invoke(ctx context.Context, args string) (string, error) {
	var parsed searchArgs
	if err := json.Unmarshal([]byte(args), &parsed); err != nil {
		metrics.ToolInvocationsTotal.WithLabelValues(t.Name(), "error").Inc()
		return "Error: invalid arguments, expected {\"query\": \"...\"}", nil
	}

	hits, err := t.retriever.Search(ctx, parsed.Query, t.topK)
	if err != nil {
		if errors.Is(err, domain.ErrNotIndexed) {
			metrics.ToolInvocationsTotal.WithLabelValues(t.Name(), "error").Inc()
			return notIndexedMessage, nil
		}
		metrics.ToolInvocationsTotal.WithLabelValues(t.Name(), "error").Inc()
		return "", fmt.Errorf("search stories: %w", err)
	}

	if len(hits) == 0 {
		metrics.ToolInvocationsTotal.WithLabelValues(t.Name(), "success").Inc()
		return noHitsMessage, nil
	}

	passages := make([]string, len(hits))
	for i, hit := range hits {
		passages[i] = fmt.Sprintf("From '%s':\n%s", hit.Story, hit.Text)
	}

	metrics.ToolInvocationsTotal.WithLabelValues(t.Name(), "success").Inc()
	return strings.Join(passages, "\n\n---\n\n"), nil
}
