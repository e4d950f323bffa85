package domain

import (
	"context"
	"encoding/json"
)

// Tool is a named capability the model may request be executed on its
// behalf. Invoke receives the raw JSON argument object from the model's
// tool call and returns a plain-text observation. Tools recover their own
// input errors into descriptive result strings; a returned error means the
// tool itself could not run at all.
type Tool interface {
	Name() string
	Description() string
	Schema() json.RawMessage
	Invoke(ctx context.Context, args string) (string, error)
}
