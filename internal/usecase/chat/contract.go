package chat

import (
	"context"

	"github.com/athenaeum-labs/minerva/internal/domain"
)

// ChatClient sends a conversation to the model with tool schemas bound.
type ChatClient interface {
	Complete(ctx context.Context, messages []domain.Message, tools []domain.Tool) (domain.Message, error)
}

// Registry is the closed tool set available to a turn.
type Registry interface {
	All() []domain.Tool
	Lookup(name string) (domain.Tool, error)
}
