// Package tools implements the closed set of actions the assistant can take:
// searching the story collection, fetching a joke, and evaluating arithmetic.
// The set is fixed at startup; there is no dynamic tool discovery.
package tools

import (
	"fmt"

	"github.com/athenaeum-labs/minerva/internal/domain"
)

// Registry holds the registered tools, preserving registration order for the
// schema list sent to the model.
type Registry struct {
	ordered []domain.Tool
	byName  map[string]domain.Tool
}

// NewRegistry builds a registry from the given tools. Duplicate names panic:
// the tool set is assembled once in the composition root and a collision is
// a programming error.
func NewRegistry(ts ...domain.Tool) *Registry {
	r := &Registry{byName: make(map[string]domain.Tool, len(ts))}
	for _, t := range ts {
		if _, exists := r.byName[t.Name()]; exists {
			panic(fmt.Sprintf("tools: duplicate tool name %q", t.Name()))
		}
		r.ordered = append(r.ordered, t)
		r.byName[t.Name()] = t
	}
	return r
}

// All returns the tools in registration order.
func (r *Registry) All() []domain.Tool {
	return r.ordered
}

// Lookup returns the tool with the given name.
func (r *Registry) Lookup(name string) (domain.Tool, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTool, name)
	}
	return t, nil
}
