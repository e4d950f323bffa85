package domain

import "errors"

var (
	// ErrNotIndexed signals that the corpus store has never been built.
	// Distinct from a successful search with no hits.
	ErrNotIndexed = errors.New("corpus not indexed")
	// ErrEmbeddingProviderError signals an embedding backend failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrChatBackend signals a chat-completion backend failure. Fatal to the
	// current turn; never masked as a normal reply.
	ErrChatBackend = errors.New("chat backend error")
	// ErrUnknownTool signals a tool call naming no registered capability.
	ErrUnknownTool = errors.New("unknown tool")
)
