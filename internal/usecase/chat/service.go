// Package chat runs the conversational turn: a bounded loop of model calls
// and tool executions until the model produces a final answer.
package chat

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/athenaeum-labs/minerva/internal/domain"
	"github.com/athenaeum-labs/minerva/internal/metrics"
)

// degradedAnswer is returned when the model keeps requesting tools past the
// round limit. The turn ends gracefully instead of spinning.
const degradedAnswer = "I seem to have lost my train of thought among the stacks. " +
	"Could you ask me that again, perhaps a little more simply?"

// Service orchestrates one conversational turn.
type Service struct {
	client       ChatClient
	registry     Registry
	systemPrompt string
	maxRounds    int
	logger       *zap.Logger
}

// New creates the chat service. maxRounds bounds model calls per turn.
func New(client ChatClient, registry Registry, systemPrompt string, maxRounds int, logger *zap.Logger) *Service {
	return &Service{
		client:       client,
		registry:     registry,
		systemPrompt: systemPrompt,
		maxRounds:    maxRounds,
		logger:       logger,
	}
}

// Respond answers message given the prior history. History carries only user
// and assistant messages; the system prompt is prepended fresh each turn so a
// stale or tampered history cannot displace the policy.
func (s *Service) Respond(ctx context.Context, message string, history []domain.Message) (string, error) {
	conversation := make([]domain.Message, 0, len(history)+2)
	conversation = append(conversation, domain.SystemMessage(s.systemPrompt))
	conversation = append(conversation, history...)
	conversation = append(conversation, domain.UserMessage(message))

	tools := s.registry.All()

	for round := 1; round <= s.maxRounds; round++ {
		reply, err := s.client.Complete(ctx, conversation, tools)
		if err != nil {
			return "", fmt.Errorf("chat round %d: %w", round, err)
		}

		if len(reply.ToolCalls) == 0 {
			metrics.ChatRoundsPerTurn.Observe(float64(round))
			return reply.Content, nil
		}

		conversation = append(conversation, reply)
		conversation = append(conversation, s.executeCalls(ctx, reply.ToolCalls)...)
	}

	s.logger.Warn("turn exceeded round limit", zap.Int("max_rounds", s.maxRounds))
	metrics.ChatRoundsPerTurn.Observe(float64(s.maxRounds))
	return degradedAnswer, nil
}

// executeCalls runs the requested tool calls concurrently and returns one
// observation message per call, in request order regardless of completion
// order. Tool problems become observation text; they never fail the turn.
func (s *Service) executeCalls(ctx context.Context, calls []domain.ToolCall) []domain.Message {
	results := make([]domain.Message, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call domain.ToolCall) {
			defer wg.Done()
			results[i] = domain.ToolMessage(call, s.executeCall(ctx, call))
		}(i, call)
	}
	wg.Wait()

	return results
}

func (s *Service) executeCall(ctx context.Context, call domain.ToolCall) string {
	tool, err := s.registry.Lookup(call.Name)
	if err != nil {
		s.logger.Warn("model requested unknown tool", zap.String("tool", call.Name))
		return fmt.Sprintf("Error: no tool named %q is available.", call.Name)
	}

	result, err := tool.Invoke(ctx, call.Arguments)
	if err != nil {
		s.logger.Error("tool invocation failed",
			zap.String("tool", call.Name),
			zap.Error(err),
		)
		return fmt.Sprintf("Error: the %s tool failed: %v", call.Name, err)
	}

	s.logger.Debug("tool invoked", zap.String("tool", call.Name))
	return result
}
