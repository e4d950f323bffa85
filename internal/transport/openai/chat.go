package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/athenaeum-labs/minerva/internal/domain"
	"github.com/athenaeum-labs/minerva/internal/metrics"
)

// ChatClient is the chat-completion backend with tool schemas bound per call.
type ChatClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// ChatConfig holds the chat backend settings.
type ChatConfig struct {
	BaseURL    string
	GatewayKey string
	Model      string
	Timeout    time.Duration
	Logger     *zap.Logger
}

// NewChatClient creates a chat-completion client for the gateway.
func NewChatClient(cfg *ChatConfig) *ChatClient {
	return &ChatClient{
		client: newGatewayClient(cfg.BaseURL, cfg.GatewayKey, cfg.Timeout),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// Complete sends the conversation to the model with the given tools bound as
// available actions. The returned assistant message either carries final
// content or one or more tool calls.
func (c *ChatClient) Complete(
	ctx context.Context, messages []domain.Message, tools []domain.Tool,
) (domain.Message, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toWireMessages(messages),
		Tools:    toWireTools(tools),
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return domain.Message{}, parseAPIError(err, domain.ErrChatBackend)
	}
	if len(resp.Choices) == 0 {
		metrics.ChatRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return domain.Message{}, fmt.Errorf("empty chat response: %w", domain.ErrChatBackend)
	}

	metrics.ChatRequestsTotal.WithLabelValues(c.model, "success").Inc()

	return fromWireMessage(resp.Choices[0].Message), nil
}

func toWireMessages(messages []domain.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		wire := openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
		if m.Role == domain.RoleTool {
			wire.ToolCallID = m.ToolCallID
			wire.Name = m.ToolName
		}
		for _, tc := range m.ToolCalls {
			wire.ToolCalls = append(wire.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out[i] = wire
	}
	return out
}

func toWireTools(tools []domain.Tool) []openai.Tool {
	out := make([]openai.Tool, len(tools))
	for i, t := range tools {
		out[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Schema(),
			},
		}
	}
	return out
}

func fromWireMessage(m openai.ChatCompletionMessage) domain.Message {
	msg := domain.Message{
		Role:    domain.RoleAssistant,
		Content: m.Content,
	}
	for _, tc := range m.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, domain.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return msg
}
