package domain

// Role tags a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry in a conversation transcript.
type Message struct {
	Role    Role
	Content string

	// ToolCalls is set on assistant messages that request tool execution.
	ToolCalls []ToolCall

	// ToolCallID and ToolName are set on tool-observation messages and
	// reference the call they answer.
	ToolCallID string
	ToolName   string
}

// ToolCall is a model request to execute one registered capability.
// Arguments is the raw JSON argument object as produced by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// UserMessage builds a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds a plain assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// SystemMessage builds a system-instruction message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// ToolMessage builds a tool-observation message answering call.
func ToolMessage(call ToolCall, result string) Message {
	return Message{
		Role:       RoleTool,
		Content:    result,
		ToolCallID: call.ID,
		ToolName:   call.Name,
	}
}
