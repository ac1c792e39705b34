// internal/llm/provider.go
package llm

import "context"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
	ToolCallID string     `json:"toolCallId,omitempty"`
	Name       string     `json:"name,omitempty"`
}

func System(text string) Message { return Message{Role: RoleSystem, Content: text} }

func User(text string) Message { return Message{Role: RoleUser, Content: text} }

func Assistant(text string) Message { return Message{Role: RoleAssistant, Content: text} }

// AssistantToolCalls echoes a tool-requesting reply back into a transcript.
func AssistantToolCalls(text string, calls []ToolCall) Message {
	return Message{Role: RoleAssistant, Content: text, ToolCalls: calls}
}

// ToolResult answers the call with the given id.
func ToolResult(callID, name, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID, Name: name}
}

type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// OutputSchema asks the backend for JSON matching Schema.
type OutputSchema struct {
	Name   string                 `json:"name"`
	Schema map[string]interface{} `json:"schema"`
	Strict bool                   `json:"strict"`
}

type Request struct {
	Messages []Message
	Profile  Profile
	Tools    []Tool
	Schema   *OutputSchema
	JSONMode bool
}

type Response struct {
	Text         string     `json:"text"`
	ToolCalls    []ToolCall `json:"toolCalls,omitempty"`
	FinishReason string     `json:"finishReason"`
	Model        string     `json:"model"`
}

func (r *Response) WantsTools() bool {
	return r != nil && len(r.ToolCalls) > 0
}

// Provider is a single-shot chat completion backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// WebSearchTool is the one tool research agents and chat sessions expose.
var WebSearchTool = Tool{
	Name:        "web_search",
	Description: "Search the web for current cloud pricing, documentation, best practices, and cost optimization techniques. Use this to find real, up-to-date information.",
	Parameters: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "The search query. Be specific: include the cloud provider, the service name and what you are looking for (pricing, best practices, optimization).",
			},
		},
		"required": []interface{}{"query"},
	},
}
