// internal/models/chat.go
package models

import "github.com/google/uuid"

type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

// ChatTurn is one visible entry of a conversation transcript.
type ChatTurn struct {
	ID   string   `json:"id"`
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

func NewChatTurn(role ChatRole, text string) ChatTurn {
	return ChatTurn{ID: uuid.NewString(), Role: role, Text: text}
}
