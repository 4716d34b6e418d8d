package model

import "time"

// ChatRole identifies the author of a chat message.
type ChatRole string

// Chat role constants. "model" matches the wire format of the assistant APIs.
const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

// ChatMessage is one turn in an assistant conversation.
type ChatMessage struct {
	Timestamp time.Time `json:"timestamp"`
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
}
