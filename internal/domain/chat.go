package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant || r == RoleSystem
}

// ChatMessage is one entry of a session transcript. IsSystem marks messages
// the application produced on the assistant's behalf (welcome, apology,
// quote confirmations) rather than model output.
type ChatMessage struct {
	ID         uuid.UUID        `json:"id"`
	SessionID  string           `json:"session_id"`
	CategoryID string           `json:"category_id"`
	Role       Role             `json:"type"`
	Content    string           `json:"content"`
	IsSystem   bool             `json:"is_system,omitempty"`
	Products   []Recommendation `json:"products,omitempty"`
	CreatedAt  time.Time        `json:"timestamp"`
}
