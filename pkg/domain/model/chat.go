package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/lumi/pkg/domain/types"
)

// ChatMessageID is a UUID-based identifier for ChatMessage
type ChatMessageID string

// NewChatMessageID generates a new UUID v4 ChatMessageID
func NewChatMessageID() ChatMessageID {
	return ChatMessageID(uuid.New().String())
}

// ChatMessage is one entry of a user's append-only chat log
type ChatMessage struct {
	ID        ChatMessageID
	UserID    string
	Role      types.ChatRole
	Content   string
	Timestamp time.Time
}

// Turn is a role/content pair of a conversation passed to generation
type Turn struct {
	Role    types.ChatRole
	Content string
}

// Turn converts the message into a conversation turn.
func (m *ChatMessage) Turn() Turn {
	return Turn{Role: m.Role, Content: m.Content}
}
