package interfaces

import (
	"context"

	"github.com/secmon-lab/lumi/pkg/domain/model"
)

// ChatRepository is the append-only chat log
type ChatRepository interface {
	// Create appends a message. ID and Timestamp are assigned when empty.
	Create(ctx context.Context, msg *model.ChatMessage) (*model.ChatMessage, error)

	// ListRecent returns up to limit latest messages of userID, newest first
	ListRecent(ctx context.Context, userID string, limit int) ([]*model.ChatMessage, error)
}
