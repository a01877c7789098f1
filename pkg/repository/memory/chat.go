package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/domain/model"
)

type chatRepository struct {
	mu       sync.RWMutex
	messages map[string][]*model.ChatMessage // userID -> append order
}

func newChatRepository() *chatRepository {
	return &chatRepository{
		messages: make(map[string][]*model.ChatMessage),
	}
}

func (r *chatRepository) Create(ctx context.Context, msg *model.ChatMessage) (*model.ChatMessage, error) {
	if msg.UserID == "" {
		return nil, goerr.New("user ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	created := *msg
	if created.ID == "" {
		created.ID = model.NewChatMessageID()
	}
	if created.Timestamp.IsZero() {
		created.Timestamp = time.Now().UTC()
	}

	r.messages[created.UserID] = append(r.messages[created.UserID], &created)
	out := created
	return &out, nil
}

func (r *chatRepository) ListRecent(ctx context.Context, userID string, limit int) ([]*model.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	log := r.messages[userID]
	result := make([]*model.ChatMessage, 0, min(limit, len(log)))
	for i := len(log) - 1; i >= 0 && len(result) < limit; i-- {
		m := *log[i]
		result = append(result, &m)
	}
	return result, nil
}
