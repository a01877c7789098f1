package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/domain/model"
)

type profileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*model.Profile
}

func newProfileRepository() *profileRepository {
	return &profileRepository{
		profiles: make(map[string]*model.Profile),
	}
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*model.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.profiles[userID]
	if !exists {
		return nil, nil
	}
	return p.Copy(), nil
}

func (r *profileRepository) Put(ctx context.Context, profile *model.Profile) error {
	if profile.UserID == "" {
		return goerr.New("user ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := profile.Copy()
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = now
	}
	r.profiles[profile.UserID] = stored
	return nil
}

func (r *profileRepository) AppendMemory(ctx context.Context, userID string, memory model.ProfileMemory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.profiles[userID]
	if !exists {
		return goerr.Wrap(ErrNotFound, "profile not found", goerr.V("user_id", userID))
	}

	memory.Tags = slices.Clone(memory.Tags)
	if memory.CreatedAt.IsZero() {
		memory.CreatedAt = time.Now().UTC()
	}
	p.Memories = append(p.Memories, memory)
	p.UpdatedAt = time.Now().UTC()
	return nil
}
