package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/domain/model"
)

type memoryRepository struct {
	mu      sync.RWMutex
	entries map[string]map[model.MemoryID]*model.MemoryRecord // userID -> records
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		entries: make(map[string]map[model.MemoryID]*model.MemoryRecord),
	}
}

func (r *memoryRepository) Create(ctx context.Context, userID string, record *model.MemoryRecord) (*model.MemoryRecord, error) {
	if userID == "" {
		return nil, goerr.New("user ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[userID]; !exists {
		r.entries[userID] = make(map[model.MemoryID]*model.MemoryRecord)
	}

	created := record.Copy()
	if created.ID == "" {
		created.ID = model.NewMemoryID()
	}
	created.UserID = userID
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	r.entries[userID][created.ID] = created
	return created.Copy(), nil
}

func (r *memoryRepository) FindNearest(ctx context.Context, userID string, embedding []float32, limit int) ([]*model.ScoredMemory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.entries[userID]
	candidates := make([]*model.ScoredMemory, 0, len(bucket))
	for _, m := range bucket {
		if len(m.Embedding) == 0 {
			continue
		}
		candidates = append(candidates, &model.ScoredMemory{
			Record:   m.Copy(),
			Distance: model.CosineDistance(embedding, m.Embedding),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Distance != candidates[j].Distance {
			return candidates[i].Distance < candidates[j].Distance
		}
		return candidates[i].Record.ID < candidates[j].Record.ID
	})

	if limit < len(candidates) {
		candidates = candidates[:max(limit, 0)]
	}
	return candidates, nil
}

func (r *memoryRepository) ListByTag(ctx context.Context, userID string, tag string, since time.Time) ([]*model.MemoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.MemoryRecord, 0)
	for _, m := range r.entries[userID] {
		if m.HasTag(tag) && !m.CreatedAt.Before(since) {
			result = append(result, m.Copy())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
