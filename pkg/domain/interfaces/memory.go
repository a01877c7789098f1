package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/lumi/pkg/domain/model"
)

// MemoryRepository persists MemoryRecords. Every method is scoped to one user and
// must never read or write another user's records.
type MemoryRepository interface {
	// Create stores a new record. ID and CreatedAt are assigned when empty.
	Create(ctx context.Context, userID string, record *model.MemoryRecord) (*model.MemoryRecord, error)

	// FindNearest returns up to limit records of userID ordered by non-decreasing
	// cosine distance to embedding.
	FindNearest(ctx context.Context, userID string, embedding []float32, limit int) ([]*model.ScoredMemory, error)

	// ListByTag returns records of userID carrying tag and created at or after since,
	// newest first.
	ListByTag(ctx context.Context, userID string, tag string, since time.Time) ([]*model.MemoryRecord, error)
}
