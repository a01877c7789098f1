package usecase

import (
	"context"
	"log/slog"
	"maps"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/domain/interfaces"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"github.com/secmon-lab/lumi/pkg/domain/types"
	"github.com/secmon-lab/lumi/pkg/utils/logging"
	"github.com/secmon-lab/lumi/pkg/utils/metrics"
)

// minCandidates is the lower bound of the over-fetched neighbor set in Query
const minCandidates = 10

// MemoryStore is the per-user, tag-filterable similarity memory
type MemoryStore struct {
	repo     interfaces.MemoryRepository
	embedder interfaces.Embedder
	metrics  *metrics.Recorder
	now      func() time.Time
}

// NewMemoryStore creates a MemoryStore over repo using embedder for every text
func NewMemoryStore(repo interfaces.MemoryRepository, embedder interfaces.Embedder, recorder *metrics.Recorder) *MemoryStore {
	return &MemoryStore{
		repo:     repo,
		embedder: embedder,
		metrics:  recorder,
		now:      time.Now,
	}
}

// Save embeds text and stores it as a new record owned by userID. The metadata is
// copied and stamped with user_id and created_at.
func (s *MemoryStore) Save(ctx context.Context, userID, text string, tags []string, metadata map[string]any) (model.MemoryID, error) {
	if userID == "" {
		return "", goerr.Wrap(ErrInvalidUserID, "failed to save memory")
	}

	now := s.now().UTC()
	meta := make(map[string]any, len(metadata)+2)
	maps.Copy(meta, metadata)
	meta[types.MetaUserID] = userID
	meta[types.MetaCreatedAt] = now.Format(time.RFC3339Nano)

	record := &model.MemoryRecord{
		ID:        model.NewMemoryID(),
		UserID:    userID,
		Text:      text,
		Embedding: s.embedder.Embed(ctx, []string{text})[0],
		Tags:      model.NewTagSet(tags...),
		Metadata:  meta,
		CreatedAt: now,
	}

	created, err := s.repo.Create(ctx, userID, record)
	if err != nil {
		return "", goerr.Wrap(err, "failed to save memory", goerr.V(UserIDKey, userID), goerr.V("tags", record.Tags))
	}
	return created.ID, nil
}

// Query returns at most k records of userID nearest to queryText. With tags, the
// over-fetched candidates are narrowed to records sharing any tag; when none do,
// the unfiltered candidates are used. Failures yield an empty result.
func (s *MemoryStore) Query(ctx context.Context, userID, queryText string, k int, tags ...string) []*model.ScoredMemory {
	if userID == "" || k <= 0 {
		return nil
	}

	vector := s.embedder.Embed(ctx, []string{queryText})[0]
	candidates, err := s.repo.FindNearest(ctx, userID, vector, max(minCandidates, 3*k))
	if err != nil {
		s.metrics.MemoryQueryFailure()
		logging.From(ctx).Warn("memory query failed",
			slog.Any("error", err),
			slog.String("user_id", userID),
		)
		return nil
	}

	owned := make([]*model.ScoredMemory, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || c.Record == nil || c.Record.UserID != userID {
			continue
		}
		owned = append(owned, c)
	}

	results := owned
	if len(tags) > 0 {
		var filtered []*model.ScoredMemory
		for _, c := range owned {
			if c.Record.HasAnyTag(tags...) {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) > 0 {
			results = filtered
		}
	}

	if len(results) > k {
		results = results[:k]
	}
	return results
}

// HasMarkerSince reports whether userID has a system record tagged tag created at
// or after since.
func (s *MemoryStore) HasMarkerSince(ctx context.Context, userID, tag string, since time.Time) (bool, error) {
	records, err := s.repo.ListByTag(ctx, userID, tag, since)
	if err != nil {
		return false, goerr.Wrap(err, "failed to look up marker", goerr.V(UserIDKey, userID), goerr.V("tag", tag))
	}
	for _, r := range records {
		if r.HasTag(types.TagSystem) {
			return true, nil
		}
	}
	return false, nil
}
