package chromem

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	chromem "github.com/philippgille/chromem-go"
	"github.com/secmon-lab/lumi/pkg/domain/interfaces"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"github.com/secmon-lab/lumi/pkg/utils/logging"
)

const (
	metaUserID    = "user_id"
	metaCreatedAt = "created_at"
	metaTags      = "tags"
	metaPayload   = "metadata"
	tagKeyPrefix  = "tag:"
)

// Store is an embedded vector store implementing interfaces.MemoryRepository.
// Every user gets a dedicated collection.
type Store struct {
	db          *chromem.DB
	mu          sync.RWMutex
	collections map[string]*chromem.Collection
}

var _ interfaces.MemoryRepository = &Store{}

// New creates an in-process store that is lost on exit.
func New() *Store {
	return &Store{
		db:          chromem.NewDB(),
		collections: make(map[string]*chromem.Collection),
	}
}

// NewPersistent creates a store persisted as gzip-compressed files under path.
func NewPersistent(path string) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, true)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open chromem database", goerr.V("path", path))
	}
	return &Store{
		db:          db,
		collections: make(map[string]*chromem.Collection),
	}, nil
}

func collectionName(userID string) string {
	return fmt.Sprintf("user_%s", userID)
}

func (s *Store) collection(userID string) (*chromem.Collection, error) {
	s.mu.RLock()
	col, exists := s.collections[userID]
	s.mu.RUnlock()
	if exists {
		return col, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if col, exists := s.collections[userID]; exists {
		return col, nil
	}

	// Embeddings are always supplied by the caller, so no embedding func is set.
	col, err := s.db.GetOrCreateCollection(collectionName(userID), nil, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get chromem collection", goerr.V("user_id", userID))
	}
	s.collections[userID] = col
	return col, nil
}

func (s *Store) Create(ctx context.Context, userID string, record *model.MemoryRecord) (*model.MemoryRecord, error) {
	if userID == "" {
		return nil, goerr.New("user ID is required")
	}
	if len(record.Embedding) == 0 {
		return nil, goerr.New("embedding is required", goerr.V("user_id", userID))
	}

	col, err := s.collection(userID)
	if err != nil {
		return nil, err
	}

	created := record.Copy()
	if created.ID == "" {
		created.ID = model.NewMemoryID()
	}
	created.UserID = userID
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	metadata, err := encodeMetadata(created)
	if err != nil {
		return nil, err
	}

	doc := chromem.Document{
		ID:        string(created.ID),
		Content:   created.Text,
		Embedding: created.Embedding,
		Metadata:  metadata,
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to add chromem document", goerr.V("user_id", userID))
	}

	return created, nil
}

func (s *Store) FindNearest(ctx context.Context, userID string, embedding []float32, limit int) ([]*model.ScoredMemory, error) {
	col, err := s.collection(userID)
	if err != nil {
		return nil, err
	}

	// chromem rejects nResults larger than the collection
	n := min(limit, col.Count())
	if n <= 0 {
		return []*model.ScoredMemory{}, nil
	}

	results, err := col.QueryEmbedding(ctx, embedding, n, map[string]string{metaUserID: userID}, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query chromem collection", goerr.V("user_id", userID))
	}

	scored := make([]*model.ScoredMemory, 0, len(results))
	for _, res := range results {
		rec, err := decodeResult(res)
		if err != nil {
			logging.From(ctx).Warn("skip undecodable chromem document", "user_id", userID, "id", res.ID, "error", err.Error())
			continue
		}
		scored = append(scored, &model.ScoredMemory{
			Record:   rec,
			Distance: 1 - float64(res.Similarity),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Distance < scored[j].Distance
	})
	return scored, nil
}

func (s *Store) ListByTag(ctx context.Context, userID string, tag string, since time.Time) ([]*model.MemoryRecord, error) {
	col, err := s.collection(userID)
	if err != nil {
		return nil, err
	}

	n := col.Count()
	if n == 0 {
		return []*model.MemoryRecord{}, nil
	}

	// Metadata filtering needs a query vector; any unit vector works because
	// every matching document is returned.
	probe := make([]float32, model.EmbeddingDimension)
	probe[0] = 1

	results, err := col.QueryEmbedding(ctx, probe, n, map[string]string{tagKeyPrefix + tag: "true"}, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list chromem documents by tag", goerr.V("user_id", userID), goerr.V("tag", tag))
	}

	records := make([]*model.MemoryRecord, 0, len(results))
	for _, res := range results {
		rec, err := decodeResult(res)
		if err != nil {
			logging.From(ctx).Warn("skip undecodable chromem document", "user_id", userID, "id", res.ID, "error", err.Error())
			continue
		}
		if rec.CreatedAt.Before(since) {
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

func encodeMetadata(rec *model.MemoryRecord) (map[string]string, error) {
	tags, err := json.Marshal(rec.Tags)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal tags")
	}
	payload, err := json.Marshal(rec.Metadata)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal metadata")
	}

	meta := map[string]string{
		metaUserID:    rec.UserID,
		metaCreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		metaTags:      string(tags),
		metaPayload:   string(payload),
	}
	for _, tag := range rec.Tags {
		meta[tagKeyPrefix+tag] = "true"
	}
	return meta, nil
}

func decodeResult(res chromem.Result) (*model.MemoryRecord, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, res.Metadata[metaCreatedAt])
	if err != nil {
		return nil, goerr.Wrap(err, "invalid created_at")
	}

	var tags []string
	if err := json.Unmarshal([]byte(res.Metadata[metaTags]), &tags); err != nil {
		return nil, goerr.Wrap(err, "invalid tags")
	}

	var metadata map[string]any
	if raw := res.Metadata[metaPayload]; raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
			return nil, goerr.Wrap(err, "invalid metadata")
		}
	}

	return &model.MemoryRecord{
		ID:        model.MemoryID(res.ID),
		UserID:    res.Metadata[metaUserID],
		Text:      res.Content,
		Embedding: res.Embedding,
		Tags:      tags,
		Metadata:  metadata,
		CreatedAt: createdAt,
	}, nil
}
