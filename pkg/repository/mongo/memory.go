package mongo

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type memoryDoc struct {
	ID        model.MemoryID `bson:"_id"`
	UserID    string         `bson:"user_id"`
	Text      string         `bson:"text"`
	Embedding []float32      `bson:"embedding"`
	Tags      []string       `bson:"tags"`
	Metadata  map[string]any `bson:"metadata"`
	CreatedAt time.Time      `bson:"created_at"`
}

func toMemoryDoc(m *model.MemoryRecord) *memoryDoc {
	doc := memoryDoc(*m)
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	return &doc
}

func fromMemoryDoc(d *memoryDoc) *model.MemoryRecord {
	rec := model.MemoryRecord(*d)
	return &rec
}

// memoryRepository ranks candidates in process: a user's memories are loaded and
// scored with cosine distance. Every filter includes user_id.
type memoryRepository struct {
	col *mongo.Collection
}

func (r *memoryRepository) Create(ctx context.Context, userID string, record *model.MemoryRecord) (*model.MemoryRecord, error) {
	if userID == "" {
		return nil, goerr.New("user ID is required")
	}

	created := record.Copy()
	if created.ID == "" {
		created.ID = model.NewMemoryID()
	}
	created.UserID = userID
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	if _, err := r.col.InsertOne(ctx, toMemoryDoc(created)); err != nil {
		return nil, goerr.Wrap(err, "failed to insert memory", goerr.V("user_id", userID))
	}
	return created, nil
}

func (r *memoryRepository) FindNearest(ctx context.Context, userID string, embedding []float32, limit int) ([]*model.ScoredMemory, error) {
	if limit <= 0 {
		return []*model.ScoredMemory{}, nil
	}

	cursor, err := r.col.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find memories", goerr.V("user_id", userID))
	}
	defer cursor.Close(ctx)

	var docs []memoryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, goerr.Wrap(err, "failed to decode memories", goerr.V("user_id", userID))
	}

	scored := make([]*model.ScoredMemory, 0, len(docs))
	for i := range docs {
		if len(docs[i].Embedding) == 0 {
			continue
		}
		scored = append(scored, &model.ScoredMemory{
			Record:   fromMemoryDoc(&docs[i]),
			Distance: model.CosineDistance(embedding, docs[i].Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Distance < scored[j].Distance
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (r *memoryRepository) ListByTag(ctx context.Context, userID string, tag string, since time.Time) ([]*model.MemoryRecord, error) {
	cursor, err := r.col.Find(ctx,
		bson.M{
			"user_id":    userID,
			"tags":       tag,
			"created_at": bson.M{"$gte": since},
		},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find memories by tag", goerr.V("user_id", userID), goerr.V("tag", tag))
	}
	defer cursor.Close(ctx)

	var docs []memoryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, goerr.Wrap(err, "failed to decode memories", goerr.V("user_id", userID))
	}

	records := make([]*model.MemoryRecord, 0, len(docs))
	for i := range docs {
		records = append(records, fromMemoryDoc(&docs[i]))
	}
	return records, nil
}
