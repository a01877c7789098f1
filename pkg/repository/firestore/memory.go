package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"google.golang.org/api/iterator"
)

// distanceField receives the cosine distance computed by FindNearest
const distanceField = "Distance"

// memoryDoc is the Firestore document representation of model.MemoryRecord.
// Embedding is stored as firestore.Vector32 for FindNearest vector search.
type memoryDoc struct {
	ID        model.MemoryID     `firestore:"ID"`
	UserID    string             `firestore:"UserID"`
	Text      string             `firestore:"Text"`
	Embedding firestore.Vector32 `firestore:"Embedding,omitempty"`
	Tags      []string           `firestore:"Tags"`
	Metadata  map[string]any     `firestore:"Metadata"`
	CreatedAt time.Time          `firestore:"CreatedAt"`
	Distance  float64            `firestore:"Distance,omitempty"`
}

func toMemoryDoc(m *model.MemoryRecord) *memoryDoc {
	doc := &memoryDoc{
		ID:        m.ID,
		UserID:    m.UserID,
		Text:      m.Text,
		Tags:      m.Tags,
		Metadata:  m.Metadata,
		CreatedAt: m.CreatedAt,
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	if len(m.Embedding) > 0 {
		doc.Embedding = firestore.Vector32(m.Embedding)
	}
	return doc
}

func fromMemoryDoc(d *memoryDoc) *model.MemoryRecord {
	m := &model.MemoryRecord{
		ID:        d.ID,
		UserID:    d.UserID,
		Text:      d.Text,
		Tags:      d.Tags,
		Metadata:  d.Metadata,
		CreatedAt: d.CreatedAt,
	}
	if len(d.Embedding) > 0 {
		m.Embedding = []float32(d.Embedding)
	}
	return m
}

type memoryRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newMemoryRepository(client *firestore.Client) *memoryRepository {
	return &memoryRepository{client: client}
}

// memoriesCollection returns users/{userID}/memories. Nesting the collection under
// the user document is what scopes every query to one user.
func (r *memoryRepository) memoriesCollection(userID string) *firestore.CollectionRef {
	return r.client.Collection(usersCollection(r.collectionPrefix)).Doc(userID).Collection("memories")
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

	docRef := r.memoriesCollection(userID).Doc(string(created.ID))
	if _, err := docRef.Set(ctx, toMemoryDoc(created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create memory", goerr.V("user_id", userID))
	}

	return created, nil
}

func (r *memoryRepository) FindNearest(ctx context.Context, userID string, embedding []float32, limit int) ([]*model.ScoredMemory, error) {
	if limit <= 0 {
		return []*model.ScoredMemory{}, nil
	}

	vq := r.memoriesCollection(userID).
		FindNearest("Embedding", firestore.Vector32(embedding), limit, firestore.DistanceMeasureCosine,
			&firestore.FindNearestOptions{DistanceResultField: distanceField})

	iter := vq.Documents(ctx)
	defer iter.Stop()

	results := make([]*model.ScoredMemory, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate memory vector search results", goerr.V("user_id", userID))
		}

		var d memoryDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal memory from vector search", goerr.V("user_id", userID))
		}

		results = append(results, &model.ScoredMemory{
			Record:   fromMemoryDoc(&d),
			Distance: d.Distance,
		})
	}

	return results, nil
}

func (r *memoryRepository) ListByTag(ctx context.Context, userID string, tag string, since time.Time) ([]*model.MemoryRecord, error) {
	// Only the automatic single-field index on Tags is used; the time window and
	// ordering are applied here.
	iter := r.memoriesCollection(userID).
		Where("Tags", "array-contains", tag).
		Documents(ctx)
	defer iter.Stop()

	records := make([]*model.MemoryRecord, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate memories by tag", goerr.V("user_id", userID), goerr.V("tag", tag))
		}

		var d memoryDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal memory", goerr.V("user_id", userID))
		}
		if d.CreatedAt.Before(since) {
			continue
		}
		records = append(records, fromMemoryDoc(&d))
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}
