package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type profileMemoryDoc struct {
	Type       string    `bson:"type"`
	Content    string    `bson:"content"`
	Tags       []string  `bson:"tags"`
	Importance int       `bson:"importance"`
	CreatedAt  time.Time `bson:"created_at"`
}

type personalInfoDoc struct {
	Name               string   `bson:"name"`
	Age                string   `bson:"age"`
	Location           string   `bson:"location"`
	Occupation         string   `bson:"occupation"`
	Interests          []string `bson:"interests"`
	Goals              []string `bson:"goals"`
	CommunicationStyle string   `bson:"communication_style"`
}

type profileDoc struct {
	UserID       string             `bson:"user_id"`
	PersonalInfo personalInfoDoc    `bson:"personal_info"`
	Answers      map[string]string  `bson:"answers"`
	Memories     []profileMemoryDoc `bson:"memories"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func toProfileDoc(p *model.Profile) *profileDoc {
	doc := &profileDoc{
		UserID:       p.UserID,
		PersonalInfo: personalInfoDoc(p.PersonalInfo),
		Answers:      p.Answers,
		Memories:     make([]profileMemoryDoc, 0, len(p.Memories)),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	for _, m := range p.Memories {
		doc.Memories = append(doc.Memories, profileMemoryDoc(m))
	}
	return doc
}

func fromProfileDoc(d *profileDoc) *model.Profile {
	p := &model.Profile{
		UserID:       d.UserID,
		PersonalInfo: model.PersonalInfo(d.PersonalInfo),
		Answers:      d.Answers,
		Memories:     make([]model.ProfileMemory, 0, len(d.Memories)),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	for _, m := range d.Memories {
		p.Memories = append(p.Memories, model.ProfileMemory(m))
	}
	return p
}

type profileRepository struct {
	col *mongo.Collection
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*model.Profile, error) {
	var d profileDoc
	if err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get profile", goerr.V("user_id", userID))
	}
	return fromProfileDoc(&d), nil
}

func (r *profileRepository) Put(ctx context.Context, profile *model.Profile) error {
	if profile.UserID == "" {
		return goerr.New("user ID is required")
	}

	doc := toProfileDoc(profile)
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}

	_, err := r.col.ReplaceOne(ctx, bson.M{"user_id": profile.UserID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return goerr.Wrap(err, "failed to put profile", goerr.V("user_id", profile.UserID))
	}
	return nil
}

func (r *profileRepository) AppendMemory(ctx context.Context, userID string, memory model.ProfileMemory) error {
	if memory.CreatedAt.IsZero() {
		memory.CreatedAt = time.Now().UTC()
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$push": bson.M{"memories": profileMemoryDoc(memory)},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return goerr.Wrap(err, "failed to append profile memory", goerr.V("user_id", userID))
	}
	if res.MatchedCount == 0 {
		return goerr.Wrap(ErrNotFound, "profile not found", goerr.V("user_id", userID))
	}
	return nil
}
