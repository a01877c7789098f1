package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type profileMemoryDoc struct {
	Type       string    `firestore:"Type"`
	Content    string    `firestore:"Content"`
	Tags       []string  `firestore:"Tags"`
	Importance int       `firestore:"Importance"`
	CreatedAt  time.Time `firestore:"CreatedAt"`
}

type profileDoc struct {
	UserID             string             `firestore:"UserID"`
	Name               string             `firestore:"Name"`
	Age                string             `firestore:"Age"`
	Location           string             `firestore:"Location"`
	Occupation         string             `firestore:"Occupation"`
	Interests          []string           `firestore:"Interests"`
	Goals              []string           `firestore:"Goals"`
	CommunicationStyle string             `firestore:"CommunicationStyle"`
	Answers            map[string]string  `firestore:"Answers"`
	Memories           []profileMemoryDoc `firestore:"Memories"`
	CreatedAt          time.Time          `firestore:"CreatedAt"`
	UpdatedAt          time.Time          `firestore:"UpdatedAt"`
}

func toProfileDoc(p *model.Profile) *profileDoc {
	doc := &profileDoc{
		UserID:             p.UserID,
		Name:               p.PersonalInfo.Name,
		Age:                p.PersonalInfo.Age,
		Location:           p.PersonalInfo.Location,
		Occupation:         p.PersonalInfo.Occupation,
		Interests:          p.PersonalInfo.Interests,
		Goals:              p.PersonalInfo.Goals,
		CommunicationStyle: p.PersonalInfo.CommunicationStyle,
		Answers:            p.Answers,
		Memories:           make([]profileMemoryDoc, 0, len(p.Memories)),
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
	for _, m := range p.Memories {
		doc.Memories = append(doc.Memories, profileMemoryDoc(m))
	}
	return doc
}

func fromProfileDoc(d *profileDoc) *model.Profile {
	p := &model.Profile{
		UserID: d.UserID,
		PersonalInfo: model.PersonalInfo{
			Name:               d.Name,
			Age:                d.Age,
			Location:           d.Location,
			Occupation:         d.Occupation,
			Interests:          d.Interests,
			Goals:              d.Goals,
			CommunicationStyle: d.CommunicationStyle,
		},
		Answers:   d.Answers,
		Memories:  make([]model.ProfileMemory, 0, len(d.Memories)),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for _, m := range d.Memories {
		p.Memories = append(p.Memories, model.ProfileMemory(m))
	}
	return p
}

type profileRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newProfileRepository(client *firestore.Client) *profileRepository {
	return &profileRepository{client: client}
}

func (r *profileRepository) profileDoc(userID string) *firestore.DocumentRef {
	return r.client.Collection(usersCollection(r.collectionPrefix)).Doc(userID)
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*model.Profile, error) {
	doc, err := r.profileDoc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get profile", goerr.V("user_id", userID))
	}

	var d profileDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal profile", goerr.V("user_id", userID))
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

	if _, err := r.profileDoc(profile.UserID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put profile", goerr.V("user_id", profile.UserID))
	}
	return nil
}

func (r *profileRepository) AppendMemory(ctx context.Context, userID string, memory model.ProfileMemory) error {
	ref := r.profileDoc(userID)
	if memory.CreatedAt.IsZero() {
		memory.CreatedAt = time.Now().UTC()
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "profile not found", goerr.V("user_id", userID))
			}
			return goerr.Wrap(err, "failed to get profile", goerr.V("user_id", userID))
		}

		var d profileDoc
		if err := snap.DataTo(&d); err != nil {
			return goerr.Wrap(err, "failed to unmarshal profile", goerr.V("user_id", userID))
		}
		d.Memories = append(d.Memories, profileMemoryDoc(memory))
		d.UpdatedAt = time.Now().UTC()
		return tx.Set(ref, &d)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to append profile memory", goerr.V("user_id", userID))
	}
	return nil
}
