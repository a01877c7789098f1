package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"github.com/secmon-lab/lumi/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type chatMessageDoc struct {
	ID        model.ChatMessageID `firestore:"ID"`
	UserID    string              `firestore:"UserID"`
	Role      types.ChatRole      `firestore:"Role"`
	Content   string              `firestore:"Content"`
	Timestamp time.Time           `firestore:"Timestamp"`
}

type chatRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newChatRepository(client *firestore.Client) *chatRepository {
	return &chatRepository{client: client}
}

// messagesCollection returns users/{userID}/messages
func (r *chatRepository) messagesCollection(userID string) *firestore.CollectionRef {
	return r.client.Collection(usersCollection(r.collectionPrefix)).Doc(userID).Collection("messages")
}

func (r *chatRepository) Create(ctx context.Context, msg *model.ChatMessage) (*model.ChatMessage, error) {
	if msg.UserID == "" {
		return nil, goerr.New("user ID is required")
	}

	created := *msg
	if created.ID == "" {
		created.ID = model.NewChatMessageID()
	}
	if created.Timestamp.IsZero() {
		created.Timestamp = time.Now().UTC()
	}

	doc := chatMessageDoc(created)
	if _, err := r.messagesCollection(created.UserID).Doc(string(created.ID)).Set(ctx, &doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create chat message", goerr.V("user_id", created.UserID))
	}
	return &created, nil
}

func (r *chatRepository) ListRecent(ctx context.Context, userID string, limit int) ([]*model.ChatMessage, error) {
	iter := r.messagesCollection(userID).
		OrderBy("Timestamp", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	messages := make([]*model.ChatMessage, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate chat messages", goerr.V("user_id", userID))
		}

		var d chatMessageDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal chat message", goerr.V("user_id", userID))
		}
		m := model.ChatMessage(d)
		messages = append(messages, &m)
	}

	return messages, nil
}
