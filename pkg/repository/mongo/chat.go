package mongo

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"github.com/secmon-lab/lumi/pkg/domain/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type chatMessageDoc struct {
	ID        model.ChatMessageID `bson:"_id"`
	UserID    string              `bson:"user_id"`
	Role      types.ChatRole      `bson:"role"`
	Content   string              `bson:"content"`
	Timestamp time.Time           `bson:"timestamp"`
}

type chatRepository struct {
	col *mongo.Collection
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
	if _, err := r.col.InsertOne(ctx, &doc); err != nil {
		return nil, goerr.Wrap(err, "failed to insert chat message", goerr.V("user_id", created.UserID))
	}
	return &created, nil
}

func (r *chatRepository) ListRecent(ctx context.Context, userID string, limit int) ([]*model.ChatMessage, error) {
	cursor, err := r.col.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().
			SetSort(bson.D{{Key: "timestamp", Value: -1}}).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find chat messages", goerr.V("user_id", userID))
	}
	defer cursor.Close(ctx)

	var docs []chatMessageDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, goerr.Wrap(err, "failed to decode chat messages", goerr.V("user_id", userID))
	}

	messages := make([]*model.ChatMessage, 0, len(docs))
	for _, d := range docs {
		m := model.ChatMessage(d)
		messages = append(messages, &m)
	}
	return messages, nil
}
