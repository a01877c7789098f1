package mongo

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/domain/interfaces"
	"github.com/secmon-lab/lumi/pkg/utils/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ErrNotFound is returned when a requested document does not exist
var ErrNotFound = goerr.New("not found")

const (
	collectionProfiles = "user_profiles"
	collectionPlans    = "daily_plans"
	collectionMessages = "chat_messages"
	collectionMemories = "memories"
)

type Mongo struct {
	client   *mongo.Client
	database *mongo.Database
	profile  *profileRepository
	plan     *planRepository
	chat     *chatRepository
	memory   *memoryRepository
}

var _ interfaces.Repository = &Mongo{}

// New connects to uri and verifies the connection against the primary.
func New(ctx context.Context, uri, database string) (*Mongo, error) {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to mongodb", goerr.V("database", database))
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, goerr.Wrap(err, "failed to ping mongodb", goerr.V("database", database))
	}

	db := client.Database(database)
	return &Mongo{
		client:   client,
		database: db,
		profile:  &profileRepository{col: db.Collection(collectionProfiles)},
		plan:     &planRepository{col: db.Collection(collectionPlans)},
		chat:     &chatRepository{col: db.Collection(collectionMessages)},
		memory:   &memoryRepository{col: db.Collection(collectionMemories)},
	}, nil
}

func (m *Mongo) Profile() interfaces.ProfileRepository {
	return m.profile
}

func (m *Mongo) Plan() interfaces.PlanRepository {
	return m.plan
}

func (m *Mongo) Chat() interfaces.ChatRepository {
	return m.chat
}

func (m *Mongo) Memory() interfaces.MemoryRepository {
	return m.memory
}

func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.client.Disconnect(ctx); err != nil {
		return goerr.Wrap(err, "failed to disconnect mongodb")
	}
	return nil
}

// Migrate creates the indexes used by the repositories. It is idempotent.
func (m *Mongo) Migrate(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		collectionProfiles: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collectionPlans: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collectionMessages: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
		collectionMemories: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "tags", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for name, models := range indexes {
		created, err := m.database.Collection(name).Indexes().CreateMany(ctx, models)
		if err != nil {
			return goerr.Wrap(err, "failed to create indexes", goerr.V("collection", name))
		}
		logging.From(ctx).Info("MongoDB indexes ensured", "collection", name, "indexes", created)
	}
	return nil
}
