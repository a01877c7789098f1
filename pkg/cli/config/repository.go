package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/domain/interfaces"
	"github.com/secmon-lab/lumi/pkg/repository/cache"
	"github.com/secmon-lab/lumi/pkg/repository/firestore"
	"github.com/secmon-lab/lumi/pkg/repository/memory"
	"github.com/secmon-lab/lumi/pkg/repository/mongo"
	"github.com/secmon-lab/lumi/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository backends
const (
	BackendFirestore = "firestore"
	BackendMongo     = "mongo"
	BackendMemory    = "memory"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend         string
	projectID       string
	databaseID      string
	mongoURI        string
	mongoDatabase   string
	profileCacheTTL time.Duration
}

type repositoryLogValue struct {
	Backend         string
	ProjectID       string
	DatabaseID      string
	MongoURI        string `masq:"secret"`
	MongoDatabase   string
	ProfileCacheTTL string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (firestore, mongo or memory)",
			Value:       BackendMemory,
			Category:    "Repository",
			Sources:     cli.EnvVars("LUMI_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("LUMI_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("LUMI_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "mongo-uri",
			Usage:       "MongoDB connection URI (required when using mongo backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("LUMI_MONGO_URI"),
			Destination: &r.mongoURI,
		},
		&cli.StringFlag{
			Name:        "mongo-database",
			Usage:       "MongoDB database name",
			Value:       "lumi",
			Category:    "Repository",
			Sources:     cli.EnvVars("LUMI_MONGO_DATABASE"),
			Destination: &r.mongoDatabase,
		},
		&cli.DurationFlag{
			Name:        "profile-cache-ttl",
			Usage:       "TTL of the in-process profile cache (0 disables it)",
			Value:       30 * time.Second,
			Category:    "Repository",
			Sources:     cli.EnvVars("LUMI_PROFILE_CACHE_TTL"),
			Destination: &r.profileCacheTTL,
		},
	}
}

// LogValue implements slog.LogValuer. The Mongo URI is redacted by the masq filter.
func (r Repository) LogValue() slog.Value {
	return slog.AnyValue(repositoryLogValue{
		Backend:         r.backend,
		ProjectID:       r.projectID,
		DatabaseID:      r.databaseID,
		MongoURI:        r.mongoURI,
		MongoDatabase:   r.mongoDatabase,
		ProfileCacheTTL: r.profileCacheTTL.String(),
	})
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// Configure initializes and returns a repository based on the configured backend,
// wrapped with the profile cache when its TTL is positive. The caller is
// responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	repo, err := r.open(ctx)
	if err != nil {
		return nil, err
	}
	return cache.New(repo, r.profileCacheTTL), nil
}

func (r *Repository) open(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrMissingOption, "firestore-project-id is required when using firestore backend",
				goerr.V(OptionKey, "firestore-project-id"))
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case BackendMongo:
		if r.mongoURI == "" {
			return nil, goerr.Wrap(ErrMissingOption, "mongo-uri is required when using mongo backend",
				goerr.V(OptionKey, "mongo-uri"))
		}
		repo, err := mongo.New(ctx, r.mongoURI, r.mongoDatabase)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize mongo repository")
		}
		logging.Default().Info("Using MongoDB repository", "database", r.mongoDatabase)
		return repo, nil

	case BackendMemory:
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "invalid repository backend", goerr.V(BackendKey, r.backend))
	}
}
