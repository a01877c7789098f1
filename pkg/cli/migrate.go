package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"github.com/secmon-lab/lumi/pkg/repository/mongo"
	"github.com/secmon-lab/lumi/pkg/utils/logging"
	"github.com/secmon-lab/lumi/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var projectID string
	var databaseID string
	var mongoURI string
	var mongoDatabase string
	var dryRun bool

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore and MongoDB indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID",
				Sources:     cli.EnvVars("LUMI_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Sources:     cli.EnvVars("LUMI_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.StringFlag{
				Name:        "mongo-uri",
				Usage:       "MongoDB connection URI; indexes are created when set",
				Sources:     cli.EnvVars("LUMI_MONGO_URI"),
				Destination: &mongoURI,
			},
			&cli.StringFlag{
				Name:        "mongo-database",
				Usage:       "MongoDB database name",
				Value:       "lumi",
				Sources:     cli.EnvVars("LUMI_MONGO_DATABASE"),
				Destination: &mongoDatabase,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview Firestore changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if projectID == "" && mongoURI == "" {
				return goerr.New("either firestore-project-id or mongo-uri is required")
			}

			if projectID != "" {
				if err := migrateFirestore(ctx, projectID, databaseID, dryRun); err != nil {
					return err
				}
			}

			if mongoURI != "" {
				if dryRun {
					logging.Default().Info("Dry run mode - skipping MongoDB indexes")
					return nil
				}
				if err := migrateMongo(ctx, mongoURI, mongoDatabase); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func migrateFirestore(ctx context.Context, projectID, databaseID string, dryRun bool) error {
	logger := logging.Default()

	logger.Info("Migrate configuration",
		"projectID", projectID,
		"databaseID", databaseID,
		"dryRun", dryRun)

	indexConfig := getIndexConfig()

	client, err := fireconf.NewClient(ctx, projectID, databaseID)
	if err != nil {
		return goerr.Wrap(err, "failed to create fireconf client")
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close fireconf client", "error", err.Error())
		}
	}()

	if dryRun {
		logger.Info("Dry run mode - previewing changes")
		plan, err := client.GetMigrationPlan(ctx, indexConfig)
		if err != nil {
			return goerr.Wrap(err, "failed to create migration plan")
		}

		if len(plan.Steps) == 0 {
			logger.Info("No changes required")
			return nil
		}

		for _, step := range plan.Steps {
			logger.Info("Migration step",
				"collection", step.Collection,
				"operation", step.Operation,
				"description", step.Description,
				"destructive", step.Destructive)
		}
		return nil
	}

	logger.Info("Applying migrations")
	if err := client.Migrate(ctx, indexConfig); err != nil {
		return goerr.Wrap(err, "failed to apply migrations")
	}
	logger.Info("Migrations applied successfully")
	return nil
}

func migrateMongo(ctx context.Context, uri, database string) error {
	repo, err := mongo.New(ctx, uri, database)
	if err != nil {
		return goerr.Wrap(err, "failed to connect to mongodb")
	}
	defer safe.Close(ctx, repo)

	if err := repo.Migrate(ctx); err != nil {
		return goerr.Wrap(err, "failed to migrate mongodb indexes")
	}
	logging.Default().Info("MongoDB indexes applied", "database", database)
	return nil
}

// getIndexConfig returns the Firestore index configuration
func getIndexConfig() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				// users/{userID}/memories
				Name: "memories",
				Indexes: []fireconf.Index{
					// FindNearest on the memory embedding
					{
						Fields: []fireconf.IndexField{
							{
								Path: "Embedding",
								Vector: &fireconf.VectorConfig{
									Dimension: model.EmbeddingDimension,
								},
							},
						},
					},
				},
			},
		},
	}
}
