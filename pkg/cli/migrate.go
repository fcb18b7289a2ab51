package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/repository/firestore"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/logging"
)

// defaultDatabaseID is the Firestore database used when none is given
const defaultDatabaseID = "(default)"

func cmdMigrate() *cli.Command {
	var projectID string
	var databaseID string
	var collectionPrefix string
	var dryRun bool

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID (required)",
				Required:    true,
				Sources:     cli.EnvVars("COMMUNITY_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Sources:     cli.EnvVars("COMMUNITY_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.StringFlag{
				Name:        "firestore-collection-prefix",
				Usage:       "Prefix for Firestore collection names",
				Sources:     cli.EnvVars("COMMUNITY_FIRESTORE_COLLECTION_PREFIX"),
				Destination: &collectionPrefix,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			logger.Info("Migrate configuration",
				"projectID", projectID,
				"databaseID", databaseID,
				"collectionPrefix", collectionPrefix,
				"dryRun", dryRun)

			indexConfig := getIndexConfig(collectionPrefix)
			if databaseID == "" {
				databaseID = defaultDatabaseID
			}

			client, err := fireconf.New(ctx, projectID, databaseID, indexConfig,
				fireconf.WithLogger(logger))
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
				names := make([]string, 0, len(indexConfig.Collections))
				for _, col := range indexConfig.Collections {
					names = append(names, col.Name)
				}
				current, err := client.Import(ctx, names...)
				if err != nil {
					return goerr.Wrap(err, "failed to import current indexes")
				}
				diff, err := client.DiffConfigs(current)
				if err != nil {
					return goerr.Wrap(err, "failed to create migration plan")
				}
				logMigrationPlan(logger, diff)
			} else {
				logger.Info("Applying migrations")
				if err := client.Migrate(ctx); err != nil {
					return goerr.Wrap(err, "failed to apply migrations")
				}
				logger.Info("Migrations applied successfully")
			}

			return nil
		},
	}
}

// logMigrationPlan logs one line per index change and returns how many changes there are
func logMigrationPlan(logger *slog.Logger, diff *fireconf.DiffResult) int {
	changes := 0
	for _, col := range diff.Collections {
		for _, idx := range col.IndexesToAdd {
			changes++
			logger.Info("Migration step",
				"collection", col.Name,
				"operation", "create index",
				"fields", indexFieldPaths(idx))
		}
		for _, idx := range col.IndexesToDelete {
			changes++
			logger.Info("Migration step",
				"collection", col.Name,
				"operation", "delete index",
				"fields", indexFieldPaths(idx),
				"destructive", true)
		}
	}
	if changes == 0 {
		logger.Info("No changes required")
	}
	return changes
}

func indexFieldPaths(idx fireconf.Index) []string {
	paths := make([]string, 0, len(idx.Fields))
	for _, f := range idx.Fields {
		paths = append(paths, f.Path+" "+string(f.Order))
	}
	return paths
}

// getIndexConfig returns the Firestore index configuration
func getIndexConfig(collectionPrefix string) *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: firestore.EventsCollection(collectionPrefix),
				Indexes: []fireconf.Index{
					// ListByStatuses: Status IN (...), Details.Date.Start ASC
					{
						Fields: []fireconf.IndexField{
							{Path: firestore.EventStatusPath, Order: fireconf.OrderAscending},
							{Path: firestore.EventStartDatePath, Order: fireconf.OrderAscending},
						},
					},
				},
			},
		},
	}
}
