package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/interfaces"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/service/draft"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/logging"
)

// Draft holds CLI flags for the draft store
type Draft struct {
	path string
}

func (d *Draft) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "draft-db",
			Usage:       "SQLite file for form drafts. Drafts are kept in memory when empty",
			Sources:     cli.EnvVars("COMMUNITY_DRAFT_DB"),
			Destination: &d.path,
		},
	}
}

// Configure opens the draft store. The caller closes it.
func (d *Draft) Configure(ctx context.Context) (interfaces.DraftStore, error) {
	if d.path == "" {
		logging.Default().Info("Using in-memory draft store")
		return draft.NewMemory(), nil
	}

	store, err := draft.NewSQLite(ctx, d.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open draft store", goerr.V("path", d.path))
	}
	logging.Default().Info("Using SQLite draft store", "path", d.path)
	return store, nil
}
