package cli

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/gt"
)

func TestGetIndexConfig(t *testing.T) {
	cfg := getIndexConfig("staging")
	gt.NoError(t, cfg.Validate())
	gt.Array(t, cfg.Collections).Length(1)
	gt.Value(t, cfg.Collections[0].Name).Equal("staging_events")
	gt.Array(t, cfg.Collections[0].Indexes).Length(1)
	gt.Array(t, cfg.Collections[0].Indexes[0].Fields).Length(2)

	gt.Value(t, getIndexConfig("").Collections[0].Name).Equal("events")
}

func TestLogMigrationPlan(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	t.Run("new index is reported", func(t *testing.T) {
		buf.Reset()
		idx := getIndexConfig("").Collections[0].Indexes[0]
		diff := &fireconf.DiffResult{Collections: []fireconf.CollectionDiff{
			{Name: "events", Action: fireconf.ActionAdd, IndexesToAdd: []fireconf.Index{idx}},
		}}

		gt.Value(t, logMigrationPlan(logger, diff)).Equal(1)
		gt.String(t, buf.String()).Contains("create index")
		gt.String(t, buf.String()).Contains("Details.Date.Start ASCENDING")
	})

	t.Run("no changes", func(t *testing.T) {
		buf.Reset()
		gt.Value(t, logMigrationPlan(logger, &fireconf.DiffResult{})).Equal(0)
		gt.String(t, buf.String()).Contains("No changes required")
	})
}
