package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/cli/config"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/usecase"
)

func cmdCheckDate() *cli.Command {
	var start, end string
	var exclude string
	var timezone string
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "start",
			Usage:       "First day of the proposed event (YYYY-MM-DD)",
			Required:    true,
			Destination: &start,
		},
		&cli.StringFlag{
			Name:        "end",
			Usage:       "Last day of the proposed event (YYYY-MM-DD). Defaults to --start",
			Destination: &end,
		},
		&cli.StringFlag{
			Name:        "exclude",
			Usage:       "Event ID to ignore, e.g. when re-checking an existing event",
			Destination: &exclude,
		},
		&cli.StringFlag{
			Name:        "timezone",
			Usage:       "Timezone event dates are interpreted in",
			Value:       model.DefaultTimezone,
			Sources:     cli.EnvVars("COMMUNITY_TIMEZONE"),
			Destination: &timezone,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "check-date",
		Aliases: []string{"c"},
		Usage:   "Check whether a date range collides with an active event",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cal, err := model.NewCalendar(timezone)
			if err != nil {
				return goerr.Wrap(err, "failed to load timezone", goerr.V("timezone", timezone))
			}

			if end == "" {
				end = start
			}
			startDate, err := cal.ParseDate(start)
			if err != nil {
				return err
			}
			endDate, err := cal.ParseDate(end)
			if err != nil {
				return err
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() { _ = repo.Close() }()

			uc := usecase.New(repo, usecase.WithCalendar(cal))
			defer func() { _ = uc.Close() }()

			conflict, err := uc.Event.CheckDateConflict(ctx, startDate, endDate, model.EventID(exclude))
			if err != nil {
				return err
			}

			printConflict(c.Root().Writer, cal, conflict)
			if conflict.HasConflict {
				return goerr.Wrap(usecase.ErrDateConflict, "dates are not available",
					goerr.V("conflicting_event", conflict.ConflictingEventName))
			}
			return nil
		},
	}
}

func printConflict(w io.Writer, cal *model.Calendar, conflict *model.DateConflict) {
	if !conflict.HasConflict {
		_, _ = fmt.Fprintln(w, color.New(color.FgGreen, color.Bold).Sprint("✔ Dates are available"))
		return
	}

	_, _ = fmt.Fprintf(w, "%s %s\n",
		color.New(color.FgRed, color.Bold).Sprint("✘ Conflicts with"),
		color.New(color.FgHiMagenta).Sprint(conflict.ConflictingEventName))
	if conflict.ConflictingEvent != nil {
		_, _ = fmt.Fprintf(w, "  %s %s to %s (%s)\n",
			color.New(color.Faint).Sprint("scheduled"),
			cal.Format(conflict.ConflictingEvent.Details.Date.Start),
			cal.Format(conflict.ConflictingEvent.Details.Date.End),
			conflict.ConflictingEvent.Status)
	}
	if conflict.NextAvailableDate != nil {
		_, _ = fmt.Fprintf(w, "  %s %s\n",
			color.New(color.FgCyan).Sprint("next available date:"),
			cal.Format(*conflict.NextAvailableDate))
	}
}
