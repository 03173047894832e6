package cli

import (
	"context"
	"strconv"
	"time"

	flag "github.com/spf13/pflag"
)

// BlackoutsCmd returns the blackouts command.
func BlackoutsCmd(app *App) *Command {
	return &Command{
		Flags: flag.NewFlagSet("blackouts", flag.ContinueOnError),
		Usage: "blackouts",
		Short: "List configured blackouts",
		Long: `List the recurring periods without working time from the config, e.g.

  "blackouts": [
    {"name": "night", "first_start": "2026-01-01T22:00:00Z", "duration": "8h", "period": "24h"}
  ]

An occurrence blocks the time after its start up to and including its end.`,
		Exec: func(_ context.Context, io *IO, _ []string) error {
			return execBlackouts(io, app)
		},
	}
}

func execBlackouts(io *IO, app *App) error {
	blackouts, err := app.Config.ScheduleBlackouts()
	if err != nil {
		return err
	}

	if len(blackouts) == 0 {
		io.ErrPrintln("no blackouts configured")

		return nil
	}

	now := app.Now
	rows := make([][]string, 0, len(blackouts))

	for idx, b := range blackouts {
		name := app.Config.Blackouts[idx].Name
		if name == "" {
			name = "#" + strconv.Itoa(idx+1)
		}

		active := "no"
		if b.IsActive(now) {
			active = "yes"
		}

		every := "-"
		if b.Period() > 0 {
			every = formatSpan(b.Period())
		}

		rows = append(rows, []string{
			name,
			active,
			formatOptional(b.NextStart(now), now),
			formatOptional(b.NextEnd(now), now),
			formatSpan(b.Duration()),
			every,
			strconv.Itoa(b.Order()),
		})
	}

	for _, line := range table([]string{"NAME", "ACTIVE", "NEXT START", "NEXT END", "LENGTH", "EVERY", "ORDER"}, rows) {
		io.Println(line)
	}

	return nil
}

func formatOptional(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}

	return formatInstant(t, now)
}
