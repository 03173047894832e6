package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/calvinalkan/whatnext/internal/schedule"
	"github.com/ryanuber/columnize"

	flag "github.com/spf13/pflag"
)

var errNegativeBuffer = errors.New("--buffer must not be negative")

// CheckCmd returns the check command.
func CheckCmd(app *App) *Command {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.Duration("buffer", 0, "Gap charged after every task (default from config)")
	fs.Bool("json", false, "Output as JSON object")

	return &Command{
		Flags: fs,
		Usage: "check [flags]",
		Short: "Check whether all deadlines can be met",
		Long: `Check the open tasks against their deadlines.

  schedulable           all tasks fit back to back in least-laxity order
  schedulable (+buffer) the same with a gap after every task
  missed tasks          the most urgent task has no slack left
  next missed deadline  first instant a deadline is missed when working
                        only outside the configured blackouts

Exits 1 with a warning when a deadline is already lost or predicted to be
missed.`,
		Exec: func(ctx context.Context, io *IO, _ []string) error {
			buffer := app.Config.BufferDuration()
			if fs.Changed("buffer") {
				buffer, _ = fs.GetDuration("buffer")
			}

			jsonOutput, _ := fs.GetBool("json")

			return execCheck(ctx, io, app, buffer, jsonOutput)
		},
	}
}

// checkReport is the JSON representation of a check.
type checkReport struct {
	ReferenceTime       string  `json:"reference_time"`
	Tasks               int     `json:"tasks"`
	Schedulable         bool    `json:"schedulable"`
	Buffer              string  `json:"buffer"`
	SchedulableBuffered bool    `json:"schedulable_buffered"`
	MissedTasks         bool    `json:"missed_tasks"`
	NextMissedDeadline  *string `json:"next_missed_deadline"`
}

func execCheck(ctx context.Context, io *IO, app *App, buffer time.Duration, jsonOutput bool) error {
	if buffer < 0 {
		return errNegativeBuffer
	}

	set, err := loadTasks(ctx, app, io)
	if err != nil {
		return err
	}

	blackouts, err := app.Config.ScheduleBlackouts()
	if err != nil {
		return err
	}

	now := app.Now
	items := set.forest.Schedulable(now)
	logger := app.Logger.Named("check")

	report := checkReport{
		ReferenceTime:       now.UTC().Format(time.RFC3339),
		Tasks:               len(items),
		Schedulable:         schedule.IsSchedulable(items, now),
		Buffer:              buffer.String(),
		SchedulableBuffered: schedule.IsSchedulableBuffered(items, now, buffer),
		MissedTasks:         schedule.HasMissedTasks(items, now),
	}

	missAt, missed := schedule.NextMissedDeadline(items, now, blackouts)
	if missed {
		formatted := missAt.UTC().Format(time.RFC3339)
		report.NextMissedDeadline = &formatted
	}

	logger.Debug("checked", "tasks", len(items), "blackouts", len(blackouts),
		"schedulable", report.Schedulable, "missed", report.MissedTasks, "next_miss", missAt)

	warnMisses(io, items, now, missAt, missed)

	if jsonOutput {
		data, err := json.Marshal(report)
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}

		io.Println(string(data))

		return nil
	}

	next := "none"
	if missed {
		next = formatInstant(missAt, now)
	}

	lines := []string{
		"tasks|" + strconv.Itoa(report.Tasks),
		"schedulable|" + yesNo(report.Schedulable),
		"schedulable (+" + formatSpan(buffer) + ")|" + yesNo(report.SchedulableBuffered),
		"missed tasks|" + yesNo(report.MissedTasks),
		"next missed deadline|" + next,
	}

	io.Println(columnize.SimpleFormat(lines))

	return nil
}

func warnMisses(io *IO, items []schedule.Item, now, missAt time.Time, missed bool) {
	for _, item := range schedule.Sort(items, now) {
		slack, ok := item.Laxity(now).Duration()
		if !ok || slack > 0 {
			break
		}

		io.Warn(fmt.Sprintf("task %s has no slack left (laxity %s)", item.ID, formatSpan(slack)),
			"start it now, reduce its scope or move its deadline")
	}

	if missed {
		io.Warn("deadline miss predicted at "+missAt.UTC().Format(time.RFC3339),
			"run wn ls and rearrange the most urgent tasks")
	}
}

func yesNo(ok bool) string {
	if ok {
		return "yes"
	}

	return "no"
}
