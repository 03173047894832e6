package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/calvinalkan/whatnext/internal/task"

	flag "github.com/spf13/pflag"
)

var (
	errDueConflict  = errors.New("--due and --due-in cannot be used together")
	errInvalidTime  = errors.New("invalid timestamp (want RFC3339)")
	errNegativeWCET = errors.New("--wcet must not be negative")
)

// AddCmd returns the add command.
func AddCmd(app *App) *Command {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.String("due", "", "Deadline as RFC3339 timestamp")
	fs.Duration("due-in", 0, "Deadline relative to now (e.g. 36h)")
	fs.String("start", "", "Earliest start as RFC3339 timestamp (default now)")
	fs.Duration("wcet", 0, "Worst-case work estimate (e.g. 1h30m)")
	fs.String("parent", "", "Parent task ID")
	fs.Bool("accumulate", false, "Count the work of child tasks into this task")
	fs.StringP("description", "d", "", "Description text")

	return &Command{
		Flags: fs,
		Usage: "add <title> [flags]",
		Short: "Create a task",
		Long: `Create a task and print its ID.

Examples:
  wn add "Write report" --wcet 3h --due-in 48h
  wn add "Tax return" --wcet 6h --due 2026-05-31T23:59:00Z
  wn add Chapter --parent <id> --wcet 2h`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execAdd(ctx, io, app, fs, args)
		},
	}
}

func execAdd(ctx context.Context, io *IO, app *App, fs *flag.FlagSet, args []string) error {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return task.ErrTitleRequired
	}

	created := &task.Task{
		Title: title,
		Start: app.Now,
	}

	if fs.Changed("due") && fs.Changed("due-in") {
		return errDueConflict
	}

	dueText, _ := fs.GetString("due")
	if dueText != "" {
		due, err := parseTimestamp("--due", dueText)
		if err != nil {
			return err
		}

		created.Due = due
	}

	if fs.Changed("due-in") {
		dueIn, _ := fs.GetDuration("due-in")
		created.Due = app.Now.Add(dueIn)
	}

	startText, _ := fs.GetString("start")
	if startText != "" {
		start, err := parseTimestamp("--start", startText)
		if err != nil {
			return err
		}

		created.Start = start
	}

	created.WCET, _ = fs.GetDuration("wcet")
	if created.WCET < 0 {
		return errNegativeWCET
	}

	created.Parent, _ = fs.GetString("parent")
	created.Accumulate, _ = fs.GetBool("accumulate")
	created.Body, _ = fs.GetString("description")

	_, err := task.CreateTask(ctx, app.Config.TaskDirAbs, created, app.Now)
	if err != nil {
		return err
	}

	app.Logger.Debug("created task", "id", created.ID, "due", created.Due, "wcet", created.WCET)

	io.Println(created.ID)

	return nil
}

func parseTimestamp(flagName, value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w: %q", flagName, errInvalidTime, value)
	}

	return parsed, nil
}
