package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/calvinalkan/whatnext/internal/schedule"
	"github.com/calvinalkan/whatnext/internal/task"

	flag "github.com/spf13/pflag"
)

var (
	errAlreadyRunning  = errors.New("task is already running")
	errNotRunning      = errors.New("task is not running")
	errNotSuspended    = errors.New("task is not suspended")
	errPercentRequired = errors.New("progress percentage is required")
	errInvalidPercent  = errors.New("progress must be a number between 0 and 100")
)

// updateItem runs change on the task's scheduling item under the task lock
// and stores the result.
func updateItem(ctx context.Context, app *App, id string, change func(item *schedule.Item) error) (*task.Task, error) {
	return task.UpdateTask(ctx, app.Config.TaskDirAbs, id, func(tk *task.Task) error {
		item := tk.Item()

		err := change(&item)
		if err != nil {
			return err
		}

		tk.ApplyItem(&item)

		return nil
	})
}

// StartCmd returns the start command.
func StartCmd(app *App) *Command {
	return &Command{
		Flags: flag.NewFlagSet("start", flag.ContinueOnError),
		Usage: "start <id>",
		Short: "Start working on a task",
		Long:  "Mark the task as running from now on. Also lifts a suspension.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if len(args) == 0 {
				return task.ErrIDRequired
			}

			_, err := updateItem(ctx, app, args[0], func(item *schedule.Item) error {
				if !item.Resume(app.Now) {
					return fmt.Errorf("%w: %s", errAlreadyRunning, item.ID)
				}

				return nil
			})
			if err != nil {
				return err
			}

			io.Println("Started", args[0])

			return nil
		},
	}
}

// StopCmd returns the stop command.
func StopCmd(app *App) *Command {
	fs := flag.NewFlagSet("stop", flag.ContinueOnError)
	fs.Bool("discard", false, "Stop without booking the time worked")

	return &Command{
		Flags: fs,
		Usage: "stop <id> [flags]",
		Short: "Stop working on a task and book the time",
		Long:  "Add the time since the task was started to its actual work time and mark it as no longer running.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if len(args) == 0 {
				return task.ErrIDRequired
			}

			discard, _ := fs.GetBool("discard")

			updated, err := updateItem(ctx, app, args[0], func(item *schedule.Item) error {
				stopAt := app.Now
				if discard {
					stopAt = item.Resumed
				}

				if !item.Stop(stopAt) {
					return fmt.Errorf("%w: %s", errNotRunning, item.ID)
				}

				return nil
			})
			if err != nil {
				return err
			}

			io.Printf("Stopped %s (actual %s)\n", args[0], formatSpan(updated.Actual))

			return nil
		},
	}
}

// DoneCmd returns the done command.
func DoneCmd(app *App) *Command {
	return &Command{
		Flags: flag.NewFlagSet("done", flag.ContinueOnError),
		Usage: "done <id>",
		Short: "Mark a task as complete",
		Long:  "Set progress to 100% and stop the task if it is running.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if len(args) == 0 {
				return task.ErrIDRequired
			}

			_, err := updateItem(ctx, app, args[0], func(item *schedule.Item) error {
				item.Complete(app.Now)

				return nil
			})
			if err != nil {
				return err
			}

			io.Println("Done", args[0])

			return nil
		},
	}
}

// ProgressCmd returns the progress command.
func ProgressCmd(app *App) *Command {
	return &Command{
		Flags: flag.NewFlagSet("progress", flag.ContinueOnError),
		Usage: "progress <id> <percent>",
		Short: "Set how much of a task is done",
		Long:  "Set the completed share of the task in percent (0-100). 99% and above counts as done.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if len(args) == 0 {
				return task.ErrIDRequired
			}

			if len(args) < 2 {
				return errPercentRequired
			}

			percent, err := strconv.ParseFloat(strings.TrimSuffix(args[1], "%"), 64)
			if err != nil || percent < 0 || percent > 100 {
				return fmt.Errorf("%w: %q", errInvalidPercent, args[1])
			}

			updated, err := updateItem(ctx, app, args[0], func(item *schedule.Item) error {
				return item.SetProgress(percent / 100)
			})
			if err != nil {
				return err
			}

			item := updated.Item()

			io.Printf("%s at %s%%, %s remaining\n", args[0],
				strconv.FormatFloat(percent, 'f', -1, 64), formatSpan(item.RemainingWork()))

			return nil
		},
	}
}

// SuspendCmd returns the suspend command.
func SuspendCmd(app *App) *Command {
	return &Command{
		Flags: flag.NewFlagSet("suspend", flag.ContinueOnError),
		Usage: "suspend <id>",
		Short: "Exclude a task from scheduling",
		Long:  "Suspended tasks are left out of ls and check. A running task is stopped and its time booked.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if len(args) == 0 {
				return task.ErrIDRequired
			}

			_, err := updateItem(ctx, app, args[0], func(item *schedule.Item) error {
				item.Stop(app.Now)
				item.Suspended = true

				return nil
			})
			if err != nil {
				return err
			}

			io.Println("Suspended", args[0])

			return nil
		},
	}
}

// UnsuspendCmd returns the unsuspend command.
func UnsuspendCmd(app *App) *Command {
	return &Command{
		Flags: flag.NewFlagSet("unsuspend", flag.ContinueOnError),
		Usage: "unsuspend <id>",
		Short: "Include a suspended task in scheduling again",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if len(args) == 0 {
				return task.ErrIDRequired
			}

			_, err := updateItem(ctx, app, args[0], func(item *schedule.Item) error {
				if !item.Suspended {
					return fmt.Errorf("%w: %s", errNotSuspended, item.ID)
				}

				item.Suspended = false

				return nil
			})
			if err != nil {
				return err
			}

			io.Println("Unsuspended", args[0])

			return nil
		},
	}
}
