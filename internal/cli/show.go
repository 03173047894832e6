package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/calvinalkan/whatnext/internal/schedule"
	"github.com/calvinalkan/whatnext/internal/task"

	flag "github.com/spf13/pflag"
)

// ShowCmd returns the show command.
func ShowCmd(app *App) *Command {
	return &Command{
		Flags: flag.NewFlagSet("show", flag.ContinueOnError),
		Usage: "show <id>",
		Short: "Show a task with its computed schedule values",
		Long: `Print the task file followed by values computed at the reference time:
state, remaining work, laxity and urgency. For tasks created with
--accumulate the values include all children.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if len(args) == 0 {
				return task.ErrIDRequired
			}

			return execShow(ctx, io, app, args[0])
		},
	}
}

func execShow(ctx context.Context, io *IO, app *App, id string) error {
	_, err := task.ReadTask(app.Config.TaskDirAbs, id)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(task.Path(app.Config.TaskDirAbs, id))
	if err != nil {
		return fmt.Errorf("reading task: %w", err)
	}

	set, err := loadTasks(ctx, app, io)
	if err != nil {
		return err
	}

	item, err := set.forest.Aggregate(id)
	if err != nil {
		return err
	}

	children, err := set.forest.Children(id)
	if err != nil {
		return err
	}

	io.Printf("%s", content)
	io.Println()
	io.Println("# computed at", app.Now.UTC().Format(time.RFC3339))

	for _, line := range computedLines(&item, children, app.Now) {
		io.Println(line)
	}

	return nil
}

func computedLines(item *schedule.Item, children []string, now time.Time) []string {
	lines := []string{
		"state: " + item.State(now).String(),
		"remaining: " + formatSpan(item.RemainingWork()),
		"laxity: " + formatLaxity(item.Laxity(now)),
		"urgency: " + schedule.ClassifySlack(item, now).String(),
	}

	if item.IsRunning() {
		lines = append(lines, "working: "+formatSpan(item.WorkingTime(now)))
	}

	if len(children) > 0 {
		lines = append(lines, "children: "+strings.Join(children, ", "))
	}

	return lines
}
