package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/calvinalkan/whatnext/internal/schedule"

	flag "github.com/spf13/pflag"
)

var errNegativeLimit = errors.New("--limit must be non-negative")

// LsCmd returns the ls command.
func LsCmd(app *App) *Command {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.Bool("all", false, "Include done, suspended and folded child tasks")
	fs.Bool("json", false, "Output as JSON array")
	fs.Int("limit", 0, "Maximum tasks to show (0 = no limit)")

	return &Command{
		Flags: fs,
		Usage: "ls [flags]",
		Short: "List tasks, most urgent first",
		Long: `List tasks in least-laxity-first order.

Laxity is the time left until the deadline minus the remaining work. Tasks
without a deadline follow all tasks that have one; done tasks come last.

Children of a task created with --accumulate are folded into it and only
shown with --all. Suspended and done tasks are also only shown with --all.`,
		Exec: func(ctx context.Context, io *IO, _ []string) error {
			all, _ := fs.GetBool("all")
			jsonOutput, _ := fs.GetBool("json")
			limit, _ := fs.GetInt("limit")

			return execLs(ctx, io, app, all, jsonOutput, limit)
		},
	}
}

// taskRow is one listed task, also its JSON representation.
type taskRow struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Parent    string `json:"parent,omitempty"`
	State     string `json:"state"`
	Due       string `json:"due,omitempty"`
	Remaining string `json:"remaining"`
	Laxity    string `json:"laxity"`
	Urgency   string `json:"urgency"`

	urgency schedule.Urgency
	due     time.Time
}

func execLs(ctx context.Context, io *IO, app *App, all, jsonOutput bool, limit int) error {
	if limit < 0 {
		return errNegativeLimit
	}

	set, err := loadTasks(ctx, app, io)
	if err != nil {
		return err
	}

	var items []schedule.Item
	if all {
		items = set.forest.Items()
	} else {
		items = set.forest.Schedulable(app.Now)
	}

	items = schedule.Sort(items, app.Now)

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	rows := make([]taskRow, 0, len(items))

	for idx := range items {
		item := &items[idx]
		tk := set.byID[item.ID]

		row := taskRow{
			ID:        item.ID,
			Title:     tk.Title,
			Parent:    tk.Parent,
			State:     item.State(app.Now).String(),
			Remaining: formatSpan(item.RemainingWork()),
			Laxity:    formatLaxity(item.Laxity(app.Now)),
			urgency:   schedule.ClassifySlack(item, app.Now),
			due:       item.Due,
		}

		row.Urgency = row.urgency.String()

		if item.HasDue() {
			row.Due = item.Due.UTC().Format(time.RFC3339)
		}

		if item.Suspended {
			row.State += ",suspended"
		}

		rows = append(rows, row)
	}

	if jsonOutput {
		data, err := json.Marshal(rows)
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}

		io.Println(string(data))

		return nil
	}

	if len(rows) == 0 {
		io.ErrPrintln("no tasks")

		return nil
	}

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, []string{
			row.ID, row.State, formatInstant(row.due, app.Now), row.Remaining, row.Laxity, row.Urgency, row.Title,
		})
	}

	lines := table([]string{"ID", "STATE", "DUE", "REMAINING", "LAXITY", "URGENCY", "TITLE"}, cells)

	io.Println(lines[0])

	for idx, line := range lines[1:] {
		io.Println(paint(app.Color, line, urgencyAttrs(rows[idx].urgency)...))
	}

	return nil
}
