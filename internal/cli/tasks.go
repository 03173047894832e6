package cli

import (
	"context"
	"fmt"

	"github.com/calvinalkan/whatnext/internal/schedule"
	"github.com/calvinalkan/whatnext/internal/task"
)

// taskSet is every readable task of the task directory linked into a tree.
type taskSet struct {
	forest *schedule.Forest
	byID   map[string]*task.Task
}

// loadTasks lists the task directory. Unreadable files become warnings and
// are left out of the tree.
func loadTasks(ctx context.Context, app *App, o *IO) (*taskSet, error) {
	results, err := task.ListTasks(ctx, app.Config.TaskDirAbs, app.Logger.Named("store"))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]*task.Task, 0, len(results))
	byID := make(map[string]*task.Task, len(results))

	for _, res := range results {
		if res.Err != nil {
			o.Warn(fmt.Sprintf("%s: %v", res.Path, res.Err), "fix the task file or delete it")

			continue
		}

		tasks = append(tasks, res.Task)
		byID[res.Task.ID] = res.Task
	}

	forest, err := task.BuildForest(tasks)
	if err != nil {
		return nil, err
	}

	return &taskSet{forest: forest, byID: byID}, nil
}
