package task

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/natefinch/atomic"
	"golang.org/x/sync/errgroup"
)

const (
	dirPerms  = 0o750
	filePerms = 0o600
)

// listWorkers bounds how many task files are parsed at once.
const listWorkers = 16

// WriteTask writes a new task file into taskDir and returns its path. It
// fails if a file for the id already exists.
func WriteTask(taskDir string, task *Task) (string, error) {
	err := os.MkdirAll(taskDir, dirPerms)
	if err != nil {
		return "", fmt.Errorf("creating task directory: %w", err)
	}

	path := Path(taskDir, task.ID)

	_, err = os.Stat(path)
	if err == nil {
		return "", fmt.Errorf("%w: %s", ErrTaskFileExists, path)
	}

	content, err := FormatTask(task)
	if err != nil {
		return "", err
	}

	err = atomic.WriteFile(path, strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("writing task file: %w", err)
	}

	// atomic.WriteFile leaves new files with the temp file's mode.
	err = os.Chmod(path, filePerms)
	if err != nil {
		return "", fmt.Errorf("setting file permissions: %w", err)
	}

	return path, nil
}

// CreateTask assigns task a fresh id derived from now and writes it. Creates
// within the same second are serialized on a lock named after the base id.
func CreateTask(ctx context.Context, taskDir string, task *Task, now time.Time) (string, error) {
	if strings.TrimSpace(task.Title) == "" {
		return "", ErrTitleRequired
	}

	err := os.MkdirAll(taskDir, dirPerms)
	if err != nil {
		return "", fmt.Errorf("creating task directory: %w", err)
	}

	if task.Parent != "" && !Exists(taskDir, task.Parent) {
		return "", fmt.Errorf("%w: %s", ErrParentNotFound, task.Parent)
	}

	if task.Created.IsZero() {
		task.Created = now
	}

	if task.SchemaVersion == 0 {
		task.SchemaVersion = SchemaVersion
	}

	item := task.Item()
	item.ID = GenerateID(now)

	err = item.Validate()
	if err != nil {
		return "", err
	}

	var path string

	err = WithLock(ctx, Path(taskDir, item.ID), func() error {
		id, genErr := GenerateUniqueID(taskDir, now)
		if genErr != nil {
			return fmt.Errorf("generating unique id: %w", genErr)
		}

		task.ID = id

		var writeErr error

		path, writeErr = WriteTask(taskDir, task)

		return writeErr
	})
	if err != nil {
		return "", err
	}

	return path, nil
}

// ReadTask loads and parses the task with id.
func ReadTask(taskDir, id string) (*Task, error) {
	if id == "" {
		return nil, ErrIDRequired
	}

	path := Path(taskDir, id)

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}

		return nil, fmt.Errorf("reading task: %w", err)
	}

	task, err := ParseTask(content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return task, nil
}

// UpdateTask applies mutate to the task with id under the task's lock and
// writes the result back. When mutate returns an error nothing is written.
func UpdateTask(ctx context.Context, taskDir, id string, mutate func(task *Task) error) (*Task, error) {
	if id == "" {
		return nil, ErrIDRequired
	}

	path := Path(taskDir, id)
	if !Exists(taskDir, id) {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	var updated *Task

	err := WithTaskLock(ctx, path, func(content []byte) ([]byte, error) {
		task, err := ParseTask(content)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}

		err = mutate(task)
		if err != nil {
			return nil, err
		}

		item := task.Item()

		err = item.Validate()
		if err != nil {
			return nil, err
		}

		formatted, err := FormatTask(task)
		if err != nil {
			return nil, err
		}

		updated = task

		return []byte(formatted), nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Result holds the outcome of parsing one task file.
type Result struct {
	Task *Task
	Path string
	Err  error
}

// ListTasks parses every task file in taskDir in parallel. A missing
// directory yields no results. Parse failures are reported per file in
// [Result.Err]; only directory and context errors are returned.
func ListTasks(ctx context.Context, taskDir string, logger hclog.Logger) ([]Result, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	entries, err := os.ReadDir(taskDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("task directory missing", "dir", taskDir)

			return nil, nil
		}

		return nil, fmt.Errorf("reading task directory: %w", err)
	}

	paths := make([]string, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".md") {
			continue
		}

		paths = append(paths, filepath.Join(taskDir, name))
	}

	results := make([]Result, len(paths))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(listWorkers)

	for idx, path := range paths {
		group.Go(func() error {
			err := ctx.Err()
			if err != nil {
				return err
			}

			results[idx] = parseFile(path)

			if results[idx].Err != nil {
				logger.Debug("skipping task file", "path", path, "error", results[idx].Err)
			}

			return nil
		})
	}

	err = group.Wait()
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	logger.Trace("listed tasks", "dir", taskDir, "files", len(paths))

	return results, nil
}

func parseFile(path string) Result {
	content, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Err: fmt.Errorf("reading task: %w", err)}
	}

	task, err := ParseTask(content)
	if err != nil {
		return Result{Path: path, Err: err}
	}

	wantID := strings.TrimSuffix(filepath.Base(path), ".md")
	if task.ID != wantID {
		return Result{Path: path, Err: fmt.Errorf("%w: id %q does not match file name", errInvalidFieldValue, task.ID)}
	}

	return Result{Path: path, Task: task}
}
