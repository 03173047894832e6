package task_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/calvinalkan/whatnext/internal/task"
	"github.com/calvinalkan/whatnext/internal/testutil"
	"github.com/hashicorp/go-hclog"
)

func TestCreateAndReadTask(t *testing.T) {
	t.Parallel()

	taskDir := filepath.Join(t.TempDir(), ".tasks")
	clock := testutil.NewClock()
	now := clock.Now()

	created := &task.Task{Title: "Write report", WCET: 2 * time.Hour, Due: now.Add(24 * time.Hour)}

	path, err := task.CreateTask(context.Background(), taskDir, created, now)
	if err != nil {
		t.Fatalf("CreateTask()=%v", err)
	}

	if got, want := path, task.Path(taskDir, task.GenerateID(now)); got != want {
		t.Errorf("path=%s, want=%s", got, want)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	if got, want := info.Mode().Perm(), os.FileMode(0o600); got != want {
		t.Errorf("mode=%v, want=%v", got, want)
	}

	read, err := task.ReadTask(taskDir, created.ID)
	if err != nil {
		t.Fatalf("ReadTask()=%v", err)
	}

	if got, want := read.Title, "Write report"; got != want {
		t.Errorf("Title=%q, want=%q", got, want)
	}

	if !read.Created.Equal(now) {
		t.Errorf("Created=%s, want=%s", read.Created, now)
	}

	second := &task.Task{Title: "Same second"}

	_, err = task.CreateTask(context.Background(), taskDir, second, now)
	if err != nil {
		t.Fatalf("CreateTask()=%v", err)
	}

	if got, want := second.ID, created.ID+"a"; got != want {
		t.Errorf("second id=%s, want=%s", got, want)
	}
}

func TestCreateTaskValidates(t *testing.T) {
	t.Parallel()

	taskDir := t.TempDir()
	now := testutil.NewClock().Now()

	_, err := task.CreateTask(context.Background(), taskDir, &task.Task{Title: " "}, now)
	if !errors.Is(err, task.ErrTitleRequired) {
		t.Errorf("CreateTask(no title)=%v, want ErrTitleRequired", err)
	}

	_, err = task.CreateTask(context.Background(), taskDir, &task.Task{Title: "x", Parent: "nope"}, now)
	if !errors.Is(err, task.ErrParentNotFound) {
		t.Errorf("CreateTask(bad parent)=%v, want ErrParentNotFound", err)
	}

	_, err = task.CreateTask(context.Background(), taskDir, &task.Task{Title: "x", WCET: -time.Hour}, now)
	if err == nil {
		t.Error("CreateTask(negative wcet) succeeded")
	}
}

func TestReadTaskNotFound(t *testing.T) {
	t.Parallel()

	_, err := task.ReadTask(t.TempDir(), "missing")
	if !errors.Is(err, task.ErrTaskNotFound) {
		t.Errorf("ReadTask()=%v, want ErrTaskNotFound", err)
	}

	_, err = task.ReadTask(t.TempDir(), "")
	if !errors.Is(err, task.ErrIDRequired) {
		t.Errorf("ReadTask(\"\")=%v, want ErrIDRequired", err)
	}
}

func TestUpdateTask(t *testing.T) {
	t.Parallel()

	taskDir := t.TempDir()
	clock := testutil.NewClock()

	created := &task.Task{Title: "Work", WCET: time.Hour}

	_, err := task.CreateTask(context.Background(), taskDir, created, clock.Now())
	if err != nil {
		t.Fatalf("CreateTask()=%v", err)
	}

	startedAt := clock.Advance(time.Minute)

	_, err = task.UpdateTask(context.Background(), taskDir, created.ID, func(tk *task.Task) error {
		item := tk.Item()
		item.Resume(startedAt)
		tk.ApplyItem(&item)

		return nil
	})
	if err != nil {
		t.Fatalf("UpdateTask(start)=%v", err)
	}

	stoppedAt := clock.Advance(20 * time.Minute)

	updated, err := task.UpdateTask(context.Background(), taskDir, created.ID, func(tk *task.Task) error {
		item := tk.Item()
		item.Stop(stoppedAt)
		tk.ApplyItem(&item)

		return nil
	})
	if err != nil {
		t.Fatalf("UpdateTask(stop)=%v", err)
	}

	if got, want := updated.Actual, 20*time.Minute; got != want {
		t.Errorf("Actual=%s, want=%s", got, want)
	}

	read, err := task.ReadTask(taskDir, created.ID)
	if err != nil {
		t.Fatalf("ReadTask()=%v", err)
	}

	if got, want := read.Actual, 20*time.Minute; got != want {
		t.Errorf("stored Actual=%s, want=%s", got, want)
	}
}

func TestUpdateTaskErrorLeavesFileUntouched(t *testing.T) {
	t.Parallel()

	taskDir := t.TempDir()
	created := &task.Task{Title: "Keep", WCET: time.Hour}

	path, err := task.CreateTask(context.Background(), taskDir, created, testutil.NewClock().Now())
	if err != nil {
		t.Fatalf("CreateTask()=%v", err)
	}

	before, _ := os.ReadFile(path)

	errStop := errors.New("stop here")

	_, err = task.UpdateTask(context.Background(), taskDir, created.ID, func(tk *task.Task) error {
		tk.Title = "Changed"

		return errStop
	})
	if !errors.Is(err, errStop) {
		t.Fatalf("UpdateTask()=%v, want errStop", err)
	}

	_, err = task.UpdateTask(context.Background(), taskDir, created.ID, func(tk *task.Task) error {
		tk.Progress = 2

		return nil
	})
	if err == nil {
		t.Fatal("UpdateTask(progress=2) succeeded")
	}

	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Errorf("file changed:\nbefore:\n%s\nafter:\n%s", before, after)
	}
}

func TestListTasks(t *testing.T) {
	t.Parallel()

	taskDir := t.TempDir()
	clock := testutil.NewClock()

	for _, title := range []string{"one", "two", "three"} {
		_, err := task.CreateTask(context.Background(), taskDir, &task.Task{Title: title, WCET: time.Hour}, clock.Next())
		if err != nil {
			t.Fatalf("CreateTask()=%v", err)
		}
	}

	err := os.WriteFile(filepath.Join(taskDir, "broken.md"), []byte("not a task\n"), 0o600)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	err = os.WriteFile(filepath.Join(taskDir, "notes.txt"), []byte("ignored\n"), 0o600)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	results, err := task.ListTasks(context.Background(), taskDir, hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("ListTasks()=%v", err)
	}

	if got, want := len(results), 4; got != want {
		t.Fatalf("len(results)=%d, want=%d", got, want)
	}

	var titles []string

	failed := 0

	for _, res := range results {
		if res.Err != nil {
			failed++

			if !strings.HasSuffix(res.Path, "broken.md") {
				t.Errorf("unexpected failure for %s: %v", res.Path, res.Err)
			}

			continue
		}

		titles = append(titles, res.Task.Title)
	}

	if got, want := strings.Join(titles, ","), "one,two,three"; got != want {
		t.Errorf("titles=%s, want=%s", got, want)
	}

	if failed != 1 {
		t.Errorf("failed=%d, want 1", failed)
	}
}

func TestListTasksMissingDir(t *testing.T) {
	t.Parallel()

	results, err := task.ListTasks(context.Background(), filepath.Join(t.TempDir(), "nope"), nil)
	if err != nil {
		t.Fatalf("ListTasks()=%v", err)
	}

	if len(results) != 0 {
		t.Errorf("len(results)=%d, want 0", len(results))
	}
}

func TestListTasksRejectsMismatchedID(t *testing.T) {
	t.Parallel()

	taskDir := t.TempDir()
	content := "---\nschema_version: 1\nid: other\ncreated: 2026-10-19T08:00:00Z\nwcet: 1h\nactual: 0s\nprogress: 0\n---\n# T\n"

	err := os.WriteFile(filepath.Join(taskDir, "mine.md"), []byte(content), 0o600)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	results, err := task.ListTasks(context.Background(), taskDir, nil)
	if err != nil {
		t.Fatalf("ListTasks()=%v", err)
	}

	if len(results) != 1 || results[0].Err == nil {
		t.Errorf("results=%+v, want one failure", results)
	}
}
