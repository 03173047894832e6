package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// CLI runs commands against a temp directory in tests.
type CLI struct {
	t   *testing.T
	Dir string
	Env map[string]string

	// Now is passed as the caller's clock reading on every Run.
	Now time.Time
}

// NewCLI creates a new test CLI with a temp directory and a fixed clock at
// 2026-01-05 09:00 UTC.
func NewCLI(t *testing.T) *CLI {
	t.Helper()

	return &CLI{
		t:   t,
		Dir: t.TempDir(),
		Env: map[string]string{},
		Now: time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC),
	}
}

// Run executes the CLI with the given args and returns stdout, stderr, and exit code.
// Args should not include "wn" or "--cwd" - those are added automatically.
func (c *CLI) Run(args ...string) (string, string, int) {
	var outBuf, errBuf bytes.Buffer

	fullArgs := append([]string{"wn", "--cwd", c.Dir}, args...)
	code := Run(nil, &outBuf, &errBuf, fullArgs, c.Env, c.Now, nil)

	return outBuf.String(), errBuf.String(), code
}

// MustRun executes the CLI and fails the test if the command returns non-zero.
// Returns trimmed stdout on success.
func (c *CLI) MustRun(args ...string) string {
	c.t.Helper()

	stdout, stderr, code := c.Run(args...)
	if code != 0 {
		c.t.Fatalf("command %v failed with exit code %d\nstderr: %s", args, code, stderr)
	}

	return strings.TrimSpace(stdout)
}

// MustFail executes the CLI and fails the test if the command succeeds.
// Also fails if stdout is not empty. Returns trimmed stderr.
func (c *CLI) MustFail(args ...string) string {
	c.t.Helper()

	stdout, stderr, code := c.Run(args...)
	if code == 0 {
		c.t.Fatalf("command %v should have failed but succeeded\nstdout: %s", args, stdout)
	}

	if stdout != "" {
		c.t.Fatalf("command %v failed but stdout should be empty\nstdout: %s", args, stdout)
	}

	return strings.TrimSpace(stderr)
}

// TaskDir returns the path to the default .tasks directory.
func (c *CLI) TaskDir() string {
	return filepath.Join(c.Dir, ".tasks")
}

// ReadTask returns the content of a task file.
func (c *CLI) ReadTask(id string) string {
	c.t.Helper()

	content, err := os.ReadFile(filepath.Join(c.TaskDir(), id+".md"))
	if err != nil {
		c.t.Fatalf("failed to read task %s: %v", id, err)
	}

	return string(content)
}

// WriteFile writes content to a path relative to the CLI directory.
func (c *CLI) WriteFile(rel, content string) {
	c.t.Helper()

	path := filepath.Join(c.Dir, rel)

	err := os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		c.t.Fatalf("failed to create dir for %s: %v", rel, err)
	}

	err = os.WriteFile(path, []byte(content), 0o600)
	if err != nil {
		c.t.Fatalf("failed to write %s: %v", rel, err)
	}
}

// AssertContains fails the test if content doesn't contain substr.
func AssertContains(t *testing.T, content, substr string) {
	t.Helper()

	if !strings.Contains(content, substr) {
		t.Errorf("content should contain %q\ncontent:\n%s", substr, content)
	}
}

// AssertNotContains fails the test if content contains substr.
func AssertNotContains(t *testing.T, content, substr string) {
	t.Helper()

	if strings.Contains(content, substr) {
		t.Errorf("content should NOT contain %q\ncontent:\n%s", substr, content)
	}
}
