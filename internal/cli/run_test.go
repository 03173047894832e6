package cli_test

import (
	"strings"
	"testing"

	"github.com/calvinalkan/whatnext/internal/cli"
)

func Test_Invalid_Global_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, stderr, exitCode := c.Run("--invalid-flag", "ls")

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stdout, ""; got != want {
		t.Errorf("stdout=%q, want=%q", got, want)
	}

	cli.AssertContains(t, stderr, "unknown flag")
	cli.AssertContains(t, stderr, "--invalid-flag")
	cli.AssertContains(t, stderr, "Global flags:")
	cli.AssertContains(t, stderr, "--cwd")
	cli.AssertContains(t, stderr, "--config")
	cli.AssertContains(t, stderr, "--task-dir")
	cli.AssertContains(t, stderr, "--now")
}

func Test_Empty_Task_Dir_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("--task-dir=", "ls")

	cli.AssertContains(t, stderr, "task-dir cannot be empty")
	cli.AssertContains(t, stderr, "Global flags:")
}

func Test_Unknown_Command_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("frobnicate")

	cli.AssertContains(t, stderr, "unknown command: frobnicate")
	cli.AssertContains(t, stderr, "Commands:")
	cli.AssertContains(t, stderr, "check [flags]")
}

func Test_Usage_When_Invoked_Without_Command(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun()

	cli.AssertContains(t, stdout, "Usage: wn [global flags] <command> [args]")

	for _, name := range []string{"add", "ls", "show", "start", "stop", "done", "progress", "suspend", "unsuspend", "check", "blackouts", "print-config"} {
		cli.AssertContains(t, stdout, "  "+name)
	}
}

func Test_Command_Help_When_Invoked_With_Help_Flag(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("ls", "--help")

	cli.AssertContains(t, stdout, "Usage: wn ls [flags]")
	cli.AssertContains(t, stdout, "least-laxity-first")
	cli.AssertContains(t, stdout, "--json")
}

func Test_Command_Flag_Error_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("ls", "--bogus")

	cli.AssertContains(t, stderr, "error: unknown flag: --bogus")
	cli.AssertContains(t, stderr, "Usage: wn ls [flags]")
}

func Test_Invalid_Now_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("--now", "tomorrow", "ls")

	cli.AssertContains(t, stderr, "--now must be an RFC3339 timestamp")
}

func Test_Now_Flag_Overrides_Clock_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	id := c.MustRun("add", "Report", "--wcet", "1h", "--due", "2026-01-05T12:00:00Z")

	stdout := c.MustRun("--now", "2026-01-05T10:30:00Z", "show", id)

	cli.AssertContains(t, stdout, "# computed at 2026-01-05T10:30:00Z")
	cli.AssertContains(t, stdout, "laxity: 30m")
}

func Test_Debug_Logging_When_Env_Set(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.Env["WN_LOG_LEVEL"] = "debug"

	stdout, stderr, code := c.Run("ls")
	if code != 0 {
		t.Fatalf("exit=%d stderr=%s", code, stderr)
	}

	if stdout != "" {
		t.Errorf("stdout=%q, want empty", stdout)
	}

	cli.AssertContains(t, stderr, "[DEBUG]")
	cli.AssertContains(t, stderr, "loaded config")

	c.Env["WN_LOG_LEVEL"] = ""

	_, stderr, _ = c.Run("ls")
	cli.AssertNotContains(t, stderr, "[DEBUG]")
}

func Test_Command_Help_Goes_To_Stderr_Only_On_Flag_Error(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout, stderr, code := c.Run("check", "--help")
	if code != 0 || stderr != "" {
		t.Fatalf("--help: exit=%d stderr=%q", code, stderr)
	}

	cli.AssertContains(t, stdout, "Usage: wn check")
	cli.AssertContains(t, stdout, "--buffer")

	stdout, stderr, code = c.Run("check", "--bogus")
	if got, want := code, 1; got != want {
		t.Errorf("exit=%d, want=%d", got, want)
	}

	if got, want := stdout, ""; got != want {
		t.Errorf("stdout=%q, want=%q", got, want)
	}

	if !strings.HasPrefix(stderr, "error: unknown flag: --bogus\n\nUsage: wn check") {
		t.Errorf("stderr should be the error, a blank line, then help\n%s", stderr)
	}
}
