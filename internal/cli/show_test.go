package cli_test

import (
	"strings"
	"testing"

	"github.com/calvinalkan/whatnext/internal/cli"
)

func Test_Show_Prints_File_And_Computed_Values_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	id := c.MustRun("add", "Write report", "--wcet", "3h", "--due-in", "4h", "-d", "Numbers for Q4.")

	stdout := c.MustRun("show", id)

	if !strings.HasPrefix(stdout, c.ReadTask(id)) {
		t.Errorf("show should start with the task file\n%s", stdout)
	}

	cli.AssertContains(t, stdout, "# computed at 2026-01-05T09:00:00Z")
	cli.AssertContains(t, stdout, "state: ready")
	cli.AssertContains(t, stdout, "remaining: 3h0m")
	cli.AssertContains(t, stdout, "laxity: 1h0m")
	cli.AssertContains(t, stdout, "urgency: critical")
	cli.AssertNotContains(t, stdout, "working:")
	cli.AssertNotContains(t, stdout, "children:")
}

func Test_Show_States_Over_Time_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	id := c.MustRun("add", "Later", "--wcet", "1h", "--start", "2026-01-05T12:00:00Z", "--due", "2026-01-05T18:00:00Z")

	tests := []struct {
		now   string
		state string
	}{
		{now: "2026-01-05T09:00:00Z", state: "future"},
		{now: "2026-01-05T12:00:00Z", state: "ready"},
		{now: "2026-01-05T18:00:00Z", state: "overdue"},
	}

	for _, tt := range tests {
		stdout := c.MustRun("--now", tt.now, "show", id)
		cli.AssertContains(t, stdout, "state: "+tt.state+"\n")
	}
}

func Test_Show_Aggregates_Accumulating_Task_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	parent := c.MustRun("add", "Book", "--accumulate", "--due-in", "24h")
	first := c.MustRun("add", "Chapter 1", "--parent", parent, "--wcet", "2h")
	second := c.MustRun("add", "Chapter 2", "--parent", parent, "--wcet", "2h")

	c.MustRun("done", first)

	stdout := c.MustRun("show", parent)

	cli.AssertContains(t, stdout, "remaining: 2h0m")
	cli.AssertContains(t, stdout, "laxity: 22h0m")
	cli.AssertContains(t, stdout, "children: "+first+", "+second)

	cli.AssertContains(t, c.MustRun("show", second), "remaining: 2h0m")
}
