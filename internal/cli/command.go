package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command is one wn subcommand.
type Command struct {
	// Flags are parsed before Exec. A nil set accepts no flags.
	Flags *flag.FlagSet

	// Usage starts with the command name, e.g. "show <id>".
	Usage string

	// Short is listed in the global usage.
	Short string

	// Long replaces Short in the command's own help.
	Long string

	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name is the first word of Usage.
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")

	return name
}

// HelpLine is the command's row in the global usage.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-28s %s", c.Usage, c.Short)
}

// WriteHelp writes usage, description and flag defaults to w.
func (c *Command) WriteHelp(w io.Writer) {
	desc := c.Long
	if desc == "" {
		desc = c.Short
	}

	fprintln(w, "Usage: wn "+c.Usage)
	fprintln(w)
	fprintln(w, desc)

	if c.Flags == nil || !c.Flags.HasFlags() {
		return
	}

	fprintln(w)
	fprintln(w, "Flags:")
	_, _ = io.WriteString(w, c.Flags.FlagUsages())
}

// Run parses args and executes the command, returning the exit code.
// --help writes help to stdout. A bad flag is reported together with the
// help on stderr.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	rest, err := c.parse(args)

	switch {
	case errors.Is(err, flag.ErrHelp):
		c.WriteHelp(o.Out())

		return 0
	case err != nil:
		code := o.Fail(err)
		fprintln(o.errOut)
		c.WriteHelp(o.errOut)

		return code
	}

	err = c.Exec(ctx, o, rest)
	if err != nil {
		return o.Fail(err)
	}

	return o.Finish()
}

func (c *Command) parse(args []string) ([]string, error) {
	if c.Flags == nil {
		c.Flags = flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	}

	// pflag prints its own usage on error unless silenced.
	c.Flags.SetOutput(io.Discard)

	err := c.Flags.Parse(args)
	if err != nil {
		return nil, err
	}

	return c.Flags.Args(), nil
}
