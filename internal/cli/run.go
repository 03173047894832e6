package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/calvinalkan/whatnext/internal/task"
	"github.com/hashicorp/go-hclog"
	"github.com/mattn/go-isatty"

	flag "github.com/spf13/pflag"
)

// logLevelEnv selects the debug log level; logging is off when unset.
const logLevelEnv = "WN_LOG_LEVEL"

var (
	errUnknownCommand = errors.New("unknown command")
	errInvalidNow     = errors.New("--now must be an RFC3339 timestamp")
)

// App is what every command needs besides its own flags and arguments.
type App struct {
	Config *task.Config

	// Now is the reference instant for every scheduling decision of this
	// invocation.
	Now time.Time

	Logger hclog.Logger
	Color  bool
}

// Run is the main entry point. now is the wall clock instant captured by the
// caller; --now overrides it. Returns the exit code.
func Run(_ io.Reader, out, errOut io.Writer, args []string, env map[string]string, now time.Time, sigCh <-chan os.Signal) int {
	globals, err := parseGlobalFlags(args[min(1, len(args)):])
	if err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printGlobalUsage(errOut)

		return 1
	}

	if globals.help || len(globals.remaining) == 0 {
		printUsage(out, nil)

		return 0
	}

	if globals.now != "" {
		now, err = time.Parse(time.RFC3339, globals.now)
		if err != nil {
			fprintln(errOut, "error:", fmt.Errorf("%w: %q", errInvalidNow, globals.now))

			return 1
		}
	}

	if globals.taskDirSet && globals.taskDir == "" {
		fprintln(errOut, "error:", task.ErrTaskDirEmpty)
		fprintln(errOut)
		printGlobalUsage(errOut)

		return 1
	}

	cfg, err := task.LoadConfig(task.LoadConfigInput{
		WorkDirOverride: globals.workDir,
		ConfigPath:      globals.configPath,
		TaskDirOverride: globals.taskDir,
		Env:             env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printGlobalUsage(errOut)

		return 1
	}

	logger := newLogger(env, errOut)
	logger.Debug("loaded config", "task_dir", cfg.TaskDirAbs, "now", now.Format(time.RFC3339),
		"global", cfg.Sources.Global, "project", cfg.Sources.Project)

	app := &App{
		Config: &cfg,
		Now:    now,
		Logger: logger,
		Color:  useColor(cfg.Color, out, env),
	}

	commands := allCommands(app)

	name := globals.remaining[0]

	var cmd *Command

	for _, c := range commands {
		if c.Name() == name {
			cmd = c

			break
		}
	}

	if cmd == nil {
		fprintln(errOut, "error:", fmt.Errorf("%w: %s", errUnknownCommand, name))
		fprintln(errOut)
		printUsage(errOut, commands)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				logger.Debug("interrupted")
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	return cmd.Run(ctx, NewIO(out, errOut), globals.remaining[1:])
}

func allCommands(app *App) []*Command {
	return []*Command{
		AddCmd(app),
		LsCmd(app),
		ShowCmd(app),
		StartCmd(app),
		StopCmd(app),
		DoneCmd(app),
		ProgressCmd(app),
		SuspendCmd(app),
		UnsuspendCmd(app),
		CheckCmd(app),
		BlackoutsCmd(app),
		PrintConfigCmd(app),
	}
}

type globalFlags struct {
	workDir    string
	configPath string
	taskDir    string
	taskDirSet bool
	now        string
	help       bool
	remaining  []string
}

func newGlobalFlagSet(flags *globalFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("wn", flag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(io.Discard)
	fs.StringVarP(&flags.workDir, "cwd", "C", "", "Run as if started in `dir`")
	fs.StringVarP(&flags.configPath, "config", "c", "", "Use the specified config `file`")
	fs.StringVar(&flags.taskDir, "task-dir", "", "Override the task `dir`")
	fs.StringVar(&flags.now, "now", "", "Reference `time` (RFC3339) instead of the current time")
	fs.BoolVarP(&flags.help, "help", "h", false, "Show help")

	return fs
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	fs := newGlobalFlagSet(&flags)

	err := fs.Parse(args)
	if err != nil {
		return globalFlags{}, err
	}

	flags.taskDirSet = fs.Changed("task-dir")
	flags.remaining = fs.Args()

	return flags, nil
}

// newLogger returns a stderr logger at the level named by WN_LOG_LEVEL, or a
// logger that discards everything.
func newLogger(env map[string]string, errOut io.Writer) hclog.Logger {
	level := hclog.LevelFromString(env[logLevelEnv])
	if level == hclog.NoLevel {
		return hclog.NewNullLogger()
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "wn",
		Level:  level,
		Output: errOut,
	})
}

func useColor(mode string, out io.Writer, env map[string]string) bool {
	switch mode {
	case task.ColorAlways:
		return true
	case task.ColorNever:
		return false
	}

	if _, ok := env["NO_COLOR"]; ok {
		return false
	}

	f, ok := out.(*os.File)

	return ok && isatty.IsTerminal(f.Fd())
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printGlobalUsage(w io.Writer) {
	var flags globalFlags

	fprintln(w, "Global flags:")
	fprintln(w, strings.TrimRight(newGlobalFlagSet(&flags).FlagUsages(), "\n"))
}

func printUsage(w io.Writer, commands []*Command) {
	if commands == nil {
		commands = allCommands(&App{Config: &task.Config{}})
	}

	fprintln(w, `wn - least-laxity task ordering and deadline checks

Usage: wn [global flags] <command> [args]`)
	fprintln(w)
	printGlobalUsage(w)
	fprintln(w)
	fprintln(w, "Commands:")

	for _, c := range commands {
		fprintln(w, c.HelpLine())
	}
}
