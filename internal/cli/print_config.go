package cli

import (
	"context"
	"encoding/json"
	"fmt"

	flag "github.com/spf13/pflag"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(app *App) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration as JSON and which files it was loaded from.",
		Exec: func(_ context.Context, io *IO, _ []string) error {
			return execPrintConfig(io, app)
		},
	}
}

func execPrintConfig(io *IO, app *App) error {
	cfg := app.Config

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	io.Println(string(data))
	io.Println()
	io.Println("# effective_cwd=" + cfg.EffectiveCwd)
	io.Println("# task_dir=" + cfg.TaskDirAbs)
	io.Println("# sources")

	if cfg.Sources.Global == "" && cfg.Sources.Project == "" {
		io.Println("#   (defaults only)")

		return nil
	}

	if cfg.Sources.Global != "" {
		io.Println("#   global_config=" + cfg.Sources.Global)
	}

	if cfg.Sources.Project != "" {
		io.Println("#   project_config=" + cfg.Sources.Project)
	}

	return nil
}
