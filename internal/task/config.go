package task

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/calvinalkan/whatnext/internal/schedule"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/go-set/v3"
	"github.com/tailscale/hujson"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds all configuration options.
type Config struct {
	TaskDir   string           `json:"task_dir"`
	Buffer    *Duration        `json:"buffer,omitempty"`
	Blackouts []BlackoutConfig `json:"blackouts,omitempty"`
	Color     string           `json:"color,omitempty"`

	// Resolved paths (computed, not serialized)
	EffectiveCwd string `json:"-"`
	TaskDirAbs   string `json:"-"`

	// Sources tracks which config files were loaded (for diagnostics)
	Sources ConfigSources `json:"-"`
}

// BlackoutConfig describes a recurring blackout in a config file.
type BlackoutConfig struct {
	Name       string    `json:"name"`
	FirstStart time.Time `json:"first_start"`
	Duration   Duration  `json:"duration"`
	Period     Duration  `json:"period"`
	Order      int       `json:"order,omitempty"`
}

// Duration is a time.Duration written as a Go duration string ("1h30m") in
// JSON.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var text string

	err := json.Unmarshal(data, &text)
	if err != nil {
		return fmt.Errorf("%w: want a string like \"1h30m\"", ErrInvalidDuration)
	}

	parsed, err := time.ParseDuration(text)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDuration, text)
	}

	*d = Duration(parsed)

	return nil
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		TaskDir: ".tasks",
		Color:   ColorAuto,
	}
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".wn.json"

// BufferDuration is the configured gap charged after every task in the
// buffered feasibility check.
func (c *Config) BufferDuration() time.Duration {
	if c.Buffer == nil {
		return 0
	}

	return time.Duration(*c.Buffer)
}

// ScheduleBlackouts converts the configured blackouts. Every invalid entry is
// reported, not just the first.
func (c *Config) ScheduleBlackouts() ([]schedule.Blackout, error) {
	var (
		merr  *multierror.Error
		names = set.New[string](len(c.Blackouts))
	)

	blackouts := make([]schedule.Blackout, 0, len(c.Blackouts))

	for idx, bc := range c.Blackouts {
		label := bc.Name
		if label == "" {
			label = fmt.Sprintf("#%d", idx+1)
		} else if !names.Insert(bc.Name) {
			merr = multierror.Append(merr, fmt.Errorf("blackout %s: duplicate name", label))
		}

		if bc.FirstStart.IsZero() {
			merr = multierror.Append(merr, fmt.Errorf("blackout %s: first_start is required", label))

			continue
		}

		b, err := schedule.NewBlackout(bc.FirstStart, time.Duration(bc.Duration), time.Duration(bc.Period), bc.Order)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("blackout %s: %w", label, err))

			continue
		}

		blackouts = append(blackouts, b)
	}

	if merr != nil {
		merr.ErrorFormat = listFormat

		return nil, merr
	}

	return blackouts, nil
}

// listFormat joins errors on one line for CLI output.
func listFormat(es []error) string {
	msgs := make([]string, len(es))
	for i, err := range es {
		msgs[i] = err.Error()
	}

	return strings.Join(msgs, "; ")
}

// getGlobalConfigPath returns $XDG_CONFIG_HOME/wn/config.json if set, otherwise
// ~/.config/wn/config.json. Empty if neither variable is set.
func getGlobalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "wn", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "wn", "config.json")
	}

	return ""
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	TaskDirOverride string            // --task-dir flag value; empty means no override
	Env             map[string]string // environment variables
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/wn/config.json or $XDG_CONFIG_HOME/wn/config.json)
// 3. Project config file at default location (.wn.json, if exists)
// 4. Explicit config file via ConfigPath (replaces the project file)
// 5. CLI overrides.
func LoadConfig(input LoadConfigInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := DefaultConfig()

	globalCfg, globalPath, err := loadGlobalConfig(input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalPath
	cfg = mergeConfig(cfg, globalCfg)

	projectCfg, projectPath, err := loadProjectConfig(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectPath
	cfg = mergeConfig(cfg, projectCfg)

	if input.TaskDirOverride != "" {
		cfg.TaskDir = input.TaskDirOverride
	}

	err = validateConfig(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}

	cfg.EffectiveCwd = workDir

	if filepath.IsAbs(cfg.TaskDir) {
		cfg.TaskDirAbs = cfg.TaskDir
	} else {
		cfg.TaskDirAbs = filepath.Join(workDir, cfg.TaskDir)
	}

	return cfg, nil
}

func loadGlobalConfig(env map[string]string) (Config, string, error) {
	path := getGlobalConfigPath(env)
	if path == "" {
		return Config{}, "", nil
	}

	cfg, explicitEmpty, loaded, err := loadConfigFile(path, false)
	if err != nil || !loaded {
		return Config{}, "", err
	}

	if explicitEmpty {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, ErrTaskDirEmpty)
	}

	return cfg, path, nil
}

// loadProjectConfig loads the project config file (.wn.json) or an explicit
// config file, which must exist.
func loadProjectConfig(workDir, configPath string) (Config, string, error) {
	cfgFile := filepath.Join(workDir, ConfigFileName)
	mustExist := false

	if configPath != "" {
		cfgFile = configPath
		if !filepath.IsAbs(cfgFile) {
			cfgFile = filepath.Join(workDir, cfgFile)
		}

		mustExist = true

		_, statErr := os.Stat(cfgFile)
		if statErr != nil {
			return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}
	}

	cfg, explicitEmpty, loaded, err := loadConfigFile(cfgFile, mustExist)
	if err != nil || !loaded {
		return Config{}, "", err
	}

	if explicitEmpty {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, cfgFile, ErrTaskDirEmpty)
	}

	return cfg, cfgFile, nil
}

// loadConfigFile reads and parses one config file. Missing optional files are
// not an error. The bool results report whether task_dir was explicitly set to
// "" and whether a file was loaded.
func loadConfigFile(path string, mustExist bool) (Config, bool, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if mustExist {
			return Config{}, false, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
		}

		return Config{}, false, false, nil
	}

	cfg, explicitEmpty, err := parseConfig(data)
	if err != nil {
		return Config{}, false, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, explicitEmpty, true, nil
}

func parseConfig(data []byte) (Config, bool, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	err = json.Unmarshal(standardized, &cfg)
	if err != nil {
		return Config{}, false, fmt.Errorf("invalid JSON: %w", err)
	}

	var raw map[string]json.RawMessage

	_ = json.Unmarshal(standardized, &raw)

	explicitEmpty := false
	if val, ok := raw["task_dir"]; ok && string(val) == `""` {
		explicitEmpty = true
	}

	return cfg, explicitEmpty, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.TaskDir != "" {
		base.TaskDir = overlay.TaskDir
	}

	if overlay.Buffer != nil {
		base.Buffer = overlay.Buffer
	}

	if overlay.Blackouts != nil {
		base.Blackouts = overlay.Blackouts
	}

	if overlay.Color != "" {
		base.Color = overlay.Color
	}

	return base
}

func validateConfig(cfg *Config) error {
	if cfg.TaskDir == "" {
		return ErrTaskDirEmpty
	}

	if cfg.BufferDuration() < 0 {
		return fmt.Errorf("%w: buffer must not be negative", ErrInvalidDuration)
	}

	switch cfg.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidColor, cfg.Color)
	}

	_, err := cfg.ScheduleBlackouts()

	return err
}
