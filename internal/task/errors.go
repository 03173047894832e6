package task

import "errors"

// Frontmatter delimiter.
const frontmatterDelimiter = "---"

// SchemaVersion is the only task file schema this package reads and writes.
const SchemaVersion = 1

// Error variables for task operations.
var (
	ErrConfigFileNotFound       = errors.New("config file not found")
	ErrConfigFileRead           = errors.New("cannot read config file")
	ErrConfigInvalid            = errors.New("invalid config file")
	ErrTaskDirEmpty             = errors.New("task-dir cannot be empty")
	ErrIDGenerationFailed       = errors.New("no unique id after repeated attempts")
	ErrIDRequired               = errors.New("task ID is required")
	ErrTaskFileExists           = errors.New("task file already exists")
	ErrTaskNotFound             = errors.New("task not found")
	ErrTitleRequired            = errors.New("task title is required")
	ErrMissingSchemaVersion     = errors.New("missing required field: schema_version")
	ErrUnsupportedSchemaVersion = errors.New("unsupported schema_version")
	ErrParentNotFound           = errors.New("parent task not found")
	ErrInvalidDuration          = errors.New("invalid duration")
	ErrInvalidColor             = errors.New("color must be auto, always or never")
)

// Parse errors.
var (
	errMissingField        = errors.New("missing required field")
	errInvalidFieldValue   = errors.New("invalid field value")
	errNoFrontmatter       = errors.New("no frontmatter found")
	errUnclosedFrontmatter = errors.New("unclosed frontmatter")
	errNoTitle             = errors.New("no title found")
)
