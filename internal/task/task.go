package task

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/calvinalkan/whatnext/internal/schedule"
	"gopkg.in/yaml.v3"
)

// Task is one task file: scheduling attributes in the frontmatter, a title
// heading and a free-form body.
type Task struct {
	SchemaVersion int
	ID            string
	Parent        string
	Accumulate    bool
	Created       time.Time
	Start         time.Time
	Due           time.Time
	WCET          time.Duration
	Actual        time.Duration
	Progress      float64
	Resumed       time.Time
	Suspended     bool
	Title         string
	Body          string
}

// frontmatter is the YAML shape of a task file header. Field order is the
// order written to disk.
type frontmatter struct {
	SchemaVersion int       `yaml:"schema_version"`
	ID            string    `yaml:"id"`
	Parent        string    `yaml:"parent,omitempty"`
	Accumulate    bool      `yaml:"accumulate,omitempty"`
	Created       time.Time `yaml:"created"`
	Start         time.Time `yaml:"start,omitempty"`
	Due           time.Time `yaml:"due,omitempty"`
	WCET          string    `yaml:"wcet"`
	Actual        string    `yaml:"actual"`
	Progress      float64   `yaml:"progress"`
	Resumed       time.Time `yaml:"resumed,omitempty"`
	Suspended     bool      `yaml:"suspended,omitempty"`
}

// ParseTask decodes a task file. The result is validated: durations parse,
// progress lies in [0, 1] and the title heading is present.
func ParseTask(content []byte) (*Task, error) {
	header, rest, err := splitFrontmatter(content)
	if err != nil {
		return nil, err
	}

	var fm frontmatter

	decoder := yaml.NewDecoder(bytes.NewReader(header))
	decoder.KnownFields(true)

	err = decoder.Decode(&fm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidFieldValue, err)
	}

	if fm.SchemaVersion == 0 {
		return nil, ErrMissingSchemaVersion
	}

	if fm.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSchemaVersion, fm.SchemaVersion)
	}

	if fm.ID == "" {
		return nil, fmt.Errorf("%w: id", errMissingField)
	}

	wcet, err := parseFieldDuration("wcet", fm.WCET)
	if err != nil {
		return nil, err
	}

	actual, err := parseFieldDuration("actual", fm.Actual)
	if err != nil {
		return nil, err
	}

	title, body, err := splitTitle(rest)
	if err != nil {
		return nil, err
	}

	task := &Task{
		SchemaVersion: fm.SchemaVersion,
		ID:            fm.ID,
		Parent:        fm.Parent,
		Accumulate:    fm.Accumulate,
		Created:       fm.Created,
		Start:         fm.Start,
		Due:           fm.Due,
		WCET:          wcet,
		Actual:        actual,
		Progress:      fm.Progress,
		Resumed:       fm.Resumed,
		Suspended:     fm.Suspended,
		Title:         title,
		Body:          body,
	}

	item := task.Item()

	err = item.Validate()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidFieldValue, err)
	}

	return task, nil
}

func parseFieldDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q", errInvalidFieldValue, field, value)
	}

	return d, nil
}

func splitFrontmatter(content []byte) ([]byte, []byte, error) {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")

	if !strings.HasPrefix(text, frontmatterDelimiter+"\n") {
		return nil, nil, errNoFrontmatter
	}

	text = text[len(frontmatterDelimiter)+1:]

	end := strings.Index(text, "\n"+frontmatterDelimiter+"\n")
	if end < 0 {
		if !strings.HasSuffix(text, "\n"+frontmatterDelimiter) {
			return nil, nil, errUnclosedFrontmatter
		}

		end = len(text) - len(frontmatterDelimiter) - 1
	}

	header := text[:end+1]

	rest := ""
	if after := end + len(frontmatterDelimiter) + 2; after < len(text) {
		rest = text[after:]
	}

	return []byte(header), []byte(rest), nil
}

func splitTitle(rest []byte) (string, string, error) {
	text := strings.TrimLeft(string(rest), "\n")

	line, body, _ := strings.Cut(text, "\n")
	if !strings.HasPrefix(line, "# ") {
		return "", "", errNoTitle
	}

	title := strings.TrimSpace(strings.TrimPrefix(line, "# "))
	if title == "" {
		return "", "", errNoTitle
	}

	return title, strings.TrimSpace(body), nil
}

// FormatTask renders a task as markdown with YAML frontmatter.
func FormatTask(task *Task) (string, error) {
	fm := frontmatter{
		SchemaVersion: task.SchemaVersion,
		ID:            task.ID,
		Parent:        task.Parent,
		Accumulate:    task.Accumulate,
		Created:       task.Created.UTC(),
		Start:         utcOrZero(task.Start),
		Due:           utcOrZero(task.Due),
		WCET:          task.WCET.String(),
		Actual:        task.Actual.String(),
		Progress:      task.Progress,
		Resumed:       utcOrZero(task.Resumed),
		Suspended:     task.Suspended,
	}

	if fm.SchemaVersion == 0 {
		fm.SchemaVersion = SchemaVersion
	}

	header, err := yaml.Marshal(&fm)
	if err != nil {
		return "", fmt.Errorf("encoding frontmatter: %w", err)
	}

	var builder strings.Builder

	builder.WriteString(frontmatterDelimiter + "\n")
	builder.Write(header)
	builder.WriteString(frontmatterDelimiter + "\n")
	builder.WriteString("# " + task.Title + "\n")

	if task.Body != "" {
		builder.WriteString("\n" + task.Body + "\n")
	}

	return builder.String(), nil
}

func utcOrZero(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}

	return t.UTC()
}

// Item returns the scheduling snapshot of the task.
func (t *Task) Item() schedule.Item {
	return schedule.Item{
		ID:        t.ID,
		Due:       t.Due,
		Start:     t.Start,
		WCET:      t.WCET,
		Actual:    t.Actual,
		Progress:  t.Progress,
		Resumed:   t.Resumed,
		Suspended: t.Suspended,
	}
}

// Node places the task in a work tree.
func (t *Task) Node() schedule.Node {
	return schedule.Node{
		Item:       t.Item(),
		Parent:     t.Parent,
		Accumulate: t.Accumulate,
	}
}

// ApplyItem copies the fields changed by the item lifecycle operations back
// into the task.
func (t *Task) ApplyItem(item *schedule.Item) {
	t.Actual = item.Actual
	t.Progress = item.Progress
	t.Resumed = item.Resumed
	t.Suspended = item.Suspended
}

// BuildForest links tasks into a work tree.
func BuildForest(tasks []*Task) (*schedule.Forest, error) {
	nodes := make([]schedule.Node, 0, len(tasks))
	for _, t := range tasks {
		nodes = append(nodes, t.Node())
	}

	forest, err := schedule.NewForest(nodes)
	if err != nil {
		return nil, fmt.Errorf("building task tree: %w", err)
	}

	return forest, nil
}
