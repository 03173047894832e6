package cli

import (
	"strings"
	"time"

	"github.com/calvinalkan/whatnext/internal/schedule"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/ryanuber/columnize"
)

// Time layout used in tables.
const tableTime = "2006-01-02 15:04 MST"

// table renders rows as aligned columns. Cells must not contain "|".
func table(header []string, rows [][]string) []string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(header, "|"))

	for _, row := range rows {
		lines = append(lines, strings.Join(row, "|"))
	}

	out := columnize.Format(lines, &columnize.Config{Delim: "|", Glue: "  "})

	return strings.Split(out, "\n")
}

// paint colors s when enabled. The color instance is local so concurrent
// runs with different settings do not interfere.
func paint(enabled bool, s string, attrs ...color.Attribute) string {
	if len(attrs) == 0 {
		return s
	}

	c := color.New(attrs...)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}

	return c.Sprint(s)
}

func urgencyAttrs(u schedule.Urgency) []color.Attribute {
	switch u {
	case schedule.UrgencyCritical:
		return []color.Attribute{color.FgRed, color.Bold}
	case schedule.UrgencyTight:
		return []color.Attribute{color.FgYellow}
	case schedule.UrgencyRelaxed:
		return []color.Attribute{color.FgGreen}
	default:
		return nil
	}
}

// formatInstant shows an absolute time and its distance from now.
func formatInstant(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.UTC().Format(tableTime) + " (" + relTime(t, now) + ")"
}

func relTime(t, now time.Time) string {
	if t.Equal(now) {
		return "now"
	}

	return humanize.RelTime(t, now, "ago", "from now")
}

// formatSpan rounds a duration to minutes for display.
func formatSpan(d time.Duration) string {
	rounded := d.Round(time.Minute)
	if rounded == 0 {
		return d.Round(time.Second).String()
	}

	return strings.TrimSuffix(rounded.String(), "0s")
}

func formatLaxity(l schedule.Laxity) string {
	slack, ok := l.Duration()
	if !ok {
		return l.String()
	}

	return formatSpan(slack)
}
