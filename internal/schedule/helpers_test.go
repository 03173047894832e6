package schedule_test

import (
	"fmt"
	"time"

	"github.com/calvinalkan/whatnext/internal/schedule"
	"pgregory.net/rapid"
)

// epoch is the reference instant "0" used throughout the tests.
var epoch = time.UnixMilli(0).UTC()

func at(offset time.Duration) time.Time {
	return epoch.Add(offset)
}

func ms(n int64) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// genItems draws small task sets with deadlines around epoch.
func genItems(maxLen int) *rapid.Generator[[]schedule.Item] {
	return rapid.Custom(func(t *rapid.T) []schedule.Item {
		n := rapid.IntRange(0, maxLen).Draw(t, "n")
		items := make([]schedule.Item, 0, n)

		for idx := range n {
			item := schedule.Item{
				ID:       fmt.Sprintf("t%02d", idx),
				WCET:     time.Duration(rapid.Int64Range(0, 50*60).Draw(t, "wcet")) * time.Minute,
				Progress: rapid.Float64Range(0, 1).Draw(t, "progress"),
			}

			if rapid.Bool().Draw(t, "hasDue") {
				item.Due = at(time.Duration(rapid.Int64Range(-10*60, 100*60).Draw(t, "due")) * time.Minute)
			}

			if rapid.Bool().Draw(t, "running") {
				item.Resumed = at(-time.Hour)
			}

			items = append(items, item)
		}

		return items
	})
}
