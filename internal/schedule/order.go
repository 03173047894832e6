package schedule

import (
	"slices"
	"strings"
	"time"
)

// Compare orders two items by urgency at t0: smaller laxity first, then
// smaller id. It returns 0 only when both items carry the same id.
func Compare(a, b *Item, t0 time.Time) int {
	if c := a.Laxity(t0).Compare(b.Laxity(t0)); c != 0 {
		return c
	}

	return strings.Compare(a.ID, b.ID)
}

// Sort returns a copy of items in urgency order at t0. The input slice is not
// modified.
func Sort(items []Item, t0 time.Time) []Item {
	sorted := slices.Clone(items)

	slices.SortFunc(sorted, func(a, b Item) int {
		return Compare(&a, &b, t0)
	})

	return sorted
}
