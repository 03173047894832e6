package schedule

import (
	"slices"
	"time"
)

// IsSchedulable reports whether a single worker processing items in urgency
// order from t0 finishes every item by its deadline. Blackouts are not
// considered. Done items need no capacity and are skipped.
func IsSchedulable(items []Item, t0 time.Time) bool {
	return IsSchedulableBuffered(items, t0, 0)
}

// IsSchedulableBuffered is IsSchedulable with a fixed overhead charged after
// every item, e.g. to model switching cost between tasks. A negative buffer
// counts as zero.
func IsSchedulableBuffered(items []Item, t0 time.Time, buffer time.Duration) bool {
	buffer = max(buffer, 0)

	var scheduled time.Duration

	for _, item := range Sort(items, t0) {
		if item.State(t0) == Done {
			continue
		}

		work := item.RemainingWork()

		if item.HasDue() && addSat(scheduled, work) > item.Due.Sub(t0) {
			return false
		}

		scheduled = addSat(addSat(scheduled, work), buffer)
	}

	return true
}

// HasMissedTasks is a quick necessary check: it reports whether the most
// urgent item has no slack left at t0. An empty set has missed nothing.
func HasMissedTasks(items []Item, t0 time.Time) bool {
	head, ok := mostUrgent(items, t0)
	if !ok {
		return false
	}

	slack, finite := head.Laxity(t0).Duration()

	return finite && slack <= 0
}

func mostUrgent(items []Item, t0 time.Time) (Item, bool) {
	if len(items) == 0 {
		return Item{}, false
	}

	return slices.MinFunc(items, func(a, b Item) int {
		return Compare(&a, &b, t0)
	}), true
}

// pending is an item's remaining work as tracked by the simulation.
type pending struct {
	due       time.Time
	hasDue    bool
	remaining time.Duration
}

// NextMissedDeadline simulates a single worker from t0 that always works on
// the most urgent unfinished item and does nothing while a blackout is active.
// It returns the start of the work window in which a deadline becomes
// unreachable, and true. If every item finishes in time it returns the zero
// time and false.
//
// The urgency order is fixed at the (possibly blackout-adjusted) start
// instant. Blackouts must be disjoint; overlapping ones are not merged, and
// each is then handled as if the others did not exist.
func NextMissedDeadline(items []Item, t0 time.Time, blackouts []Blackout) (time.Time, bool) {
	active := make([]Blackout, 0, len(blackouts))

	for _, b := range blackouts {
		if b.blocks() {
			active = append(active, b)
		}
	}

	now := t0

	for _, b := range active {
		if b.IsActive(now) {
			now = b.NextEnd(now)

			break
		}
	}

	// Zero slack is still exactly feasible, so only an already negative slack
	// short-circuits. HasMissedTasks is stricter.
	if head, ok := mostUrgent(items, now); ok {
		if slack, finite := head.Laxity(now).Duration(); finite && slack < 0 {
			return now, true
		}
	}

	queue := pendingQueue(items, now)

	cursor := 0
	for cursor < len(queue) {
		window, windowEnd, bounded := nextWindow(active, now)

		var used time.Duration

		for (!bounded || window > 0) && cursor < len(queue) {
			head := &queue[cursor]

			if head.hasDue && addSat(used, head.remaining) > head.due.Sub(now) {
				return now, true
			}

			if !bounded || head.remaining <= window {
				used = addSat(used, head.remaining)

				if bounded {
					window -= head.remaining
				}

				cursor++

				continue
			}

			head.remaining -= window
			used += window
			window = 0
		}

		if bounded {
			now = windowEnd
		}
	}

	return time.Time{}, false
}

// pendingQueue returns the unfinished items in urgency order at t0.
func pendingQueue(items []Item, t0 time.Time) []pending {
	sorted := Sort(items, t0)
	queue := make([]pending, 0, len(sorted))

	for _, item := range sorted {
		if item.State(t0) == Done {
			continue
		}

		queue = append(queue, pending{
			due:       item.Due,
			hasDue:    item.HasDue(),
			remaining: item.RemainingWork(),
		})
	}

	return queue
}

// nextWindow returns the free time from now until the closest blackout
// occurrence and the end of that occurrence. bounded is false when there are
// no blackouts.
func nextWindow(blackouts []Blackout, now time.Time) (time.Duration, time.Time, bool) {
	var (
		window  time.Duration
		end     time.Time
		bounded bool
	)

	for _, b := range blackouts {
		start := b.upcomingStart(now)

		gap := start.Sub(now)
		if !bounded || gap < window {
			window = gap
			end = start.Add(b.Duration())
			bounded = true
		}
	}

	return window, end, bounded
}
