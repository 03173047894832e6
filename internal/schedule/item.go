package schedule

import (
	"fmt"
	"math"
	"time"
)

// State is the derived lifecycle state of an [Item] at some instant.
// It is never stored.
type State uint8

// State values.
const (
	Ready State = iota
	Running
	Done
	Overdue
	Future
	RunningOverdue
)

var stateNames = [...]string{
	Ready:          "ready",
	Running:        "running",
	Done:           "done",
	Overdue:        "overdue",
	Future:         "future",
	RunningOverdue: "running_overdue",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}

	return fmt.Sprintf("State(%d)", uint8(s))
}

// doneThreshold is the progress at which an item counts as done. Progress is
// usually entered in percent steps, so 99% is treated as complete.
const doneThreshold = 0.99

// Item holds the time-relevant attributes of one task.
//
// A zero Due means the item has no deadline. A zero Resumed means the item is
// not being worked on right now.
type Item struct {
	ID        string
	Due       time.Time
	Start     time.Time
	WCET      time.Duration
	Actual    time.Duration
	Progress  float64
	Resumed   time.Time
	Suspended bool
}

// Validate reports whether the item can be handed to the analyzer.
func (it *Item) Validate() error {
	if it.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidItem)
	}

	if it.WCET < 0 {
		return fmt.Errorf("%w: %s: negative wcet %s", ErrInvalidItem, it.ID, it.WCET)
	}

	if it.Actual < 0 {
		return fmt.Errorf("%w: %s: negative actual %s", ErrInvalidItem, it.ID, it.Actual)
	}

	if !validProgress(it.Progress) {
		return fmt.Errorf("%w: %s: progress %v outside [0, 1]", ErrInvalidItem, it.ID, it.Progress)
	}

	return nil
}

func validProgress(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}

// HasDue reports whether the item carries a deadline.
func (it *Item) HasDue() bool {
	return !it.Due.IsZero()
}

// IsRunning reports whether work on the item is in progress.
func (it *Item) IsRunning() bool {
	return !it.Resumed.IsZero()
}

// State derives the item's state at now.
func (it *Item) State(now time.Time) State {
	if it.Progress >= doneThreshold {
		return Done
	}

	if it.HasDue() && !now.Before(it.Due) {
		if it.IsRunning() {
			return RunningOverdue
		}

		return Overdue
	}

	if it.IsRunning() {
		return Running
	}

	if now.Before(it.Start) {
		return Future
	}

	return Ready
}

// RemainingWork is WCET scaled by the unfinished fraction, truncated toward
// zero. It is never negative and is zero once progress reaches 1.
func (it *Item) RemainingWork() time.Duration {
	progress := clampUnit(it.Progress)
	if progress >= 1 || it.WCET <= 0 {
		return 0
	}

	remaining := float64(it.WCET) * (1 - progress)

	switch {
	case remaining <= 0:
		return 0
	case remaining >= float64(it.WCET):
		// float64 rounding can land above the exact product.
		return it.WCET
	}

	return time.Duration(remaining)
}

// Laxity is the slack of the item at t0: time until the deadline minus the
// remaining work. Done items and items without a deadline get sentinel values,
// see [Laxity].
func (it *Item) Laxity(t0 time.Time) Laxity {
	if it.State(t0) == Done {
		return LaxityDone
	}

	if !it.HasDue() {
		return LaxityNoDeadline
	}

	return FiniteLaxity(subSat(it.Due.Sub(t0), it.RemainingWork()))
}

// WorkingTime is how long the item has been worked on since it was last
// resumed. Zero when not running.
func (it *Item) WorkingTime(now time.Time) time.Duration {
	if !it.IsRunning() {
		return 0
	}

	return max(now.Sub(it.Resumed), 0)
}

// Resume marks the item as being worked on from now. It also lifts a
// suspension. Returns false if the item was already running.
func (it *Item) Resume(now time.Time) bool {
	if it.IsRunning() {
		return false
	}

	it.Suspended = false
	it.Resumed = now

	return true
}

// Stop books the time worked since the last Resume into Actual. Returns false
// if the item was not running.
func (it *Item) Stop(now time.Time) bool {
	if !it.IsRunning() {
		return false
	}

	it.Actual = addSat(it.Actual, it.WorkingTime(now))
	it.Suspended = false
	it.Resumed = time.Time{}

	return true
}

// Complete forces progress to 1 and stops the item if it was running.
func (it *Item) Complete(now time.Time) {
	it.Progress = 1
	it.Stop(now)
}

// SetProgress sets the completed fraction of the item.
func (it *Item) SetProgress(progress float64) error {
	if !validProgress(progress) {
		return fmt.Errorf("%w: progress %v outside [0, 1]", ErrInvalidItem, progress)
	}

	it.Progress = progress

	return nil
}

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}

	return v
}

// addSat and subSat saturate instead of wrapping around.
func addSat(a, b time.Duration) time.Duration {
	sum := a + b

	switch {
	case b > 0 && sum < a:
		return math.MaxInt64
	case b < 0 && sum > a:
		return math.MinInt64
	}

	return sum
}

func subSat(a, b time.Duration) time.Duration {
	diff := a - b

	switch {
	case b > 0 && diff > a:
		return math.MinInt64
	case b < 0 && diff < a:
		return math.MaxInt64
	}

	return diff
}
