package schedule

import (
	"fmt"
	"time"
)

// Blackout is a recurring interval in which no work can be done, such as
// nights or lunch breaks. Occurrence k covers (firstStart + k·period,
// firstStart + k·period + duration]: open at the start, closed at the end.
//
// Order is carried for consumers that need to rank overlapping blackouts. The
// analyzer ignores it and assumes the blackouts it is given are disjoint.
type Blackout struct {
	firstStart time.Time
	duration   time.Duration
	period     time.Duration
	order      int
}

// NewBlackout validates and returns a blackout. A zero period is only
// accepted together with a zero duration; such a blackout never blocks any
// capacity.
func NewBlackout(firstStart time.Time, duration, period time.Duration, order int) (Blackout, error) {
	if duration < 0 {
		return Blackout{}, fmt.Errorf("%w: negative duration %s", ErrInvalidBlackout, duration)
	}

	if period < 0 {
		return Blackout{}, fmt.Errorf("%w: negative period %s", ErrInvalidBlackout, period)
	}

	if period == 0 && duration > 0 {
		return Blackout{}, fmt.Errorf("%w: duration %s needs a positive period", ErrInvalidBlackout, duration)
	}

	// An occurrence as long as its period leaves no working time at all.
	if period > 0 && duration >= period {
		return Blackout{}, fmt.Errorf("%w: duration %s must be shorter than period %s", ErrInvalidBlackout, duration, period)
	}

	return Blackout{
		firstStart: firstStart,
		duration:   duration,
		period:     period,
		order:      order,
	}, nil
}

// MustBlackout is like NewBlackout but panics on invalid input.
// Intended for tests and package-level fixtures.
func MustBlackout(firstStart time.Time, duration, period time.Duration, order int) Blackout {
	b, err := NewBlackout(firstStart, duration, period, order)
	if err != nil {
		panic(err)
	}

	return b
}

// FirstStart returns the start of the first occurrence.
func (b Blackout) FirstStart() time.Time { return b.firstStart }

// Duration returns the length of one occurrence.
func (b Blackout) Duration() time.Duration { return b.duration }

// Period returns the distance between two occurrence starts.
func (b Blackout) Period() time.Duration { return b.period }

// Order returns the consumer-defined rank.
func (b Blackout) Order() int { return b.order }

// blocks reports whether the blackout ever removes capacity.
func (b Blackout) blocks() bool {
	return b.duration > 0 && b.period > 0
}

// ElapsedPeriods is floor((now - firstStart) / period). Negative before the
// first occurrence; zero for a blackout without a period.
func (b Blackout) ElapsedPeriods(now time.Time) int64 {
	if b.period <= 0 {
		return 0
	}

	return floorDiv(int64(now.Sub(b.firstStart)), int64(b.period))
}

func (b Blackout) occurrence(n int64) time.Time {
	return b.firstStart.Add(time.Duration(n) * b.period)
}

// IsActive reports whether now falls inside an occurrence. The instant an
// occurrence starts is outside it, the instant it ends is inside it.
func (b Blackout) IsActive(now time.Time) bool {
	if !b.blocks() || !now.After(b.firstStart) {
		return false
	}

	start := b.occurrence(b.ElapsedPeriods(now))

	return start.Before(now) && !now.After(start.Add(b.duration))
}

// NextStart returns firstStart while it is not in the past, otherwise the
// first occurrence start strictly after now. A blackout without a period has
// no further start once firstStart has passed; the zero time is returned.
func (b Blackout) NextStart(now time.Time) time.Time {
	if !b.firstStart.Before(now) {
		return b.firstStart
	}

	if b.period <= 0 {
		return time.Time{}
	}

	return b.occurrence(b.ElapsedPeriods(now) + 1)
}

// NextEnd returns the end of the active occurrence. Otherwise it is the end
// of the occurrence after the current period's one, which for an instant equal
// to an occurrence start is the following occurrence. Before firstStart it is
// the end of the first occurrence.
func (b Blackout) NextEnd(now time.Time) time.Time {
	if now.Before(b.firstStart) {
		return b.firstStart.Add(b.duration)
	}

	n := b.ElapsedPeriods(now)
	if !b.IsActive(now) {
		n++
	}

	return b.occurrence(n).Add(b.duration)
}

// upcomingStart returns the first occurrence start at or after now. Unlike
// NextStart it keeps an occurrence that begins exactly at now, which the
// simulation needs when one blackout ends where the next begins.
func (b Blackout) upcomingStart(now time.Time) time.Time {
	if !b.firstStart.Before(now) || b.period <= 0 {
		return b.firstStart
	}

	n := b.ElapsedPeriods(now)

	start := b.occurrence(n)
	if start.Before(now) {
		start = b.occurrence(n + 1)
	}

	return start
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}

	return q
}
