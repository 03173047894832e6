package schedule

import (
	"cmp"
	"time"
)

type laxityTier uint8

const (
	tierFinite laxityTier = iota
	tierNoDeadline
	tierDone
)

// Laxity is a duration extended with two sentinels above every finite value:
//
//	finite (may be negative) < LaxityNoDeadline < LaxityDone
//
// Items without a deadline therefore sort after every deadline-bearing item,
// and done items sort last.
type Laxity struct {
	tier  laxityTier
	slack time.Duration
}

// Laxity sentinels.
var (
	LaxityNoDeadline = Laxity{tier: tierNoDeadline}
	LaxityDone       = Laxity{tier: tierDone}
)

// FiniteLaxity wraps a plain slack duration.
func FiniteLaxity(slack time.Duration) Laxity {
	return Laxity{tier: tierFinite, slack: slack}
}

// Compare returns -1, 0 or +1 as l is less than, equal to or greater than other.
func (l Laxity) Compare(other Laxity) int {
	if l.tier != other.tier {
		return cmp.Compare(l.tier, other.tier)
	}

	return cmp.Compare(l.slack, other.slack)
}

// IsInfinite reports whether l is the done sentinel.
func (l Laxity) IsInfinite() bool {
	return l.tier == tierDone
}

// HasDeadline reports whether l is a finite slack value.
func (l Laxity) HasDeadline() bool {
	return l.tier == tierFinite
}

// Duration returns the finite slack. ok is false for the sentinels.
func (l Laxity) Duration() (time.Duration, bool) {
	if l.tier != tierFinite {
		return 0, false
	}

	return l.slack, true
}

func (l Laxity) String() string {
	switch l.tier {
	case tierDone:
		return "+inf"
	case tierNoDeadline:
		return "none"
	default:
		return l.slack.String()
	}
}
