package schedule

import "time"

// Urgency buckets an item's slack relative to its remaining work.
type Urgency uint8

// Urgency values, least urgent first.
const (
	UrgencyNone Urgency = iota
	UrgencyRelaxed
	UrgencyTight
	UrgencyCritical
)

func (u Urgency) String() string {
	switch u {
	case UrgencyRelaxed:
		return "relaxed"
	case UrgencyTight:
		return "tight"
	case UrgencyCritical:
		return "critical"
	default:
		return "none"
	}
}

// ClassifySlack rates how much room an item has at t0. Items that are done or
// have no deadline are UrgencyNone. Less slack than half the remaining work is
// critical, less than the remaining work is tight.
func ClassifySlack(item *Item, t0 time.Time) Urgency {
	slack, ok := item.Laxity(t0).Duration()
	if !ok {
		return UrgencyNone
	}

	remaining := item.RemainingWork()

	switch {
	case slack < remaining/2:
		return UrgencyCritical
	case slack < remaining:
		return UrgencyTight
	default:
		return UrgencyRelaxed
	}
}
