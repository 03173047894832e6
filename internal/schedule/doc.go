// Package schedule orders deadline-bound work items by least laxity and checks
// whether a single serial worker can finish all of them in time.
//
// Every operation takes the reference instant explicitly. Nothing in this
// package reads a clock, so results depend only on the arguments:
//
//	order := schedule.Sort(items, now)
//	ok := schedule.IsSchedulable(items, now)
//	at, missed := schedule.NextMissedDeadline(items, now, blackouts)
//
// Items are plain values. Callers hand in a snapshot and must not mutate the
// underlying data while an analysis runs.
package schedule
