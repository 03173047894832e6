package testutil

import "time"

// Clock hands out deterministic instants for tests. It never reads the wall
// clock.
type Clock struct {
	current time.Time
	step    time.Duration
}

// NewClock returns a clock at 2024-01-01 UTC that advances one second per
// [Clock.Next] call.
func NewClock() *Clock {
	return &Clock{
		current: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		step:    time.Second,
	}
}

// Now returns the current instant without advancing.
func (c *Clock) Now() time.Time {
	return c.current
}

// Next advances by one step and returns the new instant.
func (c *Clock) Next() time.Time {
	c.current = c.current.Add(c.step)

	return c.current
}

// Advance moves the clock forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.current = c.current.Add(d)

	return c.current
}
