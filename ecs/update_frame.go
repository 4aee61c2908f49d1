package ecs

import "time"

// Time is the clock handed to systems for one update.
type Time struct {
	// Delta is the time since the previous update.
	Delta time.Duration
	// Elapsed is the total time since the first update.
	Elapsed time.Duration
}

// Seconds returns Delta in seconds.
func (t Time) Seconds() float64 { return t.Delta.Seconds() }

type UpdateFrame struct {
	Time     Time
	Commands *Commands
	World    *World
}
