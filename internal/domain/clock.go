package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock stamps artifact CreatedAt values and run start and finish times.
var clock = clockwork.NewRealClock()

// SetClock replaces the clock behind Now. A nil clock restores the wall clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now is the UTC time used for artifacts and run summaries.
func Now() time.Time {
	return clock.Now().UTC()
}
