package rounds

import "errors"

var (
	// ErrNoRaceSessions indicates the secondary provider yielded zero usable
	// race sessions for the requested season.
	ErrNoRaceSessions = errors.New("no race sessions")

	// ErrNoScheduleRounds indicates the primary provider's schedule contained
	// no usable rounds for the requested season.
	ErrNoScheduleRounds = errors.New("no schedule rounds")
)
