package pitstops

import (
	"github.com/okian/boxbox/internal/domain/model"
	openf1 "github.com/okian/boxbox/internal/providers/openf1"
)

// Undercut method notes surfaced in the export's provenance block.
const (
	NoteUndercutUnavailable = "Undercut proxy unavailable."
	NoteUndercutMethod      = "Undercut proxy uses position change from lap before pit to best available reading within next 3 laps."
	noteNoStops             = "No pit stops for undercut proxy."
	noteNoPositions         = "Position feed returned no data; undercut proxy unavailable."
	noteNoLapRows           = "Position feed had no usable lap-number rows; undercut proxy unavailable."
)

// UndercutOutcome counts undercut attempts and successes for one team.
type UndercutOutcome struct {
	Successes int
	Attempts  int
}

// UndercutOutcomes evaluates each pit stop as an undercut attempt: the
// driver's position one lap before the stop against the last available
// reading within the following lookahead laps. A net gain of at least one
// place is a success. The ok result is false when the position feed cannot
// support the proxy at all, which callers must treat as indeterminate rather
// than zero.
func UndercutOutcomes(positions []openf1.Record, events []model.PitStopEvent, lookahead int) (map[string]UndercutOutcome, string, bool) {
	if len(events) == 0 {
		return map[string]UndercutOutcome{}, noteNoStops, true
	}
	if len(positions) == 0 {
		return nil, noteNoPositions, false
	}

	index := make(map[[2]int]int)
	for _, record := range positions {
		number, ok := record.Int("driver_number")
		if !ok {
			continue
		}
		position, ok := record.Int("position")
		if !ok {
			continue
		}
		lap, ok := record.Int("lap_number")
		if !ok {
			continue
		}
		index[[2]int{number, lap}] = position
	}
	if len(index) == 0 {
		return nil, noteNoLapRows, false
	}

	outcomes := make(map[string]UndercutOutcome)
	for _, event := range events {
		if event.LapNumber <= 0 {
			continue
		}

		before, ok := index[[2]int{event.DriverNumber, event.LapNumber - 1}]
		if !ok {
			continue
		}

		after := 0
		found := false
		for d := 1; d <= lookahead; d++ {
			if position, ok := index[[2]int{event.DriverNumber, event.LapNumber + d}]; ok {
				after = position
				found = true
			}
		}
		if !found {
			continue
		}

		outcome := outcomes[event.Team]
		outcome.Attempts++
		if before-after >= 1 {
			outcome.Successes++
		}
		outcomes[event.Team] = outcome
	}

	return outcomes, NoteUndercutMethod, true
}
