// Package model contains domain models passed between layers.
package model

import "time"

// PitStopEvent is one validated pit stop. DurationS is always inside the
// configured validity bounds by the time it leaves the extraction layer.
// LapNumber is 0 when the source did not report a lap.
type PitStopEvent struct {
	Round        int
	DriverNumber int
	LapNumber    int
	DurationS    float64

	// Driver and Team are filled by the identity reconciler. They are never
	// empty on emitted rows: unresolved identities degrade to the stringified
	// driver number and the literal "Unknown".
	Driver string
	Team   string
}

// PositionSample is one time-stamped track position reading for a driver.
// Samples are kept in memory only while a round is being processed.
// LapNumber is 0 when the telemetry stream carried no lap counter.
type PositionSample struct {
	DriverNumber int
	TS           time.Time
	Position     int
	LapNumber    int
}

// PassEvent is one inferred on-track pass: a position gain between two
// consecutive samples, after cooldown de-duplication.
type PassEvent struct {
	DriverNumber    int
	TS              time.Time
	PositionsGained int
}

// DriverPassTotals accumulates a driver's passing statistics.
// PositionsGainedNet is first sampled position minus last sampled position,
// so it nets out places lost and may be negative.
type DriverPassTotals struct {
	PassesMade         int
	PositionsGainedNet int
}

// DRSSample is one raw car-signal reading with the DRS flag asserted.
type DRSSample struct {
	DriverNumber int
	TS           time.Time
}
