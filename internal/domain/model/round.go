package model

import (
	"strconv"
	"time"
)

// Round binds a schedule entry from the primary provider to a race session
// from the secondary provider. The pairing is positional by chronological
// order; neither provider exposes the other's key. Immutable once built.
type Round struct {
	Number     int
	Event      string
	Date       time.Time // zero when the schedule carried no usable date
	SessionKey int
}

// DateString returns the calendar date in YYYY-MM-DD form, or "" when absent.
func (r Round) DateString() string {
	if r.Date.IsZero() {
		return ""
	}
	return r.Date.UTC().Format("2006-01-02")
}

// UnknownTeam labels drivers whose team neither provider resolved.
const UnknownTeam = "Unknown"

// DriverIdentity is the reconciled per-round identity for a driver number.
type DriverIdentity struct {
	DriverNumber int
	Code         string
	Team         string
}

// FallbackIdentity returns the degraded identity used when neither provider
// resolved a driver number: the stringified number and the "Unknown" team.
func FallbackIdentity(driverNumber int) DriverIdentity {
	return DriverIdentity{
		DriverNumber: driverNumber,
		Code:         strconv.Itoa(driverNumber),
		Team:         UnknownTeam,
	}
}
