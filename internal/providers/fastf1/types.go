package fastf1

import (
	"strings"
	"time"
)

// ScheduleEntry is one row of the season schedule.
type ScheduleEntry struct {
	RoundNumber int    `json:"round_number"`
	EventName   string `json:"event_name"`
	EventDate   string `json:"event_date"` // ISO date or datetime; may be empty
	Country     string `json:"country,omitempty"`
	Location    string `json:"location,omitempty"`
}

// Date parses the event date, returning the zero time when absent or
// unparseable.
func (e ScheduleEntry) Date() time.Time {
	raw := strings.TrimSpace(e.EventDate)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

// ResultRow is one driver's classified race result.
type ResultRow struct {
	DriverNumber int     `json:"driver_number"`
	Abbreviation string  `json:"abbreviation"`
	TeamName     string  `json:"team_name"`
	FullName     string  `json:"full_name,omitempty"`
	Position     int     `json:"position,omitempty"`
	Points       float64 `json:"points,omitempty"`
}

// LapRow is one lap of one driver, with pit timestamps where the timing
// system recorded them. Pit times are seconds since session start; nil when
// the lap had no pit entry/exit.
type LapRow struct {
	DriverNumber int      `json:"driver_number"`
	Driver       string   `json:"driver,omitempty"`
	Team         string   `json:"team,omitempty"`
	LapNumber    int      `json:"lap_number"`
	LapTimeS     *float64 `json:"lap_time_s,omitempty"`
	PitInTimeS   *float64 `json:"pit_in_time_s,omitempty"`
	PitOutTimeS  *float64 `json:"pit_out_time_s,omitempty"`
}
