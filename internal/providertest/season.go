// Package providertest serves a synthetic season over HTTP in both
// providers' wire formats, so pipeline tests can run against the real
// clients instead of hand-rolled stubs.
package providertest

import (
	"time"

	fastf1 "github.com/okian/boxbox/internal/providers/fastf1"
	openf1 "github.com/okian/boxbox/internal/providers/openf1"
)

// Round is one race weekend's worth of fixture data across both providers.
type Round struct {
	Number     int
	SessionKey int
	EventName  string
	EventDate  string
	DateStart  string
	Drivers    []openf1.Record
	Pits       []openf1.Record
	Positions  []openf1.Record
	CarData    []openf1.Record
	Results    []fastf1.ResultRow
	Laps       []fastf1.LapRow
}

// Season is the complete fixture served by a Server.
type Season struct {
	Year   int
	Rounds []Round
}

// roster is the fixed driver set used by the default season.
var roster = []struct {
	number int
	code   string
	team   string
}{
	{1, "VER", "Red Bull Racing"},
	{4, "NOR", "McLaren"},
	{16, "LEC", "Ferrari"},
	{44, "HAM", "Ferrari"},
}

// defaultEvents name the default season's rounds in calendar order.
var defaultEvents = []struct {
	name string
	date string
}{
	{"Australian Grand Prix", "2025-03-16"},
	{"Chinese Grand Prix", "2025-03-23"},
	{"Japanese Grand Prix", "2025-04-06"},
}

// DefaultSeason builds a deterministic three-round season with plausible
// telemetry: every round has a roster and position walk, round 2 has an
// empty pit feed so the lap-table fallback engages, and only round 1
// carries DRS samples.
func DefaultSeason(year int) Season {
	season := Season{Year: year}
	for i, event := range defaultEvents {
		number := i + 1
		round := Round{
			Number:     number,
			SessionKey: 9000 + number*100,
			EventName:  event.name,
			EventDate:  event.date,
			DateStart:  event.date + "T05:00:00+00:00",
		}
		start, _ := time.Parse(time.RFC3339, round.DateStart)

		for _, d := range roster {
			round.Drivers = append(round.Drivers, openf1.Record{
				"driver_number": float64(d.number),
				"name_acronym":  d.code,
				"team_name":     d.team,
			})
			round.Results = append(round.Results, fastf1.ResultRow{
				DriverNumber: d.number,
				Abbreviation: d.code,
				TeamName:     d.team,
			})
		}

		round.Positions = positionWalk(start, number)
		if number != 2 {
			round.Pits = pitFeed(number)
		}
		round.Laps = lapTable(number)
		if number == 1 {
			round.CarData = []openf1.Record{
				{"driver_number": float64(1), "drs": float64(10), "date": stamp(start, 19*time.Minute+59*time.Second)},
				{"driver_number": float64(4), "drs": float64(0), "date": stamp(start, 40*time.Minute)},
			}
		}
		season.Rounds = append(season.Rounds, round)
	}
	return season
}

// positionWalk emits a small per-driver position time series. Driver 1 loses
// and regains a place so every round produces at least one detected pass.
func positionWalk(start time.Time, roundNumber int) []openf1.Record {
	lastLap := 50 + roundNumber
	samples := []openf1.Record{
		positionSample(1, 2, 1, stamp(start, 0)),
		positionSample(1, 3, 10, stamp(start, 18*time.Minute)),
		positionSample(1, 1, 12, stamp(start, 20*time.Minute)),
		positionSample(1, 1, lastLap, stamp(start, 95*time.Minute)),
		positionSample(4, 4, 1, stamp(start, 0)),
		positionSample(4, 4, lastLap, stamp(start, 96*time.Minute)),
		positionSample(16, 5, 1, stamp(start, 0)),
		positionSample(16, 6, lastLap, stamp(start, 97*time.Minute)),
		positionSample(44, 7, 1, stamp(start, 0)),
		positionSample(44, 7, lastLap, stamp(start, 98*time.Minute)),
	}
	return samples
}

func positionSample(driver, position, lap int, date string) openf1.Record {
	return openf1.Record{
		"driver_number": float64(driver),
		"position":      float64(position),
		"lap_number":    float64(lap),
		"date":          date,
	}
}

// pitFeed emits the secondary provider's pit rows, one invalid duration
// included so validity filtering is visible end to end.
func pitFeed(roundNumber int) []openf1.Record {
	base := 18.0 + float64(roundNumber)
	return []openf1.Record{
		{"driver_number": float64(1), "lap_number": float64(12), "pit_duration": base},
		{"driver_number": float64(4), "lap_number": float64(14), "pit_duration": base + 1.5},
		{"driver_number": float64(16), "lap_number": float64(20), "pit_duration": 180.0},
	}
}

// lapTable emits the primary provider's lap rows with one pit-in/pit-out
// pair per driver, backing the fallback path when the pit feed is empty.
func lapTable(roundNumber int) []fastf1.LapRow {
	rows := make([]fastf1.LapRow, 0, len(roster)*2)
	for i, d := range roster {
		in := 1800.0 + float64(i)*120
		out := in + 21.0 + float64(roundNumber)
		rows = append(rows,
			fastf1.LapRow{DriverNumber: d.number, Driver: d.code, Team: d.team, LapNumber: 18 + i, PitInTimeS: &in},
			fastf1.LapRow{DriverNumber: d.number, Driver: d.code, Team: d.team, LapNumber: 19 + i, PitOutTimeS: &out},
		)
	}
	return rows
}

func stamp(start time.Time, offset time.Duration) string {
	return start.Add(offset).Format("2006-01-02T15:04:05+00:00")
}

// round returns the fixture round for a session key, or nil.
func (s Season) round(sessionKey int) *Round {
	for i := range s.Rounds {
		if s.Rounds[i].SessionKey == sessionKey {
			return &s.Rounds[i]
		}
	}
	return nil
}

// byNumber returns the fixture round by calendar round number, or nil.
func (s Season) byNumber(number int) *Round {
	for i := range s.Rounds {
		if s.Rounds[i].Number == number {
			return &s.Rounds[i]
		}
	}
	return nil
}

// Schedule renders the season as primary-provider schedule entries.
func (s Season) Schedule() []fastf1.ScheduleEntry {
	entries := make([]fastf1.ScheduleEntry, 0, len(s.Rounds))
	for _, r := range s.Rounds {
		entries = append(entries, fastf1.ScheduleEntry{
			RoundNumber: r.Number,
			EventName:   r.EventName,
			EventDate:   r.EventDate,
		})
	}
	return entries
}

// Sessions renders the season as secondary-provider race session records.
func (s Season) Sessions() []openf1.Record {
	records := make([]openf1.Record, 0, len(s.Rounds))
	for _, r := range s.Rounds {
		records = append(records, openf1.Record{
			"session_key":  float64(r.SessionKey),
			"session_name": "Race",
			"date_start":   r.DateStart,
			"year":         float64(s.Year),
		})
	}
	return records
}
