// Package export assembles the final JSON documents and writes them to the
// output directory. Documents are built entirely in memory and replaced
// atomically; key order follows struct declaration order so re-running
// against unchanged provider data yields byte-identical files.
package export

import (
	"github.com/okian/boxbox/internal/aggregate"
	"github.com/okian/boxbox/internal/domain/model"
)

// Output document file names.
const (
	PitStopsFileName  = "ch4_pitstops.json"
	OvertakesFileName = "ch5_overtakes.json"
	MetricsFileName   = "metrics.prom"
)

// Provenance strings surfaced in the documents' notes blocks.
const (
	noteDataSourcePrimaryMapping = "OpenF1 (FastF1 fallback for mapping)"
	noteDataSourceWithFallback   = "OpenF1 (FastF1 fallback for mapping and missing pit rows)"
	notePassMethod               = "Position time-series pass detection with cooldown; DRS share proxy when available."
	noteDRSAvailable             = "DRS share proxy from OpenF1 car_data around pass timestamps."
	noteDRSUnavailable           = "DRS share proxy unavailable for some/all races due to car_data alignment limits."
)

// PitNotes describes how the pit-stop document's figures were obtained.
type PitNotes struct {
	UndercutMethod string `json:"undercut_method"`
	DataSource     string `json:"data_source"`
}

// PitStopsDocument is the pit-stop analytics export.
type PitStopsDocument struct {
	Rounds      []aggregate.RoundRow         `json:"rounds"`
	Teams       []string                     `json:"teams"`
	TeamSeason  []aggregate.TeamSeasonPitRow `json:"team_season"`
	TeamByRound []aggregate.TeamRoundPitRow  `json:"team_by_round"`
	RaceSummary []aggregate.RaceSummaryRow   `json:"race_summary"`
	Notes       PitNotes                     `json:"notes"`
}

// OvertakeNotes describes the overtaking document's methodology.
type OvertakeNotes struct {
	Method  string `json:"method"`
	DRSNote string `json:"drs_note"`
}

// OvertakesDocument is the overtaking analytics export.
type OvertakesDocument struct {
	Races         []aggregate.RaceOvertakeRow  `json:"races"`
	CircuitIndex  []aggregate.CircuitIndexRow  `json:"circuit_index"`
	DriverPassing []aggregate.DriverPassingRow `json:"driver_passing"`
	Notes         OvertakeNotes                `json:"notes"`
}

// RoundRows converts resolver output into the metadata rows echoed in the
// pit-stop document.
func RoundRows(rounds []model.Round) []aggregate.RoundRow {
	rows := make([]aggregate.RoundRow, 0, len(rounds))
	for _, round := range rounds {
		row := aggregate.RoundRow{
			Round:      round.Number,
			Event:      round.Event,
			SessionKey: round.SessionKey,
		}
		if d := round.DateString(); d != "" {
			row.Date = &d
		}
		rows = append(rows, row)
	}
	return rows
}

// BuildPitStops assembles the pit-stop document from season aggregates.
func BuildPitStops(rounds []model.Round, agg *aggregate.PitAggregator) PitStopsDocument {
	dataSource := noteDataSourcePrimaryMapping
	if agg.FallbackRounds() > 0 {
		dataSource = noteDataSourceWithFallback
	}
	return PitStopsDocument{
		Rounds:      RoundRows(rounds),
		Teams:       nonNil(agg.Teams()),
		TeamSeason:  nonNil(agg.TeamSeason()),
		TeamByRound: nonNil(agg.TeamByRound()),
		RaceSummary: nonNil(agg.RaceSummaries()),
		Notes: PitNotes{
			UndercutMethod: agg.UndercutNote(),
			DataSource:     dataSource,
		},
	}
}

// BuildOvertakes assembles the overtaking document from season aggregates.
func BuildOvertakes(agg *aggregate.PassAggregator) OvertakesDocument {
	drsNote := noteDRSAvailable
	if agg.DRSUnavailable() {
		drsNote = noteDRSUnavailable
	}
	return OvertakesDocument{
		Races:         nonNil(agg.Races()),
		CircuitIndex:  nonNil(agg.CircuitIndex()),
		DriverPassing: nonNil(agg.DriverPassing()),
		Notes: OvertakeNotes{
			Method:  notePassMethod,
			DRSNote: drsNote,
		},
	}
}

// nonNil keeps empty row arrays serializing as [] rather than null.
func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
