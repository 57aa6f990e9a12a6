// Package aggregate rolls per-round pit and pass events into the season
// tables the exports serialize. Accumulation happens strictly in
// round-processing order; the final sorts make output deterministic.
package aggregate

// TeamSeasonPitRow is one team's season-wide pit performance.
// UndercutSuccess is nil for teams with zero recorded undercut attempts,
// which is distinct from a team that attempted and always failed.
type TeamSeasonPitRow struct {
	Team            string   `json:"team"`
	AvgPitS         float64  `json:"avg_pit_s"`
	P25PitS         float64  `json:"p25_pit_s"`
	P50PitS         float64  `json:"p50_pit_s"`
	P75PitS         float64  `json:"p75_pit_s"`
	BestPitS        float64  `json:"best_pit_s"`
	ConsistencyS    float64  `json:"consistency_s"`
	Stops           int      `json:"n_stops"`
	UndercutSuccess *float64 `json:"undercut_success"`
}

// TeamRoundPitRow is one team's pit performance in a single round.
type TeamRoundPitRow struct {
	Round        int     `json:"round"`
	Team         string  `json:"team"`
	AvgPitS      float64 `json:"avg_pit_s"`
	P25PitS      float64 `json:"p25_pit_s"`
	P50PitS      float64 `json:"p50_pit_s"`
	P75PitS      float64 `json:"p75_pit_s"`
	BestPitS     float64 `json:"best_pit_s"`
	ConsistencyS float64 `json:"consistency_s"`
	Stops        int     `json:"n_stops"`
}

// RaceSummaryRow condenses one round's pit activity.
type RaceSummaryRow struct {
	Round         int     `json:"round"`
	TotalStops    int     `json:"total_stops"`
	MedianPitS    float64 `json:"median_pit_s"`
	IQRPitS       float64 `json:"iqr_pit_s"`
	FastestPitS   float64 `json:"fastest_pit_s"`
	FastestTeam   string  `json:"fastest_team"`
	FastestDriver string  `json:"fastest_driver"`
}

// RaceOvertakeRow is one round's overtaking picture. DRSShare is nil when
// the car-signal stream could not be aligned with any pass, meaning "no
// data" rather than "no DRS assistance".
type RaceOvertakeRow struct {
	Round             int      `json:"round"`
	Event             string   `json:"event"`
	Date              *string  `json:"date"`
	SessionKey        int      `json:"session_key"`
	TotalOvertakes    int      `json:"total_overtakes"`
	PassRate          float64  `json:"pass_rate"`
	DRSShare          *float64 `json:"drs_share"`
	ProcessionalIndex int      `json:"processional_index"`
}

// CircuitIndexRow ranks rounds by how processional they were.
type CircuitIndexRow struct {
	Event             string  `json:"event"`
	Round             int     `json:"round"`
	ProcessionalIndex int     `json:"processional_index"`
	PassRate          float64 `json:"pass_rate"`
	TotalOvertakes    int     `json:"total_overtakes"`
}

// DriverPassingRow is one driver's season passing totals.
type DriverPassingRow struct {
	Driver             string `json:"driver"`
	Team               string `json:"team"`
	PassesMade         int    `json:"passes_made"`
	PositionsGainedNet int    `json:"positions_gained_net"`
}

// RoundRow is the round metadata echoed into the exports.
type RoundRow struct {
	Round      int     `json:"round"`
	Event      string  `json:"event"`
	Date       *string `json:"date"`
	SessionKey int     `json:"session_key"`
}
