package aggregate

import (
	"sort"
	"strconv"

	"github.com/okian/boxbox/internal/domain/model"
	"github.com/okian/boxbox/internal/domain/stats"
)

// PassAggregator accumulates per-round overtaking figures and per-driver
// season totals.
type PassAggregator struct {
	races          []RaceOvertakeRow
	totals         map[int]model.DriverPassTotals
	meta           map[int]model.DriverIdentity
	drsUnavailable bool
}

// NewPassAggregator returns an empty accumulator.
func NewPassAggregator() *PassAggregator {
	return &PassAggregator{
		totals: make(map[int]model.DriverPassTotals),
		meta:   make(map[int]model.DriverIdentity),
	}
}

// AddRound records one processed round's overtaking figures. The
// processional index is filled in later by Races, once every round's pass
// rate is known.
func (a *PassAggregator) AddRound(round model.Round, totalOvertakes int, passRate float64, drsShare *float64) {
	var date *string
	if d := round.DateString(); d != "" {
		date = &d
	}
	if drsShare == nil {
		a.drsUnavailable = true
	}
	a.races = append(a.races, RaceOvertakeRow{
		Round:          round.Number,
		Event:          round.Event,
		Date:           date,
		SessionKey:     round.SessionKey,
		TotalOvertakes: totalOvertakes,
		PassRate:       stats.Round5(passRate),
		DRSShare:       drsShare,
	})
}

// AddDriverTotals folds one round's per-driver totals into the season
// accumulation and refreshes driver identity metadata. Later rounds win
// identity conflicts since rosters drift over a season.
func (a *PassAggregator) AddDriverTotals(totals map[int]model.DriverPassTotals, lookup map[int]model.DriverIdentity) {
	for number, roundTotals := range totals {
		acc := a.totals[number]
		acc.PassesMade += roundTotals.PassesMade
		acc.PositionsGainedNet += roundTotals.PositionsGainedNet
		a.totals[number] = acc
	}
	for number, id := range lookup {
		a.meta[number] = id
	}
}

// Races returns the per-round rows ordered by round number, with the
// processional index rescaled across all processed rounds. Identical pass
// rates everywhere (including a single round) yield the midpoint score 50.
func (a *PassAggregator) Races() []RaceOvertakeRow {
	rows := make([]RaceOvertakeRow, len(a.races))
	copy(rows, a.races)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Round < rows[j].Round })

	rates := make([]float64, len(rows))
	for i, row := range rows {
		rates[i] = row.PassRate
	}
	for i, score := range stats.RescaleInverted(rates) {
		rows[i].ProcessionalIndex = score
	}
	return rows
}

// CircuitIndex ranks rounds most-processional first, ties broken by round.
func (a *PassAggregator) CircuitIndex() []CircuitIndexRow {
	races := a.Races()
	rows := make([]CircuitIndexRow, 0, len(races))
	for _, race := range races {
		rows = append(rows, CircuitIndexRow{
			Event:             race.Event,
			Round:             race.Round,
			ProcessionalIndex: race.ProcessionalIndex,
			PassRate:          race.PassRate,
			TotalOvertakes:    race.TotalOvertakes,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ProcessionalIndex != rows[j].ProcessionalIndex {
			return rows[i].ProcessionalIndex > rows[j].ProcessionalIndex
		}
		return rows[i].Round < rows[j].Round
	})
	return rows
}

// DriverPassing returns season passing totals per driver, ordered by
// descending passes made, then descending net gain, then driver code.
func (a *PassAggregator) DriverPassing() []DriverPassingRow {
	rows := make([]DriverPassingRow, 0, len(a.totals))
	for number, totals := range a.totals {
		driver := strconv.Itoa(number)
		team := model.UnknownTeam
		if id, ok := a.meta[number]; ok {
			if id.Code != "" {
				driver = id.Code
			}
			if id.Team != "" {
				team = id.Team
			}
		}
		rows = append(rows, DriverPassingRow{
			Driver:             driver,
			Team:               team,
			PassesMade:         totals.PassesMade,
			PositionsGainedNet: totals.PositionsGainedNet,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PassesMade != rows[j].PassesMade {
			return rows[i].PassesMade > rows[j].PassesMade
		}
		if rows[i].PositionsGainedNet != rows[j].PositionsGainedNet {
			return rows[i].PositionsGainedNet > rows[j].PositionsGainedNet
		}
		return rows[i].Driver < rows[j].Driver
	})
	return rows
}

// DRSUnavailable reports whether any processed round lacked an aligned DRS
// signal for its passes.
func (a *PassAggregator) DRSUnavailable() bool { return a.drsUnavailable }

// RacesProcessed counts rounds that contributed overtaking rows.
func (a *PassAggregator) RacesProcessed() int { return len(a.races) }
