package aggregate

import (
	"sort"

	"github.com/okian/boxbox/internal/domain/model"
	"github.com/okian/boxbox/internal/domain/pitstops"
	"github.com/okian/boxbox/internal/domain/stats"
)

// PitAggregator accumulates validated pit events across rounds.
type PitAggregator struct {
	events         []model.PitStopEvent
	teamByRound    []TeamRoundPitRow
	raceSummary    []RaceSummaryRow
	undercut       map[string]pitstops.UndercutOutcome
	undercutNote   string
	fallbackRounds int
}

// NewPitAggregator returns an empty accumulator.
func NewPitAggregator() *PitAggregator {
	return &PitAggregator{
		undercut:     make(map[string]pitstops.UndercutOutcome),
		undercutNote: pitstops.NoteUndercutUnavailable,
	}
}

// AddRound folds one round's events into the season state and records the
// per-round team table and race summary.
func (a *PitAggregator) AddRound(round model.Round, events []model.PitStopEvent, usedFallback bool) {
	if len(events) == 0 {
		return
	}
	if usedFallback {
		a.fallbackRounds++
	}
	a.events = append(a.events, events...)
	a.teamByRound = append(a.teamByRound, teamRoundRows(round.Number, events)...)
	a.raceSummary = append(a.raceSummary, raceSummaryRow(round.Number, events))
}

// AddUndercut folds one round's undercut outcomes in. Indeterminate rounds
// (ok false) leave the accumulated state and note untouched.
func (a *PitAggregator) AddUndercut(outcomes map[string]pitstops.UndercutOutcome, note string, ok bool) {
	if !ok {
		return
	}
	a.undercutNote = note
	for team, outcome := range outcomes {
		acc := a.undercut[team]
		acc.Successes += outcome.Successes
		acc.Attempts += outcome.Attempts
		a.undercut[team] = acc
	}
}

// TeamSeason computes the season table, ordered by ascending average
// duration then team name.
func (a *PitAggregator) TeamSeason() []TeamSeasonPitRow {
	byTeam := make(map[string][]float64)
	for _, event := range a.events {
		if event.Team == "" {
			continue
		}
		byTeam[event.Team] = append(byTeam[event.Team], event.DurationS)
	}

	rows := make([]TeamSeasonPitRow, 0, len(byTeam))
	for team, durations := range byTeam {
		row := TeamSeasonPitRow{
			Team:         team,
			AvgPitS:      stats.Round3(stats.Mean(durations)),
			P25PitS:      stats.Round3(stats.Quantile(durations, 0.25)),
			P50PitS:      stats.Round3(stats.Quantile(durations, 0.50)),
			P75PitS:      stats.Round3(stats.Quantile(durations, 0.75)),
			BestPitS:     stats.Round3(stats.Min(durations)),
			ConsistencyS: stats.Round3(stats.StdDev(durations)),
			Stops:        len(durations),
		}
		if outcome, ok := a.undercut[team]; ok && outcome.Attempts > 0 {
			rate := stats.Round3(float64(outcome.Successes) / float64(outcome.Attempts))
			row.UndercutSuccess = &rate
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AvgPitS != rows[j].AvgPitS {
			return rows[i].AvgPitS < rows[j].AvgPitS
		}
		return rows[i].Team < rows[j].Team
	})
	return rows
}

// TeamByRound returns the per-round team table ordered by round, then
// average duration, then team name.
func (a *PitAggregator) TeamByRound() []TeamRoundPitRow {
	rows := make([]TeamRoundPitRow, len(a.teamByRound))
	copy(rows, a.teamByRound)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Round != rows[j].Round {
			return rows[i].Round < rows[j].Round
		}
		if rows[i].AvgPitS != rows[j].AvgPitS {
			return rows[i].AvgPitS < rows[j].AvgPitS
		}
		return rows[i].Team < rows[j].Team
	})
	return rows
}

// RaceSummaries returns one row per round with pit activity, by round.
func (a *PitAggregator) RaceSummaries() []RaceSummaryRow {
	rows := make([]RaceSummaryRow, len(a.raceSummary))
	copy(rows, a.raceSummary)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Round < rows[j].Round })
	return rows
}

// Teams lists the teams appearing in the season table, sorted.
func (a *PitAggregator) Teams() []string {
	seen := make(map[string]bool)
	for _, row := range a.TeamSeason() {
		seen[row.Team] = true
	}
	teams := make([]string, 0, len(seen))
	for team := range seen {
		teams = append(teams, team)
	}
	sort.Strings(teams)
	return teams
}

// UndercutNote describes how (or whether) the undercut proxy was computed.
func (a *PitAggregator) UndercutNote() string { return a.undercutNote }

// FallbackRounds counts rounds whose pit rows came from the lap-table path.
func (a *PitAggregator) FallbackRounds() int { return a.fallbackRounds }

// TotalStops is the number of validated stops across the whole season.
func (a *PitAggregator) TotalStops() int { return len(a.events) }

// RoundsWithStops counts rounds that contributed at least one pit row.
func (a *PitAggregator) RoundsWithStops() int { return len(a.raceSummary) }

func teamRoundRows(round int, events []model.PitStopEvent) []TeamRoundPitRow {
	byTeam := make(map[string][]float64)
	for _, event := range events {
		if event.Team == "" {
			continue
		}
		byTeam[event.Team] = append(byTeam[event.Team], event.DurationS)
	}

	rows := make([]TeamRoundPitRow, 0, len(byTeam))
	for team, durations := range byTeam {
		rows = append(rows, TeamRoundPitRow{
			Round:        round,
			Team:         team,
			AvgPitS:      stats.Round3(stats.Mean(durations)),
			P25PitS:      stats.Round3(stats.Quantile(durations, 0.25)),
			P50PitS:      stats.Round3(stats.Quantile(durations, 0.50)),
			P75PitS:      stats.Round3(stats.Quantile(durations, 0.75)),
			BestPitS:     stats.Round3(stats.Min(durations)),
			ConsistencyS: stats.Round3(stats.StdDev(durations)),
			Stops:        len(durations),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AvgPitS != rows[j].AvgPitS {
			return rows[i].AvgPitS < rows[j].AvgPitS
		}
		return rows[i].Team < rows[j].Team
	})
	return rows
}

func raceSummaryRow(round int, events []model.PitStopEvent) RaceSummaryRow {
	durations := make([]float64, 0, len(events))
	fastest := events[0]
	for _, event := range events {
		durations = append(durations, event.DurationS)
		if event.DurationS < fastest.DurationS {
			fastest = event
		}
	}

	q1 := stats.Quantile(durations, 0.25)
	q3 := stats.Quantile(durations, 0.75)

	return RaceSummaryRow{
		Round:         round,
		TotalStops:    len(durations),
		MedianPitS:    stats.Round3(stats.Median(durations)),
		IQRPitS:       stats.Round3(q3 - q1),
		FastestPitS:   stats.Round3(fastest.DurationS),
		FastestTeam:   fastest.Team,
		FastestDriver: fastest.Driver,
	}
}
