// Package pitstops infers validated pit-stop events for a round. The
// secondary provider's pit feed is authoritative; when it yields nothing the
// per-lap timing of the primary provider is mined for pit-entry/pit-exit
// pairs instead.
package pitstops

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/boxbox/internal/domain/model"
	fastf1 "github.com/okian/boxbox/internal/providers/fastf1"
	openf1 "github.com/okian/boxbox/internal/providers/openf1"
	"github.com/okian/boxbox/pkg/logger"
	"github.com/okian/boxbox/pkg/metrics"
)

// durationAliases are the field names known to encode stop duration in the
// secondary provider's pit records. Schema varies by provider version; the
// first alias present anywhere in the result set wins.
var durationAliases = []string{"pit_duration", "stop_duration", "pit_time"}

// PitFetcher is the secondary provider operation the extractor needs.
type PitFetcher interface {
	PitStops(ctx context.Context, sessionKey int) ([]openf1.Record, error)
}

// LapsFetcher is the primary provider operation backing the fallback path.
type LapsFetcher interface {
	Laps(ctx context.Context, year, round int) ([]fastf1.LapRow, error)
}

// Extractor produces validated pit events for one round at a time.
type Extractor struct {
	pits    PitFetcher
	laps    LapsFetcher
	minDurS float64
	maxDurS float64
	lg      logger.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithDurationBounds overrides the validity window for stop durations.
func WithDurationBounds(minS, maxS float64) Option {
	return func(e *Extractor) {
		e.minDurS = minS
		e.maxDurS = maxS
	}
}

// New creates an Extractor with the default 0..120s validity window.
func New(pits PitFetcher, laps LapsFetcher, opts ...Option) *Extractor {
	e := &Extractor{
		pits:    pits,
		laps:    laps,
		minDurS: 0,
		maxDurS: 120,
		lg:      logger.Named("pitstops"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the round's validated pit events and whether the primary
// provider fallback supplied them. Failures on both sources yield an empty
// slice; the round then simply contributes no pit rows.
func (e *Extractor) Extract(ctx context.Context, year int, round model.Round) ([]model.PitStopEvent, bool) {
	events := e.fromSecondary(ctx, round)
	if len(events) > 0 {
		metrics.RecordPitEventsKept(len(events))
		return events, false
	}

	events = e.fromPrimary(ctx, year, round)
	if len(events) == 0 {
		return nil, false
	}
	metrics.RecordPitEventsKept(len(events))
	metrics.RecordPitFallbackRound()
	return events, true
}

// fromSecondary extracts events from the secondary provider's pit feed.
func (e *Extractor) fromSecondary(ctx context.Context, round model.Round) []model.PitStopEvent {
	records, err := e.pits.PitStops(ctx, round.SessionKey)
	if err != nil {
		e.lg.Warn(ctx, fmt.Sprintf("round %d: pit feed unavailable", round.Number), logger.Error(err))
		return nil
	}
	if len(records) == 0 {
		return nil
	}

	durationField := ""
	for _, alias := range durationAliases {
		for _, record := range records {
			if _, ok := record[alias]; ok {
				durationField = alias
				break
			}
		}
		if durationField != "" {
			break
		}
	}
	if durationField == "" {
		e.lg.Warn(ctx, fmt.Sprintf("round %d: pit records carry no known duration field", round.Number))
		return nil
	}

	events := make([]model.PitStopEvent, 0, len(records))
	discarded := 0
	for _, record := range records {
		duration, ok := record.Float(durationField)
		if !ok || duration <= e.minDurS || duration >= e.maxDurS {
			discarded++
			continue
		}
		number, ok := record.Int("driver_number")
		if !ok {
			discarded++
			continue
		}
		lap, _ := record.Int("lap_number")
		events = append(events, model.PitStopEvent{
			Round:        round.Number,
			DriverNumber: number,
			LapNumber:    lap,
			DurationS:    duration,
		})
	}
	metrics.RecordPitEventsDiscarded(discarded)
	return events
}

// fromPrimary derives pit events from the primary provider's lap table: a
// lap with a recorded pit-exit time whose immediately preceding lap has a
// recorded pit-entry time marks one stop, duration = exit - entry.
func (e *Extractor) fromPrimary(ctx context.Context, year int, round model.Round) []model.PitStopEvent {
	rows, err := e.laps.Laps(ctx, year, round.Number)
	if err != nil {
		e.lg.Warn(ctx, fmt.Sprintf("round %d: lap table unavailable", round.Number), logger.Error(err))
		return nil
	}
	return e.fromLapRows(round.Number, rows)
}

func (e *Extractor) fromLapRows(round int, rows []fastf1.LapRow) []model.PitStopEvent {
	byDriver := make(map[string][]fastf1.LapRow)
	for _, row := range rows {
		if row.Driver == "" || row.LapNumber <= 0 {
			continue
		}
		byDriver[row.Driver] = append(byDriver[row.Driver], row)
	}

	drivers := make([]string, 0, len(byDriver))
	for driver := range byDriver {
		drivers = append(drivers, driver)
	}
	sort.Strings(drivers)

	var events []model.PitStopEvent
	for _, driver := range drivers {
		laps := byDriver[driver]
		byLap := make(map[int]fastf1.LapRow, len(laps))
		for _, lap := range laps {
			byLap[lap.LapNumber] = lap
		}

		sort.Slice(laps, func(i, j int) bool { return laps[i].LapNumber < laps[j].LapNumber })
		for _, lap := range laps {
			if lap.PitOutTimeS == nil {
				continue
			}
			prev, ok := byLap[lap.LapNumber-1]
			if !ok || prev.PitInTimeS == nil {
				continue
			}
			duration := *lap.PitOutTimeS - *prev.PitInTimeS
			if duration <= e.minDurS || duration >= e.maxDurS {
				continue
			}
			events = append(events, model.PitStopEvent{
				Round:        round,
				DriverNumber: lap.DriverNumber,
				LapNumber:    lap.LapNumber,
				DurationS:    duration,
				Driver:       driver,
				Team:         lap.Team,
			})
		}
	}
	return events
}
