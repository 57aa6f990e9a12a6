// Package passes infers overtakes from position telemetry. A pass is a
// numeric position gain between consecutive samples of the same driver,
// de-duplicated by a cooldown window so one on-track move sampled at high
// frequency is not counted repeatedly. Genuine rapid multi-car passes inside
// the cooldown are undercounted; that is a documented limitation of the
// proxy, not something to silently correct.
package passes

import (
	"sort"
	"time"

	"github.com/okian/boxbox/internal/domain/model"
	"github.com/okian/boxbox/internal/domain/stats"
	openf1 "github.com/okian/boxbox/internal/providers/openf1"
)

// ParsePositions converts raw position records into time-ordered samples.
// Rows missing a driver number, position, or timestamp are dropped; the lap
// counter is optional.
func ParsePositions(records []openf1.Record) []model.PositionSample {
	samples := make([]model.PositionSample, 0, len(records))
	for _, record := range records {
		number, ok := record.Int("driver_number")
		if !ok {
			continue
		}
		position, ok := record.Int("position")
		if !ok {
			continue
		}
		ts, ok := record.Time("date")
		if !ok {
			continue
		}
		lap, _ := record.Int("lap_number")
		samples = append(samples, model.PositionSample{
			DriverNumber: number,
			TS:           ts,
			Position:     position,
			LapNumber:    lap,
		})
	}
	sort.SliceStable(samples, func(i, j int) bool {
		if samples[i].DriverNumber != samples[j].DriverNumber {
			return samples[i].DriverNumber < samples[j].DriverNumber
		}
		return samples[i].TS.Before(samples[j].TS)
	})
	return samples
}

// Detect walks each driver's position series pairwise and emits one
// PassEvent per position gain outside the cooldown window. A gain inside
// the cooldown of the driver's previous pass is suppressed entirely and
// does not restart the window. Per-driver totals accumulate all counted
// gains; the net figure is first sampled position minus last.
func Detect(samples []model.PositionSample, cooldown time.Duration) ([]model.PassEvent, map[int]model.DriverPassTotals) {
	byDriver := make(map[int][]model.PositionSample)
	for _, sample := range samples {
		byDriver[sample.DriverNumber] = append(byDriver[sample.DriverNumber], sample)
	}

	drivers := make([]int, 0, len(byDriver))
	for number := range byDriver {
		drivers = append(drivers, number)
	}
	sort.Ints(drivers)

	var events []model.PassEvent
	totals := make(map[int]model.DriverPassTotals, len(drivers))

	for _, number := range drivers {
		series := byDriver[number]
		sort.SliceStable(series, func(i, j int) bool { return series[i].TS.Before(series[j].TS) })

		passesMade := 0
		var lastPass time.Time
		prev := series[0].Position

		for _, sample := range series[1:] {
			gain := prev - sample.Position
			prev = sample.Position
			if gain < 1 {
				continue
			}
			if !lastPass.IsZero() && sample.TS.Sub(lastPass) < cooldown {
				continue
			}
			passesMade += gain
			events = append(events, model.PassEvent{
				DriverNumber:    number,
				TS:              sample.TS,
				PositionsGained: gain,
			})
			lastPass = sample.TS
		}

		totals[number] = model.DriverPassTotals{
			PassesMade:         passesMade,
			PositionsGainedNet: series[0].Position - series[len(series)-1].Position,
		}
	}

	return events, totals
}

// TotalLaps sums each driver's highest observed lap number. Zero means the
// telemetry carried no lap counters and the caller should fall back to the
// primary provider's lap table.
func TotalLaps(samples []model.PositionSample) int {
	maxLaps := make(map[int]int)
	for _, sample := range samples {
		if sample.LapNumber <= 0 {
			continue
		}
		if sample.LapNumber > maxLaps[sample.DriverNumber] {
			maxLaps[sample.DriverNumber] = sample.LapNumber
		}
	}
	total := 0
	for _, laps := range maxLaps {
		total += laps
	}
	return total
}

// PassRate is overtakes per completed lap, zero when no laps are known.
func PassRate(totalOvertakes, totalLaps int) float64 {
	if totalLaps <= 0 {
		return 0
	}
	return float64(totalOvertakes) / float64(totalLaps)
}

// drsAliases are the field names known to carry the DRS flag.
var drsAliases = []string{"drs", "drs_open"}

// ParseDRS extracts asserted DRS samples from raw car-signal records.
func ParseDRS(records []openf1.Record) []model.DRSSample {
	samples := make([]model.DRSSample, 0, len(records))
	for _, record := range records {
		number, ok := record.Int("driver_number")
		if !ok {
			continue
		}
		flag, ok := record.Float(drsAliases...)
		if !ok || flag <= 0 {
			continue
		}
		ts, ok := record.Time("date")
		if !ok {
			continue
		}
		samples = append(samples, model.DRSSample{DriverNumber: number, TS: ts})
	}
	sort.SliceStable(samples, func(i, j int) bool {
		if samples[i].DriverNumber != samples[j].DriverNumber {
			return samples[i].DriverNumber < samples[j].DriverNumber
		}
		return samples[i].TS.Before(samples[j].TS)
	})
	return samples
}

// DRSShare returns the share of counted pass gains where the passing
// driver's DRS flag was asserted within the window preceding the pass. The
// result is nil when no pass has any aligned DRS sample for its driver,
// which callers must surface as "no data" rather than zero assistance.
func DRSShare(events []model.PassEvent, samples []model.DRSSample, window time.Duration) *float64 {
	if len(events) == 0 || len(samples) == 0 {
		return nil
	}

	byDriver := make(map[int][]time.Time)
	for _, sample := range samples {
		byDriver[sample.DriverNumber] = append(byDriver[sample.DriverNumber], sample.TS)
	}

	aligned := 0
	assisted := 0
	totalGains := 0
	for _, event := range events {
		totalGains += event.PositionsGained

		timestamps, ok := byDriver[event.DriverNumber]
		if !ok {
			continue
		}
		aligned++

		windowStart := event.TS.Add(-window)
		for _, ts := range timestamps {
			if !ts.Before(windowStart) && !ts.After(event.TS) {
				assisted += event.PositionsGained
				break
			}
		}
	}

	if aligned == 0 || totalGains == 0 {
		return nil
	}
	share := stats.Round3(float64(assisted) / float64(totalGains))
	return &share
}
