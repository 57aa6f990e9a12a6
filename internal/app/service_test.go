package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/boxbox/internal/app"
	"github.com/okian/boxbox/internal/config"
	"github.com/okian/boxbox/internal/export"
	fastf1 "github.com/okian/boxbox/internal/providers/fastf1"
	openf1 "github.com/okian/boxbox/internal/providers/openf1"
	"github.com/okian/boxbox/internal/rounds"
	"github.com/okian/boxbox/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// stubSecondary fakes the telemetry provider, keyed by session.
type stubSecondary struct {
	sessions  []openf1.Record
	drivers   map[int][]openf1.Record
	pits      map[int][]openf1.Record
	positions map[int][]openf1.Record
	carData   map[int][]openf1.Record
}

func (s *stubSecondary) Sessions(_ context.Context, _ int, _ string) ([]openf1.Record, error) {
	return s.sessions, nil
}

func (s *stubSecondary) Drivers(_ context.Context, key int) ([]openf1.Record, error) {
	return s.drivers[key], nil
}

func (s *stubSecondary) PitStops(_ context.Context, key int) ([]openf1.Record, error) {
	return s.pits[key], nil
}

func (s *stubSecondary) Positions(_ context.Context, key int) ([]openf1.Record, error) {
	return s.positions[key], nil
}

func (s *stubSecondary) CarData(_ context.Context, key int) ([]openf1.Record, error) {
	return s.carData[key], nil
}

// stubPrimary fakes the schedule/results/laps provider, keyed by round.
type stubPrimary struct {
	schedule []fastf1.ScheduleEntry
	results  map[int][]fastf1.ResultRow
	laps     map[int][]fastf1.LapRow
}

func (s *stubPrimary) Schedule(_ context.Context, _ int) ([]fastf1.ScheduleEntry, error) {
	return s.schedule, nil
}

func (s *stubPrimary) Results(_ context.Context, _, round int) ([]fastf1.ResultRow, error) {
	return s.results[round], nil
}

func (s *stubPrimary) Laps(_ context.Context, _, round int) ([]fastf1.LapRow, error) {
	return s.laps[round], nil
}

func raceSession(key int, start string) openf1.Record {
	return openf1.Record{
		"session_key":  float64(key),
		"session_name": "Race",
		"date_start":   start,
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.OutputDir = t.TempDir()
	return cfg
}

func TestServiceRun_FatalWithoutRounds(t *testing.T) {
	Convey("Given a secondary provider with no race sessions", t, func() {
		cfg := testConfig(t)
		secondary := &stubSecondary{}
		primary := &stubPrimary{schedule: []fastf1.ScheduleEntry{{RoundNumber: 1, EventName: "Australian Grand Prix"}}}

		svc := service.New(cfg, primary, secondary)
		summary, err := svc.Run(context.Background())

		Convey("Then the run aborts before processing anything", func() {
			So(summary, ShouldBeNil)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, rounds.ErrNoRaceSessions.Error())
		})
	})
}

func TestServiceRun_SkipsEmptyRounds(t *testing.T) {
	Convey("Given a round with neither pit nor position data", t, func() {
		cfg := testConfig(t)
		secondary := &stubSecondary{
			sessions: []openf1.Record{raceSession(9100, "2025-03-16T04:00:00+00:00")},
		}
		primary := &stubPrimary{
			schedule: []fastf1.ScheduleEntry{{RoundNumber: 1, EventName: "Australian Grand Prix", EventDate: "2025-03-16"}},
		}

		svc := service.New(cfg, primary, secondary, service.WithRunID("test-run"))
		summary, err := svc.Run(context.Background())

		Convey("Then the round is skipped with a reason but the run succeeds", func() {
			So(err, ShouldBeNil)
			So(summary.RunID, ShouldEqual, "test-run")
			So(summary.RoundsSkipped, ShouldEqual, 1)
			So(summary.RoundsProcessed, ShouldEqual, 0)
			So(summary.Rounds[0].Skipped, ShouldBeTrue)
			So(summary.Rounds[0].SkipReason, ShouldNotBeEmpty)
			So(summary.PitStopsPath, ShouldNotBeEmpty)
			So(summary.OvertakesPath, ShouldNotBeEmpty)
		})
	})
}

func TestServiceRun_PitOnlyRoundIsNotSkipped(t *testing.T) {
	Convey("Given a round with pit data but no position telemetry", t, func() {
		cfg := testConfig(t)
		secondary := &stubSecondary{
			sessions: []openf1.Record{raceSession(9100, "2025-03-16T04:00:00+00:00")},
			pits: map[int][]openf1.Record{
				9100: {{"driver_number": float64(4), "lap_number": float64(12), "pit_duration": 19.9}},
			},
			drivers: map[int][]openf1.Record{
				9100: {{"driver_number": float64(4), "name_acronym": "NOR", "team_name": "McLaren"}},
			},
		}
		primary := &stubPrimary{
			schedule: []fastf1.ScheduleEntry{{RoundNumber: 1, EventName: "Australian Grand Prix"}},
		}

		svc := service.New(cfg, primary, secondary)
		summary, err := svc.Run(context.Background())

		Convey("Then the round counts as processed with pit rows only", func() {
			So(err, ShouldBeNil)
			So(summary.RoundsProcessed, ShouldEqual, 1)
			So(summary.Rounds[0].PitRows, ShouldEqual, 1)
			So(summary.Rounds[0].PassRows, ShouldEqual, 0)
			So(summary.TotalStops, ShouldEqual, 1)
		})
	})
}

func TestServiceRun_DocumentSelection(t *testing.T) {
	Convey("Given a run limited to the pit-stop document", t, func() {
		cfg := testConfig(t)
		secondary := &stubSecondary{
			sessions: []openf1.Record{raceSession(9100, "2025-03-16T04:00:00+00:00")},
			pits: map[int][]openf1.Record{
				9100: {{"driver_number": float64(4), "lap_number": float64(12), "pit_duration": 19.9}},
			},
		}
		primary := &stubPrimary{
			schedule: []fastf1.ScheduleEntry{{RoundNumber: 1, EventName: "Australian Grand Prix"}},
		}

		svc := service.New(cfg, primary, secondary,
			service.WithDocuments(service.DocumentSelection{PitStops: true}))
		summary, err := svc.Run(context.Background())

		Convey("Then only the pit-stop document is written", func() {
			So(err, ShouldBeNil)
			So(summary.PitStopsPath, ShouldNotBeEmpty)
			So(summary.OvertakesPath, ShouldBeEmpty)
			_, statErr := os.Stat(filepath.Join(cfg.OutputDir, export.OvertakesFileName))
			So(os.IsNotExist(statErr), ShouldBeTrue)
		})
	})
}

func TestServiceRun_MetricsDump(t *testing.T) {
	Convey("Given metrics output enabled", t, func() {
		cfg := testConfig(t)
		cfg.WriteMetrics = true
		secondary := &stubSecondary{
			sessions: []openf1.Record{raceSession(9100, "2025-03-16T04:00:00+00:00")},
		}
		primary := &stubPrimary{
			schedule: []fastf1.ScheduleEntry{{RoundNumber: 1, EventName: "Australian Grand Prix"}},
		}

		svc := service.New(cfg, primary, secondary, service.WithWriter(export.NewWriter(cfg.OutputDir)))
		summary, err := svc.Run(context.Background())

		Convey("Then the metrics dump lands next to the documents", func() {
			So(err, ShouldBeNil)
			So(summary.MetricsPath, ShouldNotBeEmpty)
		})
	})
}
