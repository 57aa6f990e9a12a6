// Package service orchestrates one pipeline run: resolve the season's
// rounds, extract pit and pass events per round, accumulate season
// aggregates, and write the export documents. Rounds are processed
// sequentially; a failure inside one round is caught at the round boundary
// and recorded, never propagated.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/boxbox/internal/aggregate"
	"github.com/okian/boxbox/internal/config"
	"github.com/okian/boxbox/internal/domain/model"
	"github.com/okian/boxbox/internal/domain/passes"
	"github.com/okian/boxbox/internal/domain/pitstops"
	"github.com/okian/boxbox/internal/export"
	"github.com/okian/boxbox/internal/identity"
	fastf1 "github.com/okian/boxbox/internal/providers/fastf1"
	openf1 "github.com/okian/boxbox/internal/providers/openf1"
	"github.com/okian/boxbox/internal/rounds"
	"github.com/okian/boxbox/pkg/logger"
	"github.com/okian/boxbox/pkg/metrics"
)

// SecondaryProvider is the telemetry-style provider surface the pipeline
// consumes, keyed by opaque session identifiers.
type SecondaryProvider interface {
	Sessions(ctx context.Context, year int, sessionName string) ([]openf1.Record, error)
	Drivers(ctx context.Context, sessionKey int) ([]openf1.Record, error)
	PitStops(ctx context.Context, sessionKey int) ([]openf1.Record, error)
	Positions(ctx context.Context, sessionKey int) ([]openf1.Record, error)
	CarData(ctx context.Context, sessionKey int) ([]openf1.Record, error)
}

// PrimaryProvider is the schedule/results/laps provider surface, keyed by
// year and round number.
type PrimaryProvider interface {
	Schedule(ctx context.Context, year int) ([]fastf1.ScheduleEntry, error)
	Results(ctx context.Context, year, round int) ([]fastf1.ResultRow, error)
	Laps(ctx context.Context, year, round int) ([]fastf1.LapRow, error)
}

// RoundOutcome records how one round fared.
type RoundOutcome struct {
	Round           int
	Event           string
	PitRows         int
	PassRows        int
	UsedPitFallback bool
	Skipped         bool
	SkipReason      string
}

// RunSummary is the per-run result surfaced to the CLI.
type RunSummary struct {
	RunID           string
	Year            int
	Rounds          []RoundOutcome
	RoundsProcessed int
	RoundsSkipped   int
	TotalStops      int
	TotalOvertakes  int
	PitStopsPath    string
	OvertakesPath   string
	MetricsPath     string
}

// DocumentSelection narrows which export documents a run writes. The zero
// value is treated as "write everything".
type DocumentSelection struct {
	PitStops  bool
	Overtakes bool
}

// Service runs the analytics pipeline.
type Service struct {
	cfg       *config.Config
	primary   PrimaryProvider
	secondary SecondaryProvider
	writer    *export.Writer
	docs      DocumentSelection
	runID     string
	lg        logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWriter overrides the export writer.
func WithWriter(w *export.Writer) Option {
	return func(s *Service) {
		if w != nil {
			s.writer = w
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(lg logger.Logger) Option {
	return func(s *Service) {
		if lg != nil {
			s.lg = lg
		}
	}
}

// WithDocuments limits the run to a subset of the export documents.
func WithDocuments(sel DocumentSelection) Option {
	return func(s *Service) {
		if sel.PitStops || sel.Overtakes {
			s.docs = sel
		}
	}
}

// WithRunID pins the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.runID = id
		}
	}
}

// New constructs a Service over the two providers.
func New(cfg *config.Config, primary PrimaryProvider, secondary SecondaryProvider, opts ...Option) *Service {
	s := &Service{
		cfg:       cfg,
		primary:   primary,
		secondary: secondary,
		writer:    export.NewWriter(cfg.OutputDir),
		docs:      DocumentSelection{PitStops: true, Overtakes: true},
		runID:     uuid.NewString(),
		lg:        logger.Named("pipeline"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the whole pipeline once. Only round-list resolution and
// document writing can fail the run; everything per-round degrades.
func (s *Service) Run(ctx context.Context) (*RunSummary, error) {
	s.lg.Info(ctx, "pipeline run starting",
		logger.String("run_id", s.runID),
		logger.Int("year", s.cfg.Year),
	)

	roundList, err := rounds.New(s.secondary, s.primary).Resolve(ctx, s.cfg.Year)
	if err != nil {
		return nil, fmt.Errorf("resolve rounds: %w", err)
	}

	reconciler := identity.New(s.primary, s.secondary)
	extractor := pitstops.New(s.secondary, s.primary,
		pitstops.WithDurationBounds(s.cfg.PitMinDurationS, s.cfg.PitMaxDurationS))

	pitAgg := aggregate.NewPitAggregator()
	passAgg := aggregate.NewPassAggregator()

	summary := &RunSummary{RunID: s.runID, Year: s.cfg.Year}

	for _, round := range roundList {
		outcome := s.processRound(ctx, round, reconciler, extractor, pitAgg, passAgg)
		summary.Rounds = append(summary.Rounds, outcome)
		if outcome.Skipped {
			summary.RoundsSkipped++
			metrics.RecordRoundSkipped(outcome.SkipReason)
			s.lg.Warn(ctx, "round skipped",
				logger.Int("round", round.Number),
				logger.String("reason", outcome.SkipReason),
			)
			continue
		}
		summary.RoundsProcessed++
		metrics.RecordRoundProcessed()
	}

	summary.TotalStops = pitAgg.TotalStops()
	for _, race := range passAgg.Races() {
		summary.TotalOvertakes += race.TotalOvertakes
	}

	if s.docs.PitStops {
		pitPath, err := s.writer.WriteJSON(ctx, export.PitStopsFileName, export.BuildPitStops(roundList, pitAgg))
		if err != nil {
			return nil, err
		}
		summary.PitStopsPath = pitPath
	}

	if s.docs.Overtakes {
		overtakePath, err := s.writer.WriteJSON(ctx, export.OvertakesFileName, export.BuildOvertakes(passAgg))
		if err != nil {
			return nil, err
		}
		summary.OvertakesPath = overtakePath
	}

	if s.cfg.WriteMetrics {
		metricsPath, err := s.writer.WriteMetrics(ctx)
		if err != nil {
			return nil, err
		}
		summary.MetricsPath = metricsPath
	}

	s.lg.Info(ctx, "pipeline run finished",
		logger.String("run_id", s.runID),
		logger.Int("rounds_processed", summary.RoundsProcessed),
		logger.Int("rounds_skipped", summary.RoundsSkipped),
		logger.Int("total_stops", summary.TotalStops),
		logger.Int("total_overtakes", summary.TotalOvertakes),
	)
	return summary, nil
}

// processRound extracts, annotates, and accumulates one round. It never
// returns an error; missing data shows up as a skip or a degraded metric.
func (s *Service) processRound(
	ctx context.Context,
	round model.Round,
	reconciler *identity.Reconciler,
	extractor *pitstops.Extractor,
	pitAgg *aggregate.PitAggregator,
	passAgg *aggregate.PassAggregator,
) RoundOutcome {
	outcome := RoundOutcome{Round: round.Number, Event: round.Event}

	lookup := reconciler.Lookup(ctx, s.cfg.Year, round)

	events, usedFallback := extractor.Extract(ctx, s.cfg.Year, round)
	for i := range events {
		id := identity.Resolve(lookup, events[i].DriverNumber)
		if events[i].Driver == "" {
			events[i].Driver = id.Code
		}
		if events[i].Team == "" {
			events[i].Team = id.Team
		}
	}
	outcome.PitRows = len(events)
	outcome.UsedPitFallback = usedFallback
	pitAgg.AddRound(round, events, usedFallback)

	positionRecords, err := s.secondary.Positions(ctx, round.SessionKey)
	if err != nil {
		s.lg.Warn(ctx, "position feed unavailable",
			logger.Int("round", round.Number),
			logger.Error(err),
		)
		positionRecords = nil
	}

	if len(events) > 0 {
		outcomes, note, ok := pitstops.UndercutOutcomes(positionRecords, events, s.cfg.UndercutLookaheadLaps)
		pitAgg.AddUndercut(outcomes, note, ok)
	}

	samples := passes.ParsePositions(positionRecords)
	if len(samples) == 0 {
		if outcome.PitRows == 0 {
			outcome.Skipped = true
			outcome.SkipReason = "no pit or position data"
		}
		return outcome
	}

	cooldown := secondsToDuration(s.cfg.PassCooldownS)
	passEvents, totals := passes.Detect(samples, cooldown)
	metrics.RecordPassEvents(len(passEvents))

	totalOvertakes := 0
	for _, event := range passEvents {
		totalOvertakes += event.PositionsGained
	}

	totalLaps := passes.TotalLaps(samples)
	if totalLaps == 0 {
		totalLaps = s.lapCountFallback(ctx, round.Number)
	}

	drsShare := s.drsShare(ctx, round, passEvents)

	passAgg.AddRound(round, totalOvertakes, passes.PassRate(totalOvertakes, totalLaps), drsShare)
	passAgg.AddDriverTotals(totals, lookup)
	outcome.PassRows = len(passEvents)
	return outcome
}

// lapCountFallback counts completed laps from the primary provider's lap
// table when the position telemetry carried no lap counters.
func (s *Service) lapCountFallback(ctx context.Context, round int) int {
	rows, err := s.primary.Laps(ctx, s.cfg.Year, round)
	if err != nil {
		s.lg.Warn(ctx, "lap count fallback unavailable",
			logger.Int("round", round),
			logger.Error(err),
		)
		return 0
	}
	count := 0
	for _, row := range rows {
		if row.Driver != "" {
			count++
		}
	}
	return count
}

// drsShare computes the best-effort DRS proxy, nil when the car-signal
// stream cannot be aligned with any pass.
func (s *Service) drsShare(ctx context.Context, round model.Round, passEvents []model.PassEvent) *float64 {
	if len(passEvents) == 0 {
		return nil
	}
	records, err := s.secondary.CarData(ctx, round.SessionKey)
	if err != nil {
		s.lg.Warn(ctx, "car-signal feed unavailable",
			logger.Int("round", round.Number),
			logger.Error(err),
		)
		return nil
	}
	return passes.DRSShare(passEvents, passes.ParseDRS(records), secondsToDuration(s.cfg.DRSWindowS))
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
