package providertest_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/boxbox/internal/app"
	"github.com/okian/boxbox/internal/config"
	"github.com/okian/boxbox/internal/export"
	"github.com/okian/boxbox/internal/fetchcache"
	fastf1 "github.com/okian/boxbox/internal/providers/fastf1"
	openf1 "github.com/okian/boxbox/internal/providers/openf1"
	"github.com/okian/boxbox/internal/providertest"
	"github.com/okian/boxbox/internal/rounds"
	"github.com/okian/boxbox/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func TestRoundResolutionOverHTTP(t *testing.T) {
	Convey("Given both providers served from the season fixture", t, func() {
		server := providertest.NewServer(providertest.DefaultSeason(2025))
		defer server.Close()

		secondary, err := openf1.New(server.OpenF1URL())
		So(err, ShouldBeNil)
		primary, err := fastf1.New(server.FastF1URL())
		So(err, ShouldBeNil)

		Convey("When rounds are resolved through the real clients", func() {
			resolved, err := rounds.New(secondary, primary).Resolve(context.Background(), 2025)
			So(err, ShouldBeNil)

			Convey("Then every fixture round pairs a session with a schedule entry", func() {
				So(resolved, ShouldHaveLength, 3)
				So(resolved[0].Event, ShouldEqual, "Australian Grand Prix")
				So(resolved[0].SessionKey, ShouldEqual, 9100)
				So(resolved[2].Event, ShouldEqual, "Japanese Grand Prix")
				So(resolved[2].SessionKey, ShouldEqual, 9300)
			})
		})
	})
}

func TestPipelineOverHTTP(t *testing.T) {
	Convey("Given the full pipeline wired to fixture-backed providers", t, func() {
		server := providertest.NewServer(providertest.DefaultSeason(2025))
		defer server.Close()

		secondary, err := openf1.New(server.OpenF1URL())
		So(err, ShouldBeNil)
		primary, err := fastf1.New(server.FastF1URL())
		So(err, ShouldBeNil)

		cfg := config.New()
		cfg.Year = 2025
		cfg.OutputDir = t.TempDir()

		svc := service.New(cfg, primary, secondary)
		summary, err := svc.Run(context.Background())
		So(err, ShouldBeNil)

		Convey("Then all rounds process and stop counts include the fallback round", func() {
			So(summary.RoundsProcessed, ShouldEqual, 3)
			So(summary.RoundsSkipped, ShouldEqual, 0)
			// Rounds 1 and 3 keep two feed stops each (the 180s row is
			// discarded); round 2's four stops come from lap pairs.
			So(summary.TotalStops, ShouldEqual, 8)
			So(summary.TotalOvertakes, ShouldBeGreaterThan, 0)
		})

		Convey("Then the exported documents cover the whole season", func() {
			raw, err := os.ReadFile(filepath.Join(cfg.OutputDir, export.PitStopsFileName))
			So(err, ShouldBeNil)
			var pits export.PitStopsDocument
			So(json.Unmarshal(raw, &pits), ShouldBeNil)
			So(pits.Rounds, ShouldHaveLength, 3)
			So(pits.RaceSummary, ShouldHaveLength, 3)
			So(pits.Teams, ShouldContain, "Red Bull Racing")

			raw, err = os.ReadFile(filepath.Join(cfg.OutputDir, export.OvertakesFileName))
			So(err, ShouldBeNil)
			var overtakes export.OvertakesDocument
			So(json.Unmarshal(raw, &overtakes), ShouldBeNil)
			So(overtakes.Races, ShouldHaveLength, 3)
			So(overtakes.CircuitIndex, ShouldHaveLength, 3)
		})
	})
}

func TestFetchCacheSuppressesRefetch(t *testing.T) {
	Convey("Given a client backed by the persistent fetch cache", t, func() {
		server := providertest.NewServer(providertest.DefaultSeason(2025))
		defer server.Close()

		cache, err := fetchcache.Open(filepath.Join(t.TempDir(), "fetch_cache.db"))
		So(err, ShouldBeNil)
		defer func() { _ = cache.Close() }()

		secondary, err := openf1.New(server.OpenF1URL(), openf1.WithCache(cache))
		So(err, ShouldBeNil)

		ctx := context.Background()
		first, err := secondary.Sessions(ctx, 2025, "Race")
		So(err, ShouldBeNil)
		served := server.RequestCount()

		Convey("When the same query repeats", func() {
			second, err := secondary.Sessions(ctx, 2025, "Race")
			So(err, ShouldBeNil)

			Convey("Then the response is replayed without another request", func() {
				So(server.RequestCount(), ShouldEqual, served)
				So(second, ShouldHaveLength, len(first))
			})
		})
	})
}
