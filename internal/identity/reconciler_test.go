package identity

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/boxbox/internal/domain/model"
	fastf1 "github.com/okian/boxbox/internal/providers/fastf1"
	openf1 "github.com/okian/boxbox/internal/providers/openf1"
)

type stubResults struct {
	rows []fastf1.ResultRow
	err  error
}

func (s *stubResults) Results(_ context.Context, _, _ int) ([]fastf1.ResultRow, error) {
	return s.rows, s.err
}

type stubDrivers struct {
	records []openf1.Record
	err     error
}

func (s *stubDrivers) Drivers(_ context.Context, _ int) ([]openf1.Record, error) {
	return s.records, s.err
}

func TestLookup(t *testing.T) {
	Convey("Given rosters from both providers", t, func() {
		ctx := context.Background()
		round := model.Round{Number: 3, SessionKey: 9300}

		Convey("When both providers know a driver", func() {
			results := &stubResults{rows: []fastf1.ResultRow{
				{DriverNumber: 1, Abbreviation: "VER", TeamName: "Red Bull Racing"},
			}}
			drivers := &stubDrivers{records: []openf1.Record{
				{"driver_number": float64(1), "name_acronym": "VRS", "team_name": "Oracle Red Bull Racing"},
			}}

			lookup := New(results, drivers).Lookup(ctx, 2025, round)

			Convey("Then primary fields win", func() {
				So(lookup[1].Code, ShouldEqual, "VER")
				So(lookup[1].Team, ShouldEqual, "Red Bull Racing")
			})
		})

		Convey("When the primary roster is missing a field", func() {
			results := &stubResults{rows: []fastf1.ResultRow{
				{DriverNumber: 4, Abbreviation: "NOR", TeamName: ""},
			}}
			drivers := &stubDrivers{records: []openf1.Record{
				{"driver_number": float64(4), "name_acronym": "NOR", "team_name": "McLaren"},
			}}

			lookup := New(results, drivers).Lookup(ctx, 2025, round)

			Convey("Then the secondary value fills the gap", func() {
				So(lookup[4].Team, ShouldEqual, "McLaren")
			})
		})

		Convey("When only the secondary provider knows a driver", func() {
			results := &stubResults{}
			drivers := &stubDrivers{records: []openf1.Record{
				{"driver_number": float64(43), "name_acronym": "COL", "team_name": "Alpine"},
			}}

			lookup := New(results, drivers).Lookup(ctx, 2025, round)

			So(lookup[43].Code, ShouldEqual, "COL")
			So(lookup[43].Team, ShouldEqual, "Alpine")
		})

		Convey("When both roster fetches fail", func() {
			results := &stubResults{err: errors.New("results down")}
			drivers := &stubDrivers{err: errors.New("drivers down")}

			lookup := New(results, drivers).Lookup(ctx, 2025, round)

			Convey("Then the lookup is empty but usable", func() {
				So(lookup, ShouldBeEmpty)
			})
		})

		Convey("When rows carry unusable driver numbers", func() {
			results := &stubResults{rows: []fastf1.ResultRow{
				{DriverNumber: 0, Abbreviation: "???"},
				{DriverNumber: -5, Abbreviation: "NEG"},
			}}
			drivers := &stubDrivers{records: []openf1.Record{
				{"driver_number": "not a number", "name_acronym": "BAD"},
			}}

			lookup := New(results, drivers).Lookup(ctx, 2025, round)

			So(lookup, ShouldBeEmpty)
		})
	})
}

func TestResolve(t *testing.T) {
	Convey("Given a partially populated lookup", t, func() {
		lookup := map[int]model.DriverIdentity{
			16: {DriverNumber: 16, Code: "LEC", Team: "Ferrari"},
			99: {DriverNumber: 99},
		}

		Convey("A known driver resolves fully", func() {
			id := Resolve(lookup, 16)
			So(id.Code, ShouldEqual, "LEC")
			So(id.Team, ShouldEqual, "Ferrari")
		})

		Convey("A known number with empty fields degrades per field", func() {
			id := Resolve(lookup, 99)
			So(id.Code, ShouldEqual, "99")
			So(id.Team, ShouldEqual, model.UnknownTeam)
		})

		Convey("An unknown number gets the fallback identity", func() {
			id := Resolve(lookup, 77)
			So(id.Code, ShouldEqual, "77")
			So(id.Team, ShouldEqual, model.UnknownTeam)
		})
	})
}
