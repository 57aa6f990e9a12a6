package rounds

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	fastf1 "github.com/okian/boxbox/internal/providers/fastf1"
	openf1 "github.com/okian/boxbox/internal/providers/openf1"
)

type stubSessions struct {
	records []openf1.Record
	err     error
}

func (s *stubSessions) Sessions(_ context.Context, _ int, _ string) ([]openf1.Record, error) {
	return s.records, s.err
}

type stubSchedule struct {
	entries []fastf1.ScheduleEntry
	err     error
}

func (s *stubSchedule) Schedule(_ context.Context, _ int) ([]fastf1.ScheduleEntry, error) {
	return s.entries, s.err
}

func raceRecord(key int, start string) openf1.Record {
	return openf1.Record{
		"session_key":  float64(key),
		"session_name": "Race",
		"date_start":   start,
	}
}

func TestResolve(t *testing.T) {
	Convey("Given race sessions and a schedule", t, func() {
		ctx := context.Background()

		Convey("When both providers agree on length", func() {
			sessions := &stubSessions{records: []openf1.Record{
				raceRecord(9100, "2025-03-16T04:00:00+00:00"),
				raceRecord(9200, "2025-03-23T07:00:00+00:00"),
			}}
			schedule := &stubSchedule{entries: []fastf1.ScheduleEntry{
				{RoundNumber: 1, EventName: "Australian Grand Prix", EventDate: "2025-03-16"},
				{RoundNumber: 2, EventName: "Chinese Grand Prix", EventDate: "2025-03-23"},
			}}

			rounds, err := New(sessions, schedule).Resolve(ctx, 2025)

			Convey("Then rounds are zipped in order", func() {
				So(err, ShouldBeNil)
				So(rounds, ShouldHaveLength, 2)
				So(rounds[0].Number, ShouldEqual, 1)
				So(rounds[0].Event, ShouldEqual, "Australian Grand Prix")
				So(rounds[0].SessionKey, ShouldEqual, 9100)
				So(rounds[1].SessionKey, ShouldEqual, 9200)
			})
		})

		Convey("When the providers disagree on length", func() {
			sessions := &stubSessions{records: []openf1.Record{
				raceRecord(9100, "2025-03-16T04:00:00+00:00"),
				raceRecord(9200, "2025-03-23T07:00:00+00:00"),
				raceRecord(9300, "2025-04-06T06:00:00+00:00"),
			}}
			schedule := &stubSchedule{entries: []fastf1.ScheduleEntry{
				{RoundNumber: 1, EventName: "Australian Grand Prix"},
				{RoundNumber: 2, EventName: "Chinese Grand Prix"},
			}}

			rounds, err := New(sessions, schedule).Resolve(ctx, 2025)

			Convey("Then the shorter side bounds the result", func() {
				So(err, ShouldBeNil)
				So(rounds, ShouldHaveLength, 2)
			})
		})

		Convey("When session records arrive out of order with duplicates", func() {
			sessions := &stubSessions{records: []openf1.Record{
				raceRecord(9200, "2025-03-23T07:00:00+00:00"),
				raceRecord(9100, "2025-03-16T04:00:00+00:00"),
				raceRecord(9100, "2025-03-16T04:00:00+00:00"),
				{"session_key": float64(9999), "session_name": "Sprint", "date_start": "2025-03-22T03:00:00+00:00"},
			}}
			schedule := &stubSchedule{entries: []fastf1.ScheduleEntry{
				{RoundNumber: 2, EventName: "Chinese Grand Prix"},
				{RoundNumber: 1, EventName: "Australian Grand Prix"},
			}}

			rounds, err := New(sessions, schedule).Resolve(ctx, 2025)

			Convey("Then sessions sort by start and schedule by round", func() {
				So(err, ShouldBeNil)
				So(rounds, ShouldHaveLength, 2)
				So(rounds[0].Number, ShouldEqual, 1)
				So(rounds[0].SessionKey, ShouldEqual, 9100)
				So(rounds[1].Number, ShouldEqual, 2)
				So(rounds[1].SessionKey, ShouldEqual, 9200)
			})
		})

		Convey("When a duplicated session key carries differing start times", func() {
			sessions := &stubSessions{records: []openf1.Record{
				raceRecord(9100, "2025-03-30T04:00:00+00:00"),
				raceRecord(9200, "2025-03-23T07:00:00+00:00"),
				raceRecord(9100, "2025-03-09T04:00:00+00:00"),
			}}
			schedule := &stubSchedule{entries: []fastf1.ScheduleEntry{
				{RoundNumber: 1, EventName: "Australian Grand Prix"},
				{RoundNumber: 2, EventName: "Chinese Grand Prix"},
			}}

			rounds, err := New(sessions, schedule).Resolve(ctx, 2025)

			Convey("Then the earliest-dated row wins, not the first listed", func() {
				So(err, ShouldBeNil)
				So(rounds, ShouldHaveLength, 2)
				So(rounds[0].SessionKey, ShouldEqual, 9100)
				So(rounds[1].SessionKey, ShouldEqual, 9200)
			})
		})

		Convey("When schedule rows carry a zero round number", func() {
			sessions := &stubSessions{records: []openf1.Record{
				raceRecord(9100, "2025-03-16T04:00:00+00:00"),
			}}
			schedule := &stubSchedule{entries: []fastf1.ScheduleEntry{
				{RoundNumber: 0, EventName: "Pre-Season Testing"},
				{RoundNumber: 1, EventName: "Australian Grand Prix"},
			}}

			rounds, err := New(sessions, schedule).Resolve(ctx, 2025)

			Convey("Then the testing row is excluded", func() {
				So(err, ShouldBeNil)
				So(rounds, ShouldHaveLength, 1)
				So(rounds[0].Number, ShouldEqual, 1)
			})
		})

		Convey("When the secondary provider has no race sessions", func() {
			sessions := &stubSessions{records: []openf1.Record{
				{"session_key": float64(9999), "session_name": "Qualifying", "date_start": "2025-03-15T05:00:00+00:00"},
			}}
			schedule := &stubSchedule{entries: []fastf1.ScheduleEntry{
				{RoundNumber: 1, EventName: "Australian Grand Prix"},
			}}

			_, err := New(sessions, schedule).Resolve(ctx, 2025)

			Convey("Then resolution fails fast", func() {
				So(errors.Is(err, ErrNoRaceSessions), ShouldBeTrue)
			})
		})

		Convey("When the secondary provider returns nothing at all", func() {
			sessions := &stubSessions{}
			schedule := &stubSchedule{entries: []fastf1.ScheduleEntry{
				{RoundNumber: 1, EventName: "Australian Grand Prix"},
			}}

			_, err := New(sessions, schedule).Resolve(ctx, 2025)

			So(errors.Is(err, ErrNoRaceSessions), ShouldBeTrue)
		})

		Convey("When the schedule has no usable rounds", func() {
			sessions := &stubSessions{records: []openf1.Record{
				raceRecord(9100, "2025-03-16T04:00:00+00:00"),
			}}
			schedule := &stubSchedule{entries: []fastf1.ScheduleEntry{
				{RoundNumber: 0, EventName: "Pre-Season Testing"},
			}}

			_, err := New(sessions, schedule).Resolve(ctx, 2025)

			So(errors.Is(err, ErrNoScheduleRounds), ShouldBeTrue)
		})

		Convey("When a provider call fails", func() {
			sessions := &stubSessions{err: errors.New("boom")}
			schedule := &stubSchedule{}

			_, err := New(sessions, schedule).Resolve(ctx, 2025)

			So(err, ShouldNotBeNil)
		})
	})
}
