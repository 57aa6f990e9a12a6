package fastf1_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	fastf1 "github.com/okian/boxbox/internal/providers/fastf1"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClient(t *testing.T) {
	Convey("Given a FastF1 client against a fixture server", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Path {
			case "/schedule":
				_, _ = w.Write([]byte(`[
					{"round_number": 1, "event_name": "Australian Grand Prix", "event_date": "2025-03-16"},
					{"round_number": 2, "event_name": "Chinese Grand Prix", "event_date": "2025-03-23T00:00:00Z"}
				]`))
			case "/results":
				if r.URL.Query().Get("round") != "1" || r.URL.Query().Get("session") != "R" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				_, _ = w.Write([]byte(`[
					{"driver_number": 1, "abbreviation": "VER", "team_name": "Red Bull Racing", "position": 1, "points": 25},
					{"driver_number": 4, "abbreviation": "NOR", "team_name": "McLaren", "position": 2, "points": 18}
				]`))
			case "/laps":
				_, _ = w.Write([]byte(`[
					{"driver_number": 1, "driver": "VER", "team": "Red Bull Racing", "lap_number": 14, "pit_in_time_s": 2710.4},
					{"driver_number": 1, "driver": "VER", "team": "Red Bull Racing", "lap_number": 15, "pit_out_time_s": 2733.1}
				]`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer server.Close()

		client, err := fastf1.New(server.URL)
		So(err, ShouldBeNil)

		ctx := context.Background()

		Convey("When fetching the schedule", func() {
			entries, err := client.Schedule(ctx, 2025)

			Convey("Then rounds and dates should decode", func() {
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 2)
				So(entries[0].RoundNumber, ShouldEqual, 1)
				So(entries[0].EventName, ShouldEqual, "Australian Grand Prix")
				So(entries[0].Date().Format("2006-01-02"), ShouldEqual, "2025-03-16")
				So(entries[1].Date().IsZero(), ShouldBeFalse)
			})
		})

		Convey("When fetching results for a round", func() {
			rows, err := client.Results(ctx, 2025, 1)

			Convey("Then the typed rows should decode", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 2)
				So(rows[0].Abbreviation, ShouldEqual, "VER")
				So(rows[1].TeamName, ShouldEqual, "McLaren")
			})
		})

		Convey("When fetching laps for a round", func() {
			rows, err := client.Laps(ctx, 2025, 1)

			Convey("Then pit timestamps should be optional", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 2)
				So(rows[0].PitInTimeS, ShouldNotBeNil)
				So(*rows[0].PitInTimeS, ShouldEqual, 2710.4)
				So(rows[0].PitOutTimeS, ShouldBeNil)
				So(rows[1].PitOutTimeS, ShouldNotBeNil)
			})
		})

		Convey("When a round has no data", func() {
			_, err := client.Results(ctx, 2025, 99)

			Convey("Then the error wraps the request-failed sentinel", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "fastf1 request failed")
			})
		})
	})

	Convey("Given an empty base URL", t, func() {
		_, err := fastf1.New("")

		Convey("Then construction should fail", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

func TestScheduleEntryDate(t *testing.T) {
	Convey("Given schedule date parsing", t, func() {
		Convey("When the date is empty", func() {
			entry := fastf1.ScheduleEntry{EventDate: " "}
			So(entry.Date().IsZero(), ShouldBeTrue)
		})

		Convey("When the date is malformed", func() {
			entry := fastf1.ScheduleEntry{EventDate: "next sunday"}
			So(entry.Date().IsZero(), ShouldBeTrue)
		})

		Convey("When the date is a plain calendar day", func() {
			entry := fastf1.ScheduleEntry{EventDate: "2025-05-04"}
			So(entry.Date().Format("2006-01-02"), ShouldEqual, "2025-05-04")
		})
	})
}
