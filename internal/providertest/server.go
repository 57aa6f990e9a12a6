package providertest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
)

// Server hosts a Season behind two httptest listeners, one per provider
// wire format. Requests are counted so tests can assert cache behaviour.
type Server struct {
	season   Season
	openF1   *httptest.Server
	fastF1   *httptest.Server
	requests atomic.Int64
}

// NewServer starts both listeners. Callers must Close the server.
func NewServer(season Season) *Server {
	s := &Server{season: season}
	s.openF1 = httptest.NewServer(http.HandlerFunc(s.handleOpenF1))
	s.fastF1 = httptest.NewServer(http.HandlerFunc(s.handleFastF1))
	return s
}

// OpenF1URL is the base URL for the secondary provider's endpoints.
func (s *Server) OpenF1URL() string { return s.openF1.URL }

// FastF1URL is the base URL for the primary provider's endpoints.
func (s *Server) FastF1URL() string { return s.fastF1.URL }

// RequestCount reports how many requests both listeners served in total.
func (s *Server) RequestCount() int64 { return s.requests.Load() }

// Close shuts down both listeners.
func (s *Server) Close() {
	s.openF1.Close()
	s.fastF1.Close()
}

func (s *Server) handleOpenF1(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)
	endpoint := strings.Trim(r.URL.Path, "/")

	if endpoint == "sessions" {
		year, _ := strconv.Atoi(r.URL.Query().Get("year"))
		if year != s.season.Year || !strings.EqualFold(r.URL.Query().Get("session_name"), "Race") {
			writeJSON(w, []any{})
			return
		}
		writeJSON(w, s.season.Sessions())
		return
	}

	sessionKey, err := strconv.Atoi(r.URL.Query().Get("session_key"))
	if err != nil {
		http.Error(w, "session_key required", http.StatusBadRequest)
		return
	}
	round := s.season.round(sessionKey)
	if round == nil {
		writeJSON(w, []any{})
		return
	}

	switch endpoint {
	case "drivers":
		writeJSON(w, round.Drivers)
	case "pit":
		writeJSON(w, round.Pits)
	case "position":
		writeJSON(w, round.Positions)
	case "car_data":
		writeJSON(w, round.CarData)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleFastF1(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)
	endpoint := strings.Trim(r.URL.Path, "/")

	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	if year != s.season.Year {
		writeJSON(w, []any{})
		return
	}

	if endpoint == "schedule" {
		writeJSON(w, s.season.Schedule())
		return
	}

	number, err := strconv.Atoi(r.URL.Query().Get("round"))
	if err != nil {
		http.Error(w, "round required", http.StatusBadRequest)
		return
	}
	round := s.season.byNumber(number)
	if round == nil {
		writeJSON(w, []any{})
		return
	}

	switch endpoint {
	case "results":
		writeJSON(w, round.Results)
	case "laps":
		writeJSON(w, round.Laps)
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
