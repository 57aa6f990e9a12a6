// Package rounds aligns the two providers' round enumerations. Neither
// provider exposes the other's key, so the i-th chronological race session is
// paired with the i-th chronological schedule round. This positional zip is a
// deliberate structural assumption carried over from the published
// methodology: a cancelled or reordered race on one side misaligns silently.
package rounds

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	model "github.com/okian/boxbox/internal/domain/model"
	fastf1 "github.com/okian/boxbox/internal/providers/fastf1"
	openf1 "github.com/okian/boxbox/internal/providers/openf1"
)

// raceSessionName filters the secondary provider's session list.
const raceSessionName = "Race"

// SessionLister is the secondary provider operation the resolver needs.
type SessionLister interface {
	Sessions(ctx context.Context, year int, sessionName string) ([]openf1.Record, error)
}

// ScheduleFetcher is the primary provider operation the resolver needs.
type ScheduleFetcher interface {
	Schedule(ctx context.Context, year int) ([]fastf1.ScheduleEntry, error)
}

// Resolver builds the season's ordered round list.
type Resolver struct {
	sessions SessionLister
	schedule ScheduleFetcher
}

// New creates a Resolver over the two providers.
func New(sessions SessionLister, schedule ScheduleFetcher) *Resolver {
	return &Resolver{sessions: sessions, schedule: schedule}
}

// Resolve returns the rounds common to both providers, zipped positionally.
// Output length is min(usable sessions, usable schedule rounds). An empty
// list on either side is fatal: nothing downstream has meaning without it.
func (r *Resolver) Resolve(ctx context.Context, year int) ([]model.Round, error) {
	sessions, err := r.raceSessions(ctx, year)
	if err != nil {
		return nil, err
	}

	entries, err := r.scheduleRounds(ctx, year)
	if err != nil {
		return nil, err
	}

	count := len(sessions)
	if len(entries) < count {
		count = len(entries)
	}

	rounds := make([]model.Round, 0, count)
	for i := 0; i < count; i++ {
		rounds = append(rounds, model.Round{
			Number:     entries[i].RoundNumber,
			Event:      entries[i].EventName,
			Date:       entries[i].Date(),
			SessionKey: sessions[i].key,
		})
	}
	return rounds, nil
}

// raceSession is one usable secondary-provider race session.
type raceSession struct {
	key   int
	start time.Time
}

// raceSessions fetches, validates, dedupes and chronologically sorts the
// secondary provider's race sessions.
func (r *Resolver) raceSessions(ctx context.Context, year int) ([]raceSession, error) {
	records, err := r.sessions.Sessions(ctx, year, raceSessionName)
	if err != nil {
		return nil, fmt.Errorf("fetch race sessions: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: provider returned no %d race sessions", ErrNoRaceSessions, year)
	}

	if err := openf1.RequireFields(records, map[string][]string{
		"session_key":  {"session_key"},
		"session_name": {"session_name"},
		"date_start":   {"date_start", "date"},
	}); err != nil {
		return nil, err
	}

	sessions := make([]raceSession, 0, len(records))
	for _, record := range records {
		name, _ := record.String("session_name")
		if !strings.EqualFold(name, raceSessionName) {
			continue
		}
		key, ok := record.Int("session_key")
		if !ok {
			continue
		}
		start, _ := record.Time("date_start", "date")
		sessions = append(sessions, raceSession{key: key, start: start})
	}

	if len(sessions) == 0 {
		return nil, fmt.Errorf("%w: no usable %d race sessions after filtering", ErrNoRaceSessions, year)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		// Sessions without a start time sort last.
		if sessions[i].start.IsZero() || sessions[j].start.IsZero() {
			return sessions[j].start.IsZero() && !sessions[i].start.IsZero()
		}
		return sessions[i].start.Before(sessions[j].start)
	})

	// Dedupe after the chronological sort so a duplicated session key keeps
	// its earliest-dated row, not whichever the provider listed first.
	seen := make(map[int]bool, len(sessions))
	deduped := sessions[:0]
	for _, session := range sessions {
		if seen[session.key] {
			continue
		}
		seen[session.key] = true
		deduped = append(deduped, session)
	}
	return deduped, nil
}

// scheduleRounds fetches, filters and sorts the primary provider's schedule.
func (r *Resolver) scheduleRounds(ctx context.Context, year int) ([]fastf1.ScheduleEntry, error) {
	entries, err := r.schedule.Schedule(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("fetch schedule: %w", err)
	}

	seen := make(map[int]bool)
	usable := make([]fastf1.ScheduleEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.RoundNumber <= 0 {
			continue // pre-season testing rows carry round 0
		}
		if seen[entry.RoundNumber] {
			continue
		}
		seen[entry.RoundNumber] = true
		usable = append(usable, entry)
	}

	if len(usable) == 0 {
		return nil, fmt.Errorf("%w: schedule has no positive round numbers for %d", ErrNoScheduleRounds, year)
	}

	sort.SliceStable(usable, func(i, j int) bool {
		return usable[i].RoundNumber < usable[j].RoundNumber
	})
	return usable, nil
}
