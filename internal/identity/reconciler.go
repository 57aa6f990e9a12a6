// Package identity maps car numbers to driver codes and team names for a
// single round. Rosters change between rounds (reserve drivers, mid-season
// swaps), so the lookup is rebuilt per round and never cached across rounds.
package identity

import (
	"context"
	"fmt"
	"strconv"

	"github.com/okian/boxbox/internal/domain/model"
	fastf1 "github.com/okian/boxbox/internal/providers/fastf1"
	openf1 "github.com/okian/boxbox/internal/providers/openf1"
	"github.com/okian/boxbox/pkg/logger"
)

// ResultsFetcher is the primary provider operation the reconciler needs.
type ResultsFetcher interface {
	Results(ctx context.Context, year, round int) ([]fastf1.ResultRow, error)
}

// DriversFetcher is the secondary provider operation the reconciler needs.
type DriversFetcher interface {
	Drivers(ctx context.Context, sessionKey int) ([]openf1.Record, error)
}

// Reconciler merges the two providers' rosters for one round.
type Reconciler struct {
	results ResultsFetcher
	drivers DriversFetcher
	lg      logger.Logger
}

// New creates a Reconciler over the two providers.
func New(results ResultsFetcher, drivers DriversFetcher) *Reconciler {
	return &Reconciler{
		results: results,
		drivers: drivers,
		lg:      logger.Named("identity"),
	}
}

// Lookup resolves driver identities for the given round. Primary-provider
// fields win where both providers know a driver; a roster fetch failure on
// either side degrades to the other side rather than failing the round.
func (r *Reconciler) Lookup(ctx context.Context, year int, round model.Round) map[int]model.DriverIdentity {
	merged := make(map[int]model.DriverIdentity)

	for number, id := range r.secondaryRoster(ctx, round) {
		merged[number] = id
	}
	for number, id := range r.primaryRoster(ctx, year, round.Number) {
		if existing, ok := merged[number]; ok {
			if id.Code == "" {
				id.Code = existing.Code
			}
			if id.Team == "" {
				id.Team = existing.Team
			}
		}
		merged[number] = id
	}

	return merged
}

// Resolve returns the identity for a car number, falling back to a
// stringified number and an unknown team when no roster knows it.
func Resolve(lookup map[int]model.DriverIdentity, number int) model.DriverIdentity {
	if id, ok := lookup[number]; ok {
		if id.Code == "" {
			id.Code = strconv.Itoa(number)
		}
		if id.Team == "" {
			id.Team = model.UnknownTeam
		}
		return id
	}
	return model.FallbackIdentity(number)
}

func (r *Reconciler) primaryRoster(ctx context.Context, year, round int) map[int]model.DriverIdentity {
	rows, err := r.results.Results(ctx, year, round)
	if err != nil {
		r.lg.Warn(ctx, fmt.Sprintf("round %d: primary roster unavailable", round), logger.Error(err))
		return nil
	}

	roster := make(map[int]model.DriverIdentity, len(rows))
	for _, row := range rows {
		if row.DriverNumber <= 0 {
			continue
		}
		roster[row.DriverNumber] = model.DriverIdentity{
			DriverNumber: row.DriverNumber,
			Code:         row.Abbreviation,
			Team:         row.TeamName,
		}
	}
	return roster
}

func (r *Reconciler) secondaryRoster(ctx context.Context, round model.Round) map[int]model.DriverIdentity {
	records, err := r.drivers.Drivers(ctx, round.SessionKey)
	if err != nil {
		r.lg.Warn(ctx, fmt.Sprintf("round %d: secondary roster unavailable", round.Number), logger.Error(err))
		return nil
	}

	roster := make(map[int]model.DriverIdentity, len(records))
	for _, record := range records {
		number, ok := record.Int("driver_number")
		if !ok || number <= 0 {
			continue
		}
		code, _ := record.String("name_acronym", "abbreviation")
		team, _ := record.String("team_name")
		roster[number] = model.DriverIdentity{
			DriverNumber: number,
			Code:         code,
			Team:         team,
		}
	}
	return roster
}
