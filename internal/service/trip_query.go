package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/bus-ticketing/internal/access"
	"github.com/iliyamo/bus-ticketing/internal/model"
	"github.com/iliyamo/bus-ticketing/internal/repository"
)

// DateLayout is the format of the date search parameter.
const DateLayout = "2006-01-02"

// TripSearch holds the optional filters of ListTrips. Origin and
// Destination match route endpoints by case-insensitive substring.
type TripSearch struct {
	Origin      string
	Destination string
	Date        string
}

// TripQueryService answers trip listings.
type TripQueryService struct {
	Trips  TripStore
	Routes RouteStore
	// Location interprets search dates; a date covers midnight to
	// midnight in this zone.
	Location *time.Location
}

func NewTripQueryService(trips TripStore, routes RouteStore, loc *time.Location) *TripQueryService {
	if loc == nil {
		loc = time.Local
	}
	return &TripQueryService{Trips: trips, Routes: routes, Location: loc}
}

// ListTrips returns scheduled trips matching q, earliest departure first.
func (s *TripQueryService) ListTrips(ctx context.Context, actor Actor, q TripSearch) ([]model.TripDetail, error) {
	if err := authorize(actor, access.SearchTrips); err != nil {
		return nil, err
	}
	f := repository.TripFilter{Status: model.TripScheduled}

	if date := strings.TrimSpace(q.Date); date != "" {
		day, err := time.ParseInLocation(DateLayout, date, s.Location)
		if err != nil {
			return nil, Validation("Invalid date, expected YYYY-MM-DD", map[string]any{"date": q.Date})
		}
		f.DepartFrom = day
		f.DepartBefore = day.AddDate(0, 0, 1)
	}

	origin, dest := strings.TrimSpace(q.Origin), strings.TrimSpace(q.Destination)
	if origin != "" || dest != "" {
		ids, err := s.Routes.MatchIDs(ctx, origin, dest)
		if err != nil {
			return nil, Internal(err)
		}
		if len(ids) == 0 {
			return []model.TripDetail{}, nil
		}
		f.RouteIDs = ids
	}

	trips, err := s.Trips.Search(ctx, f)
	if err != nil {
		return nil, Internal(err)
	}
	return trips, nil
}

// ListTripsForConductor returns every trip assigned to the calling
// conductor, in any status, earliest departure first.
func (s *TripQueryService) ListTripsForConductor(ctx context.Context, actor Actor) ([]model.TripDetail, error) {
	if actor.Role != model.RoleConductor {
		return nil, Forbidden("Not authorized")
	}
	trips, err := s.Trips.ListByConductor(ctx, actor.UserID)
	if err != nil {
		return nil, Internal(err)
	}
	return trips, nil
}

// GetTrip returns a trip with its route (including stops) and bus.
func (s *TripQueryService) GetTrip(ctx context.Context, actor Actor, id uint64) (model.TripDetail, error) {
	if err := authorize(actor, access.ViewTrip); err != nil {
		return model.TripDetail{}, err
	}
	trip, err := s.Trips.GetDetail(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.TripDetail{}, NotFound("Trip not found")
	}
	if err != nil {
		return model.TripDetail{}, Internal(err)
	}
	if trip.Route != nil && s.Routes != nil {
		stops, err := s.Routes.Stops(ctx, trip.RouteID)
		if err != nil {
			return model.TripDetail{}, Internal(err)
		}
		trip.Route.Stops = stops
	}
	return trip, nil
}
