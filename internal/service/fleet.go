package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/bus-ticketing/internal/access"
	"github.com/iliyamo/bus-ticketing/internal/model"
	"github.com/iliyamo/bus-ticketing/internal/repository"
)

// Stats is the admin dashboard summary.
type Stats struct {
	TotalUsers  int     `json:"totalUsers"`
	TotalBuses  int     `json:"totalBuses"`
	TotalRoutes int     `json:"totalRoutes"`
	ActiveTrips int     `json:"activeTrips"`
	Revenue     float64 `json:"revenue"`
}

// CreateBusRequest is the input of CreateBus. Type is a shorthand for the
// feature set: "AC", "Luxury" or anything else.
type CreateBusRequest struct {
	RegistrationNumber string
	Model              string
	Capacity           int
	Type               string
	Status             model.BusStatus
}

// CreateRouteRequest is the input of CreateRoute.
type CreateRouteRequest struct {
	Name              string
	Code              string
	Origin            string
	Destination       string
	Distance          float64
	EstimatedDuration int
	BaseFare          float64
	Stops             []model.Stop
}

// ScheduleTripRequest is the input of ScheduleTrip.
type ScheduleTripRequest struct {
	RouteID            uint64
	BusID              uint64
	ConductorID        *uint64
	ScheduledDeparture time.Time
	ScheduledArrival   time.Time
}

// FleetService implements the admin operations on buses, routes and trips.
type FleetService struct {
	Users   UserStore
	Buses   BusStore
	Routes  RouteStore
	Trips   TripStore
	Tickets TicketStore
}

func NewFleetService(users UserStore, buses BusStore, routes RouteStore, trips TripStore, tickets TicketStore) *FleetService {
	return &FleetService{Users: users, Buses: buses, Routes: routes, Trips: trips, Tickets: tickets}
}

// Stats counts passengers, buses, routes and scheduled trips and sums the
// fares of tickets that are not cancelled.
func (s *FleetService) Stats(ctx context.Context, actor Actor) (Stats, error) {
	if err := authorize(actor, access.ViewDashboard); err != nil {
		return Stats{}, err
	}
	var (
		st  Stats
		err error
	)
	if st.TotalUsers, err = s.Users.CountByRole(ctx, model.RolePassenger); err != nil {
		return Stats{}, Internal(err)
	}
	if st.TotalBuses, err = s.Buses.Count(ctx); err != nil {
		return Stats{}, Internal(err)
	}
	if st.TotalRoutes, err = s.Routes.Count(ctx); err != nil {
		return Stats{}, Internal(err)
	}
	if st.ActiveTrips, err = s.Trips.CountByStatus(ctx, model.TripScheduled); err != nil {
		return Stats{}, Internal(err)
	}
	if st.Revenue, err = s.Tickets.Revenue(ctx); err != nil {
		return Stats{}, Internal(err)
	}
	return st, nil
}

func (s *FleetService) ListBuses(ctx context.Context, actor Actor) ([]model.Bus, error) {
	if err := authorize(actor, access.ManageFleet); err != nil {
		return nil, err
	}
	buses, err := s.Buses.List(ctx)
	if err != nil {
		return nil, Internal(err)
	}
	return buses, nil
}

// CreateBus registers a bus. A registration number already in use is a
// Duplicate.
func (s *FleetService) CreateBus(ctx context.Context, actor Actor, req CreateBusRequest) (model.Bus, error) {
	if err := authorize(actor, access.ManageFleet); err != nil {
		return model.Bus{}, err
	}
	reg := strings.TrimSpace(req.RegistrationNumber)
	if reg == "" || strings.TrimSpace(req.Model) == "" {
		return model.Bus{}, Validation("registrationNumber and model are required", nil)
	}
	if req.Capacity <= 0 {
		return model.Bus{}, Validation("capacity must be positive", nil)
	}
	status := req.Status
	if status == "" {
		status = model.BusActive
	}
	if !status.Valid() {
		return model.Bus{}, Validation(fmt.Sprintf("invalid bus status %q", status), nil)
	}
	b := model.Bus{
		RegistrationNumber: reg,
		Model:              strings.TrimSpace(req.Model),
		Capacity:           req.Capacity,
		Status:             status,
		Features:           model.FeaturesForType(req.Type),
	}
	if err := s.Buses.Create(ctx, &b); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.Bus{}, Duplicate("Bus already exists")
		}
		return model.Bus{}, Internal(err)
	}
	created, err := s.Buses.GetByID(ctx, b.ID)
	if err != nil {
		return b, nil
	}
	return created, nil
}

// UpdateBusStatus changes the status of a bus and returns it. An empty
// status leaves the bus unchanged.
func (s *FleetService) UpdateBusStatus(ctx context.Context, actor Actor, id uint64, status model.BusStatus) (model.Bus, error) {
	if err := authorize(actor, access.ManageFleet); err != nil {
		return model.Bus{}, err
	}
	if status == "" {
		b, err := s.Buses.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return model.Bus{}, NotFound("Bus not found")
		}
		if err != nil {
			return model.Bus{}, Internal(err)
		}
		return b, nil
	}
	if !status.Valid() {
		return model.Bus{}, Validation(fmt.Sprintf("invalid bus status %q", status), nil)
	}
	if err := s.Buses.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Bus{}, NotFound("Bus not found")
		}
		return model.Bus{}, Internal(err)
	}
	b, err := s.Buses.GetByID(ctx, id)
	if err != nil {
		return model.Bus{}, Internal(err)
	}
	return b, nil
}

func (s *FleetService) ListRoutes(ctx context.Context, actor Actor) ([]model.Route, error) {
	if err := authorize(actor, access.ManageFleet); err != nil {
		return nil, err
	}
	routes, err := s.Routes.List(ctx)
	if err != nil {
		return nil, Internal(err)
	}
	return routes, nil
}

// CreateRoute stores a route with its stops. Stops without a sequence are
// numbered in the order given.
func (s *FleetService) CreateRoute(ctx context.Context, actor Actor, req CreateRouteRequest) (model.Route, error) {
	if err := authorize(actor, access.ManageFleet); err != nil {
		return model.Route{}, err
	}
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", req.Name}, {"code", req.Code}, {"origin", req.Origin}, {"destination", req.Destination},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return model.Route{}, Validation("Missing required fields", map[string]any{"fields": missing})
	}
	if req.Distance < 0 || req.EstimatedDuration < 0 || req.BaseFare < 0 {
		return model.Route{}, Validation("distance, estimatedDuration and baseFare must not be negative", nil)
	}
	stops := make([]model.Stop, len(req.Stops))
	seen := map[int]bool{}
	for i, st := range req.Stops {
		if strings.TrimSpace(st.Name) == "" {
			return model.Route{}, Validation(fmt.Sprintf("stop %d has no name", i+1), nil)
		}
		if st.Sequence == 0 {
			st.Sequence = i + 1
		}
		if seen[st.Sequence] {
			return model.Route{}, Validation(fmt.Sprintf("duplicate stop sequence %d", st.Sequence), nil)
		}
		seen[st.Sequence] = true
		stops[i] = st
	}
	rt := model.Route{
		Name:              strings.TrimSpace(req.Name),
		Code:              strings.TrimSpace(req.Code),
		Origin:            strings.TrimSpace(req.Origin),
		Destination:       strings.TrimSpace(req.Destination),
		Distance:          req.Distance,
		EstimatedDuration: req.EstimatedDuration,
		BaseFare:          req.BaseFare,
		IsActive:          true,
		Stops:             stops,
	}
	if err := s.Routes.Create(ctx, &rt); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.Route{}, Duplicate("Route already exists")
		}
		return model.Route{}, Internal(err)
	}
	return rt, nil
}

// ScheduleTrip creates a scheduled trip whose available seats equal the
// capacity of the bus. The bus must be active and the optional conductor
// must hold the conductor role.
func (s *FleetService) ScheduleTrip(ctx context.Context, actor Actor, req ScheduleTripRequest) (model.TripDetail, error) {
	if err := authorize(actor, access.ManageFleet); err != nil {
		return model.TripDetail{}, err
	}
	if req.RouteID == 0 || req.BusID == 0 || req.ScheduledDeparture.IsZero() || req.ScheduledArrival.IsZero() {
		return model.TripDetail{}, Validation("routeId, busId, scheduledDeparture and scheduledArrival are required", nil)
	}
	if !req.ScheduledArrival.After(req.ScheduledDeparture) {
		return model.TripDetail{}, Validation("scheduledArrival must be after scheduledDeparture", nil)
	}

	bus, err := s.Buses.GetByID(ctx, req.BusID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.TripDetail{}, NotFound("Bus not found")
	}
	if err != nil {
		return model.TripDetail{}, Internal(err)
	}
	if bus.Status != model.BusActive {
		return model.TripDetail{}, Validation("Bus is not active", map[string]any{"status": bus.Status})
	}
	if _, err := s.Routes.GetByID(ctx, req.RouteID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.TripDetail{}, NotFound("Route not found")
		}
		return model.TripDetail{}, Internal(err)
	}
	if req.ConductorID != nil {
		u, err := s.Users.GetByID(ctx, *req.ConductorID)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && u.Role != model.RoleConductor) {
			return model.TripDetail{}, Validation("conductorId must reference a conductor", nil)
		}
		if err != nil {
			return model.TripDetail{}, Internal(err)
		}
	}

	t := model.Trip{
		RouteID:            req.RouteID,
		BusID:              req.BusID,
		ConductorID:        req.ConductorID,
		ScheduledDeparture: req.ScheduledDeparture,
		ScheduledArrival:   req.ScheduledArrival,
		Status:             model.TripScheduled,
		AvailableSeats:     bus.Capacity,
	}
	if err := s.Trips.Create(ctx, &t); err != nil {
		return model.TripDetail{}, Internal(err)
	}
	d, err := s.Trips.GetDetail(ctx, t.ID)
	if err != nil {
		return model.TripDetail{Trip: t}, nil
	}
	return d, nil
}
