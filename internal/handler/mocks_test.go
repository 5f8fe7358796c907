package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/bus-ticketing/internal/model"
	"github.com/iliyamo/bus-ticketing/internal/service"
)

type MockAuth struct{ mock.Mock }

func (m *MockAuth) Register(ctx context.Context, req service.RegisterRequest) (service.Session, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(service.Session), args.Error(1)
}

func (m *MockAuth) Login(ctx context.Context, email, password string) (service.Session, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(service.Session), args.Error(1)
}

func (m *MockAuth) Refresh(ctx context.Context, raw string) (service.Session, error) {
	args := m.Called(ctx, raw)
	return args.Get(0).(service.Session), args.Error(1)
}

func (m *MockAuth) Logout(ctx context.Context, actor *service.Actor, raw string) error {
	args := m.Called(ctx, actor, raw)
	return args.Error(0)
}

func (m *MockAuth) Me(ctx context.Context, actor service.Actor) (model.User, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).(model.User), args.Error(1)
}

type MockBooker struct{ mock.Mock }

func (m *MockBooker) BookTicket(ctx context.Context, actor service.Actor, req service.BookingRequest) (model.Ticket, error) {
	args := m.Called(ctx, actor, req)
	return args.Get(0).(model.Ticket), args.Error(1)
}

type MockVerifier struct{ mock.Mock }

func (m *MockVerifier) VerifyTicket(ctx context.Context, actor service.Actor, req service.VerifyRequest) (model.TicketDetail, error) {
	args := m.Called(ctx, actor, req)
	return args.Get(0).(model.TicketDetail), args.Error(1)
}

type MockTickets struct{ mock.Mock }

func (m *MockTickets) MyTickets(ctx context.Context, actor service.Actor) ([]model.TicketDetail, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TicketDetail), args.Error(1)
}

func (m *MockTickets) GetTicket(ctx context.Context, actor service.Actor, id uint64) (model.TicketDetail, error) {
	args := m.Called(ctx, actor, id)
	return args.Get(0).(model.TicketDetail), args.Error(1)
}

func (m *MockTickets) TripManifest(ctx context.Context, actor service.Actor, tripID uint64) ([]model.Ticket, error) {
	args := m.Called(ctx, actor, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Ticket), args.Error(1)
}

type MockTrips struct{ mock.Mock }

func (m *MockTrips) ListTrips(ctx context.Context, actor service.Actor, q service.TripSearch) ([]model.TripDetail, error) {
	args := m.Called(ctx, actor, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TripDetail), args.Error(1)
}

func (m *MockTrips) ListTripsForConductor(ctx context.Context, actor service.Actor) ([]model.TripDetail, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TripDetail), args.Error(1)
}

func (m *MockTrips) GetTrip(ctx context.Context, actor service.Actor, id uint64) (model.TripDetail, error) {
	args := m.Called(ctx, actor, id)
	return args.Get(0).(model.TripDetail), args.Error(1)
}

type MockFleet struct{ mock.Mock }

func (m *MockFleet) Stats(ctx context.Context, actor service.Actor) (service.Stats, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).(service.Stats), args.Error(1)
}

func (m *MockFleet) ListBuses(ctx context.Context, actor service.Actor) ([]model.Bus, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Bus), args.Error(1)
}

func (m *MockFleet) CreateBus(ctx context.Context, actor service.Actor, req service.CreateBusRequest) (model.Bus, error) {
	args := m.Called(ctx, actor, req)
	return args.Get(0).(model.Bus), args.Error(1)
}

func (m *MockFleet) UpdateBusStatus(ctx context.Context, actor service.Actor, id uint64, status model.BusStatus) (model.Bus, error) {
	args := m.Called(ctx, actor, id, status)
	return args.Get(0).(model.Bus), args.Error(1)
}

func (m *MockFleet) ListRoutes(ctx context.Context, actor service.Actor) ([]model.Route, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Route), args.Error(1)
}

func (m *MockFleet) CreateRoute(ctx context.Context, actor service.Actor, req service.CreateRouteRequest) (model.Route, error) {
	args := m.Called(ctx, actor, req)
	return args.Get(0).(model.Route), args.Error(1)
}

func (m *MockFleet) ScheduleTrip(ctx context.Context, actor service.Actor, req service.ScheduleTripRequest) (model.TripDetail, error) {
	args := m.Called(ctx, actor, req)
	return args.Get(0).(model.TripDetail), args.Error(1)
}

var (
	_ Authenticator = (*MockAuth)(nil)
	_ Booker        = (*MockBooker)(nil)
	_ Verifier      = (*MockVerifier)(nil)
	_ TicketReader  = (*MockTickets)(nil)
	_ TripReader    = (*MockTrips)(nil)
	_ FleetManager  = (*MockFleet)(nil)
)
