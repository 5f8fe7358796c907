package handler

import (
	"context"

	"github.com/iliyamo/bus-ticketing/internal/model"
	"github.com/iliyamo/bus-ticketing/internal/service"
)

// The interfaces below are what the handlers need from the service layer.

type Authenticator interface {
	Register(ctx context.Context, req service.RegisterRequest) (service.Session, error)
	Login(ctx context.Context, email, password string) (service.Session, error)
	Refresh(ctx context.Context, raw string) (service.Session, error)
	Logout(ctx context.Context, actor *service.Actor, raw string) error
	Me(ctx context.Context, actor service.Actor) (model.User, error)
}

type Booker interface {
	BookTicket(ctx context.Context, actor service.Actor, req service.BookingRequest) (model.Ticket, error)
}

type Verifier interface {
	VerifyTicket(ctx context.Context, actor service.Actor, req service.VerifyRequest) (model.TicketDetail, error)
}

type TicketReader interface {
	MyTickets(ctx context.Context, actor service.Actor) ([]model.TicketDetail, error)
	GetTicket(ctx context.Context, actor service.Actor, id uint64) (model.TicketDetail, error)
	TripManifest(ctx context.Context, actor service.Actor, tripID uint64) ([]model.Ticket, error)
}

type TripReader interface {
	ListTrips(ctx context.Context, actor service.Actor, q service.TripSearch) ([]model.TripDetail, error)
	ListTripsForConductor(ctx context.Context, actor service.Actor) ([]model.TripDetail, error)
	GetTrip(ctx context.Context, actor service.Actor, id uint64) (model.TripDetail, error)
}

type FleetManager interface {
	Stats(ctx context.Context, actor service.Actor) (service.Stats, error)
	ListBuses(ctx context.Context, actor service.Actor) ([]model.Bus, error)
	CreateBus(ctx context.Context, actor service.Actor, req service.CreateBusRequest) (model.Bus, error)
	UpdateBusStatus(ctx context.Context, actor service.Actor, id uint64, status model.BusStatus) (model.Bus, error)
	ListRoutes(ctx context.Context, actor service.Actor) ([]model.Route, error)
	CreateRoute(ctx context.Context, actor service.Actor, req service.CreateRouteRequest) (model.Route, error)
	ScheduleTrip(ctx context.Context, actor service.Actor, req service.ScheduleTripRequest) (model.TripDetail, error)
}

var (
	_ Authenticator = (*service.AuthService)(nil)
	_ Booker        = (*service.BookingService)(nil)
	_ Verifier      = (*service.VerificationService)(nil)
	_ TicketReader  = (*service.TicketQueryService)(nil)
	_ TripReader    = (*service.TripQueryService)(nil)
	_ FleetManager  = (*service.FleetService)(nil)
)
