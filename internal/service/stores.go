package service

import (
	"context"
	"time"

	"github.com/iliyamo/bus-ticketing/internal/model"
	"github.com/iliyamo/bus-ticketing/internal/queue"
	"github.com/iliyamo/bus-ticketing/internal/repository"
)

// TripStore is the subset of *repository.TripRepo used by the services.
type TripStore interface {
	GetDetail(ctx context.Context, id uint64) (model.TripDetail, error)
	Search(ctx context.Context, f repository.TripFilter) ([]model.TripDetail, error)
	ListByConductor(ctx context.Context, conductorID uint64) ([]model.TripDetail, error)
	Create(ctx context.Context, t *model.Trip) error
	CountByStatus(ctx context.Context, status model.TripStatus) (int, error)
}

// RouteStore is the subset of *repository.RouteRepo used by the services.
type RouteStore interface {
	MatchIDs(ctx context.Context, origin, destination string) ([]uint64, error)
	Stops(ctx context.Context, routeID uint64) ([]model.Stop, error)
	List(ctx context.Context) ([]model.Route, error)
	GetByID(ctx context.Context, id uint64) (model.Route, error)
	Create(ctx context.Context, rt *model.Route) error
	Count(ctx context.Context) (int, error)
}

// TicketStore is the subset of *repository.TicketRepo used by the services.
type TicketStore interface {
	CreateWithSeat(ctx context.Context, t *model.Ticket) error
	GetByID(ctx context.Context, id uint64) (model.Ticket, error)
	GetByReference(ctx context.Context, ref string) (model.Ticket, error)
	MarkBoarded(ctx context.Context, id uint64, at time.Time) error
	ListByUser(ctx context.Context, userID uint64) ([]model.TicketDetail, error)
	ListByTrip(ctx context.Context, tripID uint64) ([]model.Ticket, error)
	Revenue(ctx context.Context) (float64, error)
}

// BusStore is the subset of *repository.BusRepo used by the services.
type BusStore interface {
	List(ctx context.Context) ([]model.Bus, error)
	GetByID(ctx context.Context, id uint64) (model.Bus, error)
	Create(ctx context.Context, b *model.Bus) error
	UpdateStatus(ctx context.Context, id uint64, status model.BusStatus) error
	Count(ctx context.Context) (int, error)
}

// UserStore is the subset of *repository.UserRepo used by the services.
type UserStore interface {
	Create(ctx context.Context, u repository.NewUser, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	CountByRole(ctx context.Context, role model.Role) (int, error)
}

// TokenStore is the subset of *repository.TokenRepo used by the services.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// QREncoder renders a ticket payload as an image data URL.
type QREncoder interface {
	Encode(p model.QRPayload) (string, error)
}

// EventPublisher delivers ticket events to the broker.
type EventPublisher interface {
	TicketBooked(ctx context.Context, ev queue.TicketBookedEvent) error
	TicketBoarded(ctx context.Context, ev queue.TicketBoardedEvent) error
}

var (
	_ TripStore      = (*repository.TripRepo)(nil)
	_ RouteStore     = (*repository.RouteRepo)(nil)
	_ TicketStore    = (*repository.TicketRepo)(nil)
	_ BusStore       = (*repository.BusRepo)(nil)
	_ UserStore      = (*repository.UserRepo)(nil)
	_ TokenStore     = (*repository.TokenRepo)(nil)
	_ EventPublisher = (*queue.Publisher)(nil)
)
