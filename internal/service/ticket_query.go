package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/iliyamo/bus-ticketing/internal/access"
	"github.com/iliyamo/bus-ticketing/internal/model"
	"github.com/iliyamo/bus-ticketing/internal/repository"
)

// TicketQueryService answers ticket lookups.
type TicketQueryService struct {
	Tickets TicketStore
	Trips   TripStore
}

func NewTicketQueryService(tickets TicketStore, trips TripStore) *TicketQueryService {
	return &TicketQueryService{Tickets: tickets, Trips: trips}
}

// MyTickets returns the actor's own tickets newest first.
func (s *TicketQueryService) MyTickets(ctx context.Context, actor Actor) ([]model.TicketDetail, error) {
	if err := authorize(actor, access.ListOwnTickets); err != nil {
		return nil, err
	}
	tickets, err := s.Tickets.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, Internal(err)
	}
	return tickets, nil
}

// GetTicket returns one ticket with its trip inlined. Passengers may only
// read their own tickets.
func (s *TicketQueryService) GetTicket(ctx context.Context, actor Actor, id uint64) (model.TicketDetail, error) {
	if err := authorize(actor, access.ViewTicket); err != nil {
		return model.TicketDetail{}, err
	}
	t, err := s.Tickets.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.TicketDetail{}, NotFound("Ticket not found")
	}
	if err != nil {
		return model.TicketDetail{}, Internal(err)
	}
	if !access.CanViewTicket(actor.Role, actor.UserID, t.UserID) {
		return model.TicketDetail{}, Forbidden("Not authorized")
	}

	d := model.TicketDetail{Ticket: t}
	trip, err := s.Trips.GetDetail(ctx, t.TripID)
	switch {
	case err == nil:
		d.Trip = &trip
	case !errors.Is(err, repository.ErrNotFound):
		slog.WarnContext(ctx, "load trip for ticket failed", "ticket_id", t.ID, "error", err)
	}
	return d, nil
}

// TripManifest returns the tickets sold on a trip ordered by passenger
// name. Passengers are refused.
func (s *TicketQueryService) TripManifest(ctx context.Context, actor Actor, tripID uint64) ([]model.Ticket, error) {
	if err := authorize(actor, access.ViewManifest); err != nil {
		return nil, err
	}
	tickets, err := s.Tickets.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, Internal(err)
	}
	return tickets, nil
}
