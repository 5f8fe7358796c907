package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/bus-ticketing/internal/access"
	"github.com/iliyamo/bus-ticketing/internal/model"
	"github.com/iliyamo/bus-ticketing/internal/queue"
	"github.com/iliyamo/bus-ticketing/internal/repository"
)

// VerifyRequest identifies the ticket being scanned. TicketID wins when
// both are set; zero and empty mean absent.
type VerifyRequest struct {
	TicketID         uint64
	BookingReference string
}

// VerificationService boards tickets.
type VerificationService struct {
	Tickets  TicketStore
	Trips    TripStore
	Events   EventPublisher // nil disables publishing
	Now      func() time.Time
	Dispatch func(func())
}

// NewVerificationService wires a VerificationService on the wall clock.
func NewVerificationService(tickets TicketStore, trips TripStore, events EventPublisher) *VerificationService {
	return &VerificationService{
		Tickets:  tickets,
		Trips:    trips,
		Events:   events,
		Now:      func() time.Time { return time.Now().UTC().Truncate(time.Second) },
		Dispatch: func(f func()) { go f() },
	}
}

// VerifyTicket moves a confirmed or pending ticket to boarded and returns
// it with its trip inlined. A ticket that is already used or cancelled
// yields a Conflict whose Details hold the ticket unchanged; the ticket is
// also returned alongside the error.
func (s *VerificationService) VerifyTicket(ctx context.Context, actor Actor, req VerifyRequest) (model.TicketDetail, error) {
	if err := authorize(actor, access.VerifyTicket); err != nil {
		return model.TicketDetail{}, Forbidden("Not authorized to verify tickets")
	}
	ref := strings.TrimSpace(req.BookingReference)
	if req.TicketID == 0 && ref == "" {
		return model.TicketDetail{}, Validation("ticketId or bookingReference is required", nil)
	}

	var (
		t   model.Ticket
		err error
	)
	if req.TicketID != 0 {
		t, err = s.Tickets.GetByID(ctx, req.TicketID)
	} else {
		t, err = s.Tickets.GetByReference(ctx, ref)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return model.TicketDetail{}, NotFound("Invalid Ticket")
	}
	if err != nil {
		return model.TicketDetail{}, Internal(err)
	}
	if cerr := statusConflict(t); cerr != nil {
		d := s.detail(ctx, t)
		cerr.Details = d
		return d, cerr
	}

	now := s.Now()
	if err := s.Tickets.MarkBoarded(ctx, t.ID, now); err != nil {
		if !errors.Is(err, repository.ErrNotBoardable) {
			return model.TicketDetail{}, Internal(err)
		}
		// Lost a race with another scan or a status change; report what
		// the ticket is now.
		cur, rerr := s.Tickets.GetByID(ctx, t.ID)
		if rerr != nil {
			return model.TicketDetail{}, Internal(rerr)
		}
		cerr := statusConflict(cur)
		if cerr == nil {
			cerr = Conflict("Ticket already used/boarded", nil)
		}
		d := s.detail(ctx, cur)
		cerr.Details = d
		return d, cerr
	}

	t.Status = model.TicketBoarded
	t.BoardedAt = &now
	t.UpdatedAt = now
	slog.InfoContext(ctx, "ticket boarded", "ticket_id", t.ID, "ref", t.BookingReference, "conductor_id", actor.UserID)
	s.publishBoarded(ctx, t, actor.UserID)
	return s.detail(ctx, t), nil
}

// statusConflict returns the conflict for a ticket that cannot be boarded,
// or nil when it can.
func statusConflict(t model.Ticket) *Error {
	switch t.Status {
	case model.TicketBoarded, model.TicketCompleted:
		return Conflict("Ticket already used/boarded", nil)
	case model.TicketCancelled:
		return Conflict("Ticket is cancelled", nil)
	}
	if !t.Status.Boardable() {
		return Conflict("Ticket cannot be boarded", nil)
	}
	return nil
}

// detail inlines the ticket's trip, route and bus. A trip that cannot be
// read leaves Trip nil.
func (s *VerificationService) detail(ctx context.Context, t model.Ticket) model.TicketDetail {
	d := model.TicketDetail{Ticket: t}
	if s.Trips == nil {
		return d
	}
	trip, err := s.Trips.GetDetail(ctx, t.TripID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			slog.WarnContext(ctx, "load trip for ticket failed", "ticket_id", t.ID, "error", err)
		}
		return d
	}
	d.Trip = &trip
	return d
}

func (s *VerificationService) publishBoarded(ctx context.Context, t model.Ticket, conductorID uint64) {
	if s.Events == nil {
		return
	}
	ev := queue.TicketBoardedEvent{
		TicketID:         t.ID,
		BookingReference: t.BookingReference,
		TripID:           t.TripID,
		PassengerName:    t.PassengerName,
		VerifiedBy:       conductorID,
		BoardedAt:        t.BoardedAt.UTC().Format(time.RFC3339),
	}
	dispatch(s.Dispatch, func() {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := s.Events.TicketBoarded(pctx, ev); err != nil {
			slog.ErrorContext(pctx, "publish ticket.boarded failed", "ticket_id", ev.TicketID, "error", err)
		}
	})
}
