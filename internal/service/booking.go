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

// maxReferenceAttempts bounds how many references are tried when the
// generated one collides with an existing ticket.
const maxReferenceAttempts = 5

// publishTimeout bounds a single event publish.
const publishTimeout = 5 * time.Second

// BookingRequest is the input of BookTicket. Stop names are free text.
type BookingRequest struct {
	TripID         uint64
	PassengerName  string
	PassengerPhone string
	PassengerEmail string
	FromStop       string
	ToStop         string
	Fare           float64
}

// missingFields lists the request fields that are empty.
func (r BookingRequest) missingFields() []string {
	var missing []string
	if r.TripID == 0 {
		missing = append(missing, "tripId")
	}
	for _, f := range []struct{ name, value string }{
		{"passengerName", r.PassengerName},
		{"passengerPhone", r.PassengerPhone},
		{"passengerEmail", r.PassengerEmail},
		{"fromStop", r.FromStop},
		{"toStop", r.ToStop},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// BookingService books seats on trips.
type BookingService struct {
	Trips   TripStore
	Tickets TicketStore
	QR      QREncoder
	Refs    *ReferenceGenerator
	Events  EventPublisher // nil disables publishing

	// Dispatch runs background work such as event publishing. It defaults
	// to starting a goroutine.
	Dispatch func(func())
}

// NewBookingService wires a BookingService with a wall-clock reference
// generator.
func NewBookingService(trips TripStore, tickets TicketStore, qr QREncoder, events EventPublisher) *BookingService {
	return &BookingService{
		Trips:    trips,
		Tickets:  tickets,
		QR:       qr,
		Refs:     NewReferenceGenerator(),
		Events:   events,
		Dispatch: func(f func()) { go f() },
	}
}

// BookTicket reserves one seat on the requested trip for the actor and
// returns the confirmed ticket. The seat decrement and the ticket insert
// commit together; a trip that runs out of seats between the read and the
// write yields the same conflict as one that was already full.
func (s *BookingService) BookTicket(ctx context.Context, actor Actor, req BookingRequest) (model.Ticket, error) {
	if err := authorize(actor, access.BookTicket); err != nil {
		return model.Ticket{}, err
	}
	if missing := req.missingFields(); len(missing) > 0 {
		return model.Ticket{}, Validation("Missing required fields", map[string]any{"fields": missing})
	}
	if req.Fare < 0 {
		return model.Ticket{}, Validation("Fare must not be negative", map[string]any{"fields": []string{"fare"}})
	}

	trip, err := s.Trips.GetDetail(ctx, req.TripID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Ticket{}, NotFound("Trip not found")
	}
	if err != nil {
		return model.Ticket{}, Internal(err)
	}
	if trip.AvailableSeats <= 0 {
		return model.Ticket{}, Conflict("No seats available", nil)
	}

	for attempt := 1; attempt <= maxReferenceAttempts; attempt++ {
		ref := s.Refs.Next()
		code, err := s.QR.Encode(model.QRPayload{Ref: ref, TripID: trip.ID, Passenger: req.PassengerName})
		if err != nil {
			return model.Ticket{}, Internal(err)
		}
		t := model.Ticket{
			UserID:           actor.UserID,
			TripID:           trip.ID,
			PassengerName:    req.PassengerName,
			PassengerPhone:   req.PassengerPhone,
			PassengerEmail:   req.PassengerEmail,
			FromStop:         req.FromStop,
			ToStop:           req.ToStop,
			Fare:             req.Fare,
			Status:           model.TicketConfirmed,
			QRCode:           code,
			BookingReference: ref,
		}
		err = s.Tickets.CreateWithSeat(ctx, &t)
		switch {
		case err == nil:
			slog.InfoContext(ctx, "ticket booked", "ticket_id", t.ID, "ref", t.BookingReference, "trip_id", t.TripID, "user_id", t.UserID)
			s.publishBooked(ctx, t)
			return t, nil
		case errors.Is(err, repository.ErrDuplicateReference):
			slog.WarnContext(ctx, "booking reference collision, regenerating", "ref", ref, "attempt", attempt)
			continue
		case errors.Is(err, repository.ErrNoSeats):
			return model.Ticket{}, Conflict("No seats available", nil)
		default:
			return model.Ticket{}, Internal(err)
		}
	}
	return model.Ticket{}, Internal(errors.New("could not allocate a unique booking reference"))
}

func (s *BookingService) publishBooked(ctx context.Context, t model.Ticket) {
	if s.Events == nil {
		return
	}
	ev := queue.TicketBookedEvent{
		TicketID:         t.ID,
		BookingReference: t.BookingReference,
		UserID:           t.UserID,
		TripID:           t.TripID,
		PassengerName:    t.PassengerName,
		PassengerEmail:   t.PassengerEmail,
		FromStop:         t.FromStop,
		ToStop:           t.ToStop,
		Fare:             t.Fare,
		BookedAt:         t.CreatedAt.UTC().Format(time.RFC3339),
	}
	dispatch(s.Dispatch, func() {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := s.Events.TicketBooked(pctx, ev); err != nil {
			slog.ErrorContext(pctx, "publish ticket.booked failed", "ticket_id", ev.TicketID, "error", err)
		}
	})
}

func dispatch(d func(func()), f func()) {
	if d == nil {
		go f()
		return
	}
	d(f)
}
