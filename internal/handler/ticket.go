package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-ticketing/internal/eticket"
	"github.com/iliyamo/bus-ticketing/internal/model"
	"github.com/iliyamo/bus-ticketing/internal/service"
)

// TicketHandler serves the /api/tickets endpoints.
type TicketHandler struct {
	Booking  Booker
	Verifier Verifier
	Tickets  TicketReader
	Location *time.Location // zone printed on e-tickets
}

func NewTicketHandler(b Booker, v Verifier, t TicketReader, loc *time.Location) *TicketHandler {
	return &TicketHandler{Booking: b, Verifier: v, Tickets: t, Location: loc}
}

type bookReq struct {
	TripID         uint64  `json:"tripId"`
	PassengerName  string  `json:"passengerName"`
	PassengerPhone string  `json:"passengerPhone"`
	PassengerEmail string  `json:"passengerEmail"`
	FromStop       string  `json:"fromStop"`
	ToStop         string  `json:"toStop"`
	Fare           float64 `json:"fare"`
}

// verifyReq accepts ticketId as a JSON number or a numeric string, since
// scanners forward whatever the QR app hands them.
type verifyReq struct {
	TicketID         json.RawMessage `json:"ticketId"`
	BookingReference string          `json:"bookingReference"`
}

// ticketID returns the numeric ticket id, 0 when absent.
func (r verifyReq) ticketID() (uint64, error) {
	raw := strings.TrimSpace(string(r.TicketID))
	if raw == "" || raw == "null" || raw == `""` {
		return 0, nil
	}
	if s, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(s)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("ticketId must be a positive integer")
	}
	return id, nil
}

// Book handles POST /api/tickets and returns the confirmed ticket with 201.
func (h *TicketHandler) Book(c echo.Context, a service.Actor) error {
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	t, err := h.Booking.BookTicket(ctx, a, service.BookingRequest{
		TripID:         req.TripID,
		PassengerName:  req.PassengerName,
		PassengerPhone: req.PassengerPhone,
		PassengerEmail: req.PassengerEmail,
		FromStop:       req.FromStop,
		ToStop:         req.ToStop,
		Fare:           req.Fare,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// MyTickets handles GET /api/tickets/my-tickets.
func (h *TicketHandler) MyTickets(c echo.Context, a service.Actor) error {
	tickets, err := h.Tickets.MyTickets(c.Request().Context(), a)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tickets)
}

// Get handles GET /api/tickets/:id.
func (h *TicketHandler) Get(c echo.Context, a service.Actor) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid ticket id")
	}
	t, err := h.Tickets.GetTicket(c.Request().Context(), a, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// ETicket handles GET /api/tickets/:id/e-ticket and streams a PDF.
func (h *TicketHandler) ETicket(c echo.Context, a service.Actor) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid ticket id")
	}
	t, err := h.Tickets.GetTicket(c.Request().Context(), a, id)
	if err != nil {
		return respondError(c, err)
	}
	pdf, name, err := eticket.Render(t, h.Location)
	if err != nil {
		return respondError(c, service.Internal(err))
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// Verify handles POST /api/tickets/verify. A ticket that cannot be boarded
// is echoed back next to the error.
func (h *TicketHandler) Verify(c echo.Context, a service.Actor) error {
	var req verifyReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	id, err := req.ticketID()
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	t, err := h.Verifier.VerifyTicket(ctx, a, service.VerifyRequest{TicketID: id, BookingReference: req.BookingReference})
	if err != nil {
		se := asServiceError(err)
		if se.Kind == service.KindConflict {
			if d, ok := se.Details.(model.TicketDetail); ok {
				return writeError(c, &service.Error{Kind: se.Kind, Message: se.Message}, d)
			}
		}
		return writeError(c, se, nil)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Ticket Verified Successfully", "ticket": t})
}

// Manifest handles GET /api/tickets/trip/:tripId.
func (h *TicketHandler) Manifest(c echo.Context, a service.Actor) error {
	tripID, ok := pathID(c, "tripId")
	if !ok {
		return badRequest(c, "invalid trip id")
	}
	tickets, err := h.Tickets.TripManifest(c.Request().Context(), a, tripID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tickets)
}
