package model

import "time"

// TicketStatus is the lifecycle state of a ticket.  Tickets are created as
// confirmed; the only transition implemented is confirmed (or pending) to
// boarded.
type TicketStatus string

const (
    TicketPending   TicketStatus = "pending"
    TicketConfirmed TicketStatus = "confirmed"
    TicketBoarded   TicketStatus = "boarded"
    TicketCompleted TicketStatus = "completed"
    TicketCancelled TicketStatus = "cancelled"
)

// Boardable reports whether a ticket in this status may be scanned onto a bus.
func (s TicketStatus) Boardable() bool {
    return s == TicketConfirmed || s == TicketPending
}

// Ticket is one passenger's reservation on one trip.  Passenger contact
// fields may differ from the owning account.
//
// Fields:
//  UserID           – owning account.
//  BookingReference – unique human-shareable code, e.g. "T482913K7Q".
//  QRCode           – PNG data URL of the QR payload.
//  BoardedAt        – set once, when the ticket is verified.
type Ticket struct {
    ID               uint64       `json:"id"`               // tickets.id
    UserID           uint64       `json:"userId"`           // tickets.user_id
    TripID           uint64       `json:"tripId"`           // tickets.trip_id
    PassengerName    string       `json:"passengerName"`    // tickets.passenger_name
    PassengerPhone   string       `json:"passengerPhone"`   // tickets.passenger_phone
    PassengerEmail   string       `json:"passengerEmail"`   // tickets.passenger_email
    FromStop         string       `json:"fromStop"`         // tickets.from_stop
    ToStop           string       `json:"toStop"`           // tickets.to_stop
    SeatNumber       *string      `json:"seatNumber"`       // tickets.seat_number (nullable, unused)
    Fare             float64      `json:"fare"`             // tickets.fare
    Status           TicketStatus `json:"status"`           // tickets.status
    QRCode           string       `json:"qrCode"`           // tickets.qr_code
    BookingReference string       `json:"bookingReference"` // tickets.booking_reference (unique)
    BoardedAt        *time.Time   `json:"boardedAt"`        // tickets.boarded_at (nullable)
    CreatedAt        time.Time    `json:"createdAt"`
    UpdatedAt        time.Time    `json:"updatedAt"`
}

// TicketDetail is a ticket with its trip (and the trip's route and bus)
// inlined.
type TicketDetail struct {
    Ticket
    Trip *TripDetail `json:"trip,omitempty"`
}

// QRPayload is the JSON document encoded into a ticket's QR image.
type QRPayload struct {
    Ref       string `json:"ref"`
    TripID    uint64 `json:"tripId"`
    Passenger string `json:"passenger"`
}
