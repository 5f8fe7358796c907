// Package queue defines the ticket events exchanged over RabbitMQ, the
// publisher used by the services and the audit consumer that records them.
package queue

// Queue names. Each event type has its own durable queue and is published
// through the default exchange with the queue name as routing key.
const (
    QueueTicketBooked  = "ticket.booked"
    QueueTicketBoarded = "ticket.boarded"
)

// TicketBookedEvent is published after a booking commits. It carries
// enough information for downstream consumers to log or notify without
// querying the primary database.
type TicketBookedEvent struct {
    TicketID         uint64  `json:"ticketId"`
    BookingReference string  `json:"bookingReference"`
    UserID           uint64  `json:"userId"`
    TripID           uint64  `json:"tripId"`
    PassengerName    string  `json:"passengerName"`
    PassengerEmail   string  `json:"passengerEmail"`
    FromStop         string  `json:"fromStop"`
    ToStop           string  `json:"toStop"`
    Fare             float64 `json:"fare"`
    BookedAt         string  `json:"bookedAt"`
}

// TicketBoardedEvent is published after a conductor verifies a ticket.
type TicketBoardedEvent struct {
    TicketID         uint64 `json:"ticketId"`
    BookingReference string `json:"bookingReference"`
    TripID           uint64 `json:"tripId"`
    PassengerName    string `json:"passengerName"`
    VerifiedBy       uint64 `json:"verifiedBy"`
    BoardedAt        string `json:"boardedAt"`
}
