package model

import "time"

// TripStatus is the operational state of a trip.  Only scheduled trips are
// offered to passengers.
type TripStatus string

const (
    TripScheduled  TripStatus = "scheduled"
    TripInProgress TripStatus = "in_progress"
    TripCompleted  TripStatus = "completed"
    TripCancelled  TripStatus = "cancelled"
)

// Trip is a single scheduled run of one bus over one route.
// AvailableSeats starts at the bus capacity and is only ever decremented
// by a booking; it never goes below zero.
type Trip struct {
    ID                 uint64     `json:"id"`                 // trips.id
    RouteID            uint64     `json:"routeId"`            // trips.route_id
    BusID              uint64     `json:"busId"`              // trips.bus_id
    ConductorID        *uint64    `json:"conductorId"`        // trips.conductor_id (nullable)
    ScheduledDeparture time.Time  `json:"scheduledDeparture"` // trips.scheduled_departure
    ScheduledArrival   time.Time  `json:"scheduledArrival"`   // trips.scheduled_arrival
    ActualDeparture    *time.Time `json:"actualDeparture"`    // trips.actual_departure (nullable)
    ActualArrival      *time.Time `json:"actualArrival"`      // trips.actual_arrival (nullable)
    Status             TripStatus `json:"status"`             // trips.status
    AvailableSeats     int        `json:"availableSeats"`     // trips.available_seats
    CreatedAt          time.Time  `json:"createdAt"`
    UpdatedAt          time.Time  `json:"updatedAt"`
}

// TripDetail is a trip with its route and bus inlined, the shape returned
// by every trip listing endpoint.
type TripDetail struct {
    Trip
    Route *Route `json:"route,omitempty"`
    Bus   *Bus   `json:"bus,omitempty"`
}
