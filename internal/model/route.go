package model

import "time"

// Stop is a named point along a route.  Stops are reference data; the
// booking flow records stop names as free text and never validates them
// against this list.
type Stop struct {
    Name               string  `json:"name"`               // route_stops.name
    Sequence           int     `json:"sequence"`           // route_stops.sequence
    DistanceFromOrigin float64 `json:"distanceFromOrigin"` // route_stops.distance_from_origin (km)
    EstimatedArrival   int     `json:"estimatedArrival"`   // route_stops.estimated_arrival (minutes from origin)
}

// Route is a named path between an origin and a destination.
//
// Fields:
//  Code              – unique short code (e.g. "R101").
//  Distance          – total distance in kilometres.
//  EstimatedDuration – travel time in minutes.
//  BaseFare          – default fare for the full route.
//  Stops             – ordered by Sequence.
type Route struct {
    ID                uint64    `json:"id"`
    Name              string    `json:"name"`
    Code              string    `json:"code"`
    Origin            string    `json:"origin"`
    Destination       string    `json:"destination"`
    Distance          float64   `json:"distance"`
    EstimatedDuration int       `json:"estimatedDuration"`
    BaseFare          float64   `json:"baseFare"`
    IsActive          bool      `json:"isActive"`
    Stops             []Stop    `json:"stops"`
    CreatedAt         time.Time `json:"createdAt"`
    UpdatedAt         time.Time `json:"updatedAt"`
}
