// Package access holds the capability table of the API. A request is
// checked against it once by router middleware before the handler runs;
// services repeat the checks that depend on the resource, such as ticket
// ownership.
package access

import "github.com/iliyamo/bus-ticketing/internal/model"

// Operation names an action a caller may attempt.
type Operation string

const (
	BookTicket         Operation = "ticket.book"
	ListOwnTickets     Operation = "ticket.list_own"
	ViewTicket         Operation = "ticket.view"
	VerifyTicket       Operation = "ticket.verify"
	ViewManifest       Operation = "trip.manifest"
	SearchTrips        Operation = "trip.search"
	ViewTrip           Operation = "trip.view"
	ListConductorTrips Operation = "trip.list_conductor"
	ViewProfile        Operation = "auth.me"
	ManageFleet        Operation = "admin.fleet"
	ViewDashboard      Operation = "admin.stats"
)

var everyone = []model.Role{model.RolePassenger, model.RoleConductor, model.RoleAdmin}

// policy maps each operation to the roles allowed to attempt it. An
// operation missing from the table is denied to everyone.
var policy = map[Operation][]model.Role{
	BookTicket:         everyone,
	ListOwnTickets:     everyone,
	ViewTicket:         everyone,
	VerifyTicket:       {model.RoleConductor, model.RoleAdmin},
	ViewManifest:       {model.RoleConductor, model.RoleAdmin},
	SearchTrips:        everyone,
	ViewTrip:           everyone,
	ListConductorTrips: {model.RoleConductor},
	ViewProfile:        everyone,
	ManageFleet:        {model.RoleAdmin},
	ViewDashboard:      {model.RoleAdmin},
}

// Allowed reports whether role may attempt op.
func Allowed(role model.Role, op Operation) bool {
	for _, r := range policy[op] {
		if r == role {
			return true
		}
	}
	return false
}

// Roles returns the roles allowed to attempt op.
func Roles(op Operation) []model.Role {
	out := make([]model.Role, len(policy[op]))
	copy(out, policy[op])
	return out
}

// CanViewTicket reports whether the caller may read a ticket owned by
// ownerID. Passengers only see their own tickets; conductors and admins
// see every ticket.
func CanViewTicket(role model.Role, callerID, ownerID uint64) bool {
	switch role {
	case model.RoleConductor, model.RoleAdmin:
		return true
	case model.RolePassenger:
		return callerID == ownerID
	}
	return false
}
