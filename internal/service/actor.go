package service

import (
	"github.com/iliyamo/bus-ticketing/internal/access"
	"github.com/iliyamo/bus-ticketing/internal/model"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uint64
	Role   model.Role
}

// authorize returns a Forbidden error unless the actor's role may attempt op.
func authorize(a Actor, op access.Operation) error {
	if !access.Allowed(a.Role, op) {
		return Forbidden("Not authorized")
	}
	return nil
}
