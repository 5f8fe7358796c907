// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow the service layer to
// distinguish between different failure scenarios without inspecting
// driver errors. For example, ErrNoSeats indicates that the conditional
// seat decrement matched no row, while ErrNotBoardable signals that a
// ticket changed state between the read and the boarding update.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup by id or unique key matches no
// row.
var ErrNotFound = errors.New("not found")

// ErrNoSeats is returned by TicketRepo.CreateWithSeat when the trip has no
// remaining seats (or no longer exists). Nothing is written.
var ErrNoSeats = errors.New("no seats available")

// ErrDuplicateReference is returned when a ticket insert collides with an
// existing booking reference. Callers regenerate the reference and retry.
var ErrDuplicateReference = errors.New("duplicate booking reference")

// ErrDuplicate is returned when an insert collides with a unique key on
// administrative data such as a bus registration number or route code.
var ErrDuplicate = errors.New("duplicate")

// ErrNotBoardable is returned by TicketRepo.MarkBoarded when the ticket is
// no longer confirmed or pending.
var ErrNotBoardable = errors.New("ticket not boardable")

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is a MySQL duplicate entry error.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
