package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/bus-ticketing/internal/model"
)

// TicketRepo persists tickets. Creating a ticket and consuming a trip seat
// happen in one transaction so the seat counter always equals capacity
// minus the tickets sold.
type TicketRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo {
	return &TicketRepo{db: db, now: func() time.Time { return time.Now().UTC().Truncate(time.Second) }}
}

const ticketColumns = `k.id, k.user_id, k.trip_id, k.passenger_name, k.passenger_phone, k.passenger_email,
	k.from_stop, k.to_stop, k.seat_number, k.fare, k.status, k.qr_code, k.booking_reference,
	k.boarded_at, k.created_at, k.updated_at`

// ticketDest mirrors tripDetailDest for the ticketColumns list.
func ticketDest(t *model.Ticket) ([]any, func()) {
	var (
		seat      sql.NullString
		status    string
		boardedAt sql.NullTime
	)
	dest := []any{
		&t.ID, &t.UserID, &t.TripID, &t.PassengerName, &t.PassengerPhone, &t.PassengerEmail,
		&t.FromStop, &t.ToStop, &seat, &t.Fare, &status, &t.QRCode, &t.BookingReference,
		&boardedAt, &t.CreatedAt, &t.UpdatedAt,
	}
	finish := func() {
		if seat.Valid {
			s := seat.String
			t.SeatNumber = &s
		}
		if boardedAt.Valid {
			b := boardedAt.Time
			t.BoardedAt = &b
		}
		t.Status = model.TicketStatus(status)
	}
	return dest, finish
}

func scanTicket(s rowScanner, t *model.Ticket) error {
	dest, finish := ticketDest(t)
	if err := s.Scan(dest...); err != nil {
		return err
	}
	finish()
	return nil
}

// CreateWithSeat decrements the trip's available seats by one and inserts
// t in the same transaction. It returns ErrNoSeats when the conditional
// decrement matches no row and ErrDuplicateReference when the booking
// reference is taken; in both cases nothing is committed. On success the
// ID and timestamps of t are populated.
func (r *TicketRepo) CreateWithSeat(ctx context.Context, t *model.Ticket) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"UPDATE trips SET available_seats = available_seats - 1 WHERE id = ? AND available_seats > 0", t.TripID)
	if err != nil {
		return fmt.Errorf("decrement seats: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoSeats
	}

	now := r.now()
	const q = `INSERT INTO tickets (user_id, trip_id, passenger_name, passenger_phone, passenger_email, from_stop, to_stop, seat_number, fare, status, qr_code, booking_reference, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err = tx.ExecContext(ctx, q, t.UserID, t.TripID, t.PassengerName, t.PassengerPhone, t.PassengerEmail,
		t.FromStop, t.ToStop, t.SeatNumber, t.Fare, string(t.Status), t.QRCode, t.BookingReference, now, now)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateReference
		}
		return fmt.Errorf("insert ticket: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	t.ID = uint64(id)
	t.CreatedAt, t.UpdatedAt = now, now
	return nil
}

// GetByID returns the ticket with the given id or ErrNotFound.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (model.Ticket, error) {
	return r.getOne(ctx, "SELECT "+ticketColumns+" FROM tickets k WHERE k.id = ?", id)
}

// GetByReference returns the ticket with the given booking reference or
// ErrNotFound.
func (r *TicketRepo) GetByReference(ctx context.Context, ref string) (model.Ticket, error) {
	return r.getOne(ctx, "SELECT "+ticketColumns+" FROM tickets k WHERE k.booking_reference = ?", ref)
}

func (r *TicketRepo) getOne(ctx context.Context, q string, arg any) (model.Ticket, error) {
	var t model.Ticket
	err := scanTicket(r.db.QueryRowContext(ctx, q, arg), &t)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Ticket{}, ErrNotFound
	}
	if err != nil {
		return model.Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	return t, nil
}

// MarkBoarded moves a confirmed or pending ticket to boarded and stamps
// boarded_at. If the ticket is in any other status (or was boarded by a
// concurrent scan) it returns ErrNotBoardable and changes nothing.
func (r *TicketRepo) MarkBoarded(ctx context.Context, id uint64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE tickets SET status = 'boarded', boarded_at = ?, updated_at = ? WHERE id = ? AND status IN ('confirmed','pending')",
		at.UTC(), at.UTC(), id)
	if err != nil {
		return fmt.Errorf("mark boarded: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotBoardable
	}
	return nil
}

// ListByUser returns the user's tickets newest first with trip, route and
// bus inlined.
func (r *TicketRepo) ListByUser(ctx context.Context, userID uint64) ([]model.TicketDetail, error) {
	q := "SELECT " + ticketColumns + ", " + tripDetailColumns +
		" FROM tickets k JOIN trips t ON t.id = k.trip_id" + tripDetailJoins +
		" WHERE k.user_id = ? ORDER BY k.created_at DESC, k.id DESC"
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list user tickets: %w", err)
	}
	defer rows.Close()
	tickets := []model.TicketDetail{}
	for rows.Next() {
		var d model.TicketDetail
		d.Trip = &model.TripDetail{}
		tdest, tfinish := ticketDest(&d.Ticket)
		rdest, rfinish := tripDetailDest(d.Trip)
		if err := rows.Scan(append(tdest, rdest...)...); err != nil {
			return nil, err
		}
		tfinish()
		rfinish()
		tickets = append(tickets, d)
	}
	return tickets, rows.Err()
}

// ListByTrip returns a trip's tickets ordered by passenger name.
func (r *TicketRepo) ListByTrip(ctx context.Context, tripID uint64) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+ticketColumns+" FROM tickets k WHERE k.trip_id = ? ORDER BY k.passenger_name ASC, k.id ASC", tripID)
	if err != nil {
		return nil, fmt.Errorf("list trip tickets: %w", err)
	}
	defer rows.Close()
	tickets := []model.Ticket{}
	for rows.Next() {
		var t model.Ticket
		if err := scanTicket(rows, &t); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// Revenue returns the sum of fares of every ticket that is not cancelled.
func (r *TicketRepo) Revenue(ctx context.Context) (float64, error) {
	var sum float64
	err := r.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(fare), 0) FROM tickets WHERE status <> 'cancelled'").Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum fares: %w", err)
	}
	return sum, nil
}
