package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/bus-ticketing/internal/model"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// TripRepo provides access to trips joined with their route and bus.
type TripRepo struct {
	db *sql.DB
}

// NewTripRepo returns a new TripRepo bound to the given database.
func NewTripRepo(db *sql.DB) *TripRepo { return &TripRepo{db: db} }

const tripDetailColumns = `t.id, t.route_id, t.bus_id, t.conductor_id, t.scheduled_departure, t.scheduled_arrival,
	t.actual_departure, t.actual_arrival, t.status, t.available_seats, t.created_at, t.updated_at,
	r.id, r.name, r.code, r.origin, r.destination, r.distance, r.estimated_duration, r.base_fare,
	r.is_active, r.created_at, r.updated_at,
	b.id, b.registration_number, b.model, b.capacity, b.status, b.has_ac, b.has_wifi, b.has_usb,
	b.created_at, b.updated_at`

const tripDetailJoins = ` JOIN routes r ON r.id = t.route_id JOIN buses b ON b.id = t.bus_id`

const tripDetailSelect = "SELECT " + tripDetailColumns + " FROM trips t" + tripDetailJoins

// tripDetailDest returns the scan destinations for the trip, route and bus
// columns of tripDetailSelect along with a finisher that copies nullable
// values into d once the scan succeeded.
func tripDetailDest(d *model.TripDetail) ([]any, func()) {
	var (
		conductor  sql.NullInt64
		actualDep  sql.NullTime
		actualArr  sql.NullTime
		tripStatus string
		busStatus  string
	)
	d.Route = &model.Route{}
	d.Bus = &model.Bus{}
	rt, b := d.Route, d.Bus
	dest := []any{
		&d.ID, &d.RouteID, &d.BusID, &conductor, &d.ScheduledDeparture, &d.ScheduledArrival,
		&actualDep, &actualArr, &tripStatus, &d.AvailableSeats, &d.CreatedAt, &d.UpdatedAt,
		&rt.ID, &rt.Name, &rt.Code, &rt.Origin, &rt.Destination, &rt.Distance, &rt.EstimatedDuration, &rt.BaseFare,
		&rt.IsActive, &rt.CreatedAt, &rt.UpdatedAt,
		&b.ID, &b.RegistrationNumber, &b.Model, &b.Capacity, &busStatus, &b.Features.HasAC, &b.Features.HasWifi, &b.Features.HasUSB,
		&b.CreatedAt, &b.UpdatedAt,
	}
	finish := func() {
		if conductor.Valid {
			id := uint64(conductor.Int64)
			d.ConductorID = &id
		}
		if actualDep.Valid {
			t := actualDep.Time
			d.ActualDeparture = &t
		}
		if actualArr.Valid {
			t := actualArr.Time
			d.ActualArrival = &t
		}
		d.Status = model.TripStatus(tripStatus)
		b.Status = model.BusStatus(busStatus)
	}
	return dest, finish
}

func scanTripDetail(s rowScanner, d *model.TripDetail) error {
	dest, finish := tripDetailDest(d)
	if err := s.Scan(dest...); err != nil {
		return err
	}
	finish()
	return nil
}

// GetDetail returns a trip with its route and bus or ErrNotFound.
func (r *TripRepo) GetDetail(ctx context.Context, id uint64) (model.TripDetail, error) {
	var d model.TripDetail
	err := scanTripDetail(r.db.QueryRowContext(ctx, tripDetailSelect+" WHERE t.id = ?", id), &d)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TripDetail{}, ErrNotFound
	}
	if err != nil {
		return model.TripDetail{}, fmt.Errorf("get trip: %w", err)
	}
	return d, nil
}

// TripFilter narrows Search. A nil RouteIDs places no restriction on the
// route; a non-nil empty slice matches nothing. Zero DepartFrom or
// DepartBefore leave that bound open.
type TripFilter struct {
	Status       model.TripStatus
	RouteIDs     []uint64
	DepartFrom   time.Time
	DepartBefore time.Time
}

// Search returns the trips matching f ordered by scheduled departure.
func (r *TripRepo) Search(ctx context.Context, f TripFilter) ([]model.TripDetail, error) {
	if f.RouteIDs != nil && len(f.RouteIDs) == 0 {
		return []model.TripDetail{}, nil
	}
	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		conds = append(conds, "t.status = ?")
		args = append(args, string(f.Status))
	}
	if len(f.RouteIDs) > 0 {
		conds = append(conds, "t.route_id IN ("+strings.TrimSuffix(strings.Repeat("?,", len(f.RouteIDs)), ",")+")")
		for _, id := range f.RouteIDs {
			args = append(args, id)
		}
	}
	if !f.DepartFrom.IsZero() {
		conds = append(conds, "t.scheduled_departure >= ?")
		args = append(args, f.DepartFrom.UTC())
	}
	if !f.DepartBefore.IsZero() {
		conds = append(conds, "t.scheduled_departure < ?")
		args = append(args, f.DepartBefore.UTC())
	}
	q := tripDetailSelect
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY t.scheduled_departure ASC, t.id ASC"
	return r.list(ctx, q, args...)
}

// ListByConductor returns every trip assigned to the conductor, in any
// status, ordered by scheduled departure.
func (r *TripRepo) ListByConductor(ctx context.Context, conductorID uint64) ([]model.TripDetail, error) {
	return r.list(ctx, tripDetailSelect+" WHERE t.conductor_id = ? ORDER BY t.scheduled_departure ASC, t.id ASC", conductorID)
}

func (r *TripRepo) list(ctx context.Context, q string, args ...any) ([]model.TripDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()
	trips := []model.TripDetail{}
	for rows.Next() {
		var d model.TripDetail
		if err := scanTripDetail(rows, &d); err != nil {
			return nil, err
		}
		trips = append(trips, d)
	}
	return trips, rows.Err()
}

// Create inserts a trip and populates its ID. The caller sets
// AvailableSeats, normally to the capacity of the bus.
func (r *TripRepo) Create(ctx context.Context, t *model.Trip) error {
	const q = `INSERT INTO trips (route_id, bus_id, conductor_id, scheduled_departure, scheduled_arrival, status, available_seats) VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, t.RouteID, t.BusID, t.ConductorID,
		t.ScheduledDeparture.UTC(), t.ScheduledArrival.UTC(), string(t.Status), t.AvailableSeats)
	if err != nil {
		return fmt.Errorf("insert trip: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// CountByStatus returns the number of trips in status.
func (r *TripRepo) CountByStatus(ctx context.Context, status model.TripStatus) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM trips WHERE status = ?", string(status)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count trips: %w", err)
	}
	return n, nil
}
