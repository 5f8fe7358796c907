package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/bus-ticketing/internal/model"
)

// BusRepo provides access to the buses table.
type BusRepo struct {
	db *sql.DB
}

// NewBusRepo returns a new BusRepo bound to the given database.
func NewBusRepo(db *sql.DB) *BusRepo { return &BusRepo{db: db} }

const busColumns = "id, registration_number, model, capacity, status, has_ac, has_wifi, has_usb, created_at, updated_at"

func scanBus(s rowScanner, b *model.Bus) error {
	var status string
	if err := s.Scan(&b.ID, &b.RegistrationNumber, &b.Model, &b.Capacity, &status,
		&b.Features.HasAC, &b.Features.HasWifi, &b.Features.HasUSB, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return err
	}
	b.Status = model.BusStatus(status)
	return nil
}

// List returns every bus ordered by registration number.
func (r *BusRepo) List(ctx context.Context) ([]model.Bus, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+busColumns+" FROM buses ORDER BY registration_number")
	if err != nil {
		return nil, fmt.Errorf("list buses: %w", err)
	}
	defer rows.Close()
	buses := []model.Bus{}
	for rows.Next() {
		var b model.Bus
		if err := scanBus(rows, &b); err != nil {
			return nil, err
		}
		buses = append(buses, b)
	}
	return buses, rows.Err()
}

// GetByID returns the bus with the given id or ErrNotFound.
func (r *BusRepo) GetByID(ctx context.Context, id uint64) (model.Bus, error) {
	var b model.Bus
	err := scanBus(r.db.QueryRowContext(ctx, "SELECT "+busColumns+" FROM buses WHERE id = ?", id), &b)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Bus{}, ErrNotFound
	}
	if err != nil {
		return model.Bus{}, fmt.Errorf("get bus: %w", err)
	}
	return b, nil
}

// Create inserts b and populates its ID. A registration number that is
// already taken yields ErrDuplicate.
func (r *BusRepo) Create(ctx context.Context, b *model.Bus) error {
	const q = `INSERT INTO buses (registration_number, model, capacity, status, has_ac, has_wifi, has_usb) VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, b.RegistrationNumber, b.Model, b.Capacity, string(b.Status),
		b.Features.HasAC, b.Features.HasWifi, b.Features.HasUSB)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert bus: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// UpdateStatus sets the status of a bus. ErrNotFound is returned when no
// bus has the id.
func (r *BusRepo) UpdateStatus(ctx context.Context, id uint64, status model.BusStatus) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, "UPDATE buses SET status = ? WHERE id = ?", string(status), id); err != nil {
		return fmt.Errorf("update bus status: %w", err)
	}
	return nil
}

// Count returns the number of buses.
func (r *BusRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM buses").Scan(&n); err != nil {
		return 0, fmt.Errorf("count buses: %w", err)
	}
	return n, nil
}
