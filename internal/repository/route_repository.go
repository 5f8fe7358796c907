package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/bus-ticketing/internal/model"
)

// RouteRepo provides access to routes and their ordered stops.
type RouteRepo struct {
	db *sql.DB
}

// NewRouteRepo returns a new RouteRepo bound to the given database.
func NewRouteRepo(db *sql.DB) *RouteRepo { return &RouteRepo{db: db} }

const routeColumns = "id, name, code, origin, destination, distance, estimated_duration, base_fare, is_active, created_at, updated_at"

func scanRoute(s rowScanner, rt *model.Route) error {
	return s.Scan(&rt.ID, &rt.Name, &rt.Code, &rt.Origin, &rt.Destination, &rt.Distance,
		&rt.EstimatedDuration, &rt.BaseFare, &rt.IsActive, &rt.CreatedAt, &rt.UpdatedAt)
}

// List returns every route with its stops, ordered by code.
func (r *RouteRepo) List(ctx context.Context) ([]model.Route, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+routeColumns+" FROM routes ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	routes := []model.Route{}
	for rows.Next() {
		var rt model.Route
		if err := scanRoute(rows, &rt); err != nil {
			rows.Close()
			return nil, err
		}
		routes = append(routes, rt)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()
	for i := range routes {
		stops, err := r.Stops(ctx, routes[i].ID)
		if err != nil {
			return nil, err
		}
		routes[i].Stops = stops
	}
	return routes, nil
}

// GetByID returns a route with its stops or ErrNotFound.
func (r *RouteRepo) GetByID(ctx context.Context, id uint64) (model.Route, error) {
	var rt model.Route
	err := scanRoute(r.db.QueryRowContext(ctx, "SELECT "+routeColumns+" FROM routes WHERE id = ?", id), &rt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Route{}, ErrNotFound
	}
	if err != nil {
		return model.Route{}, fmt.Errorf("get route: %w", err)
	}
	if rt.Stops, err = r.Stops(ctx, id); err != nil {
		return model.Route{}, err
	}
	return rt, nil
}

// Stops returns the stops of a route in sequence order.
func (r *RouteRepo) Stops(ctx context.Context, routeID uint64) ([]model.Stop, error) {
	const q = `SELECT name, sequence, distance_from_origin, estimated_arrival FROM route_stops WHERE route_id = ? ORDER BY sequence`
	rows, err := r.db.QueryContext(ctx, q, routeID)
	if err != nil {
		return nil, fmt.Errorf("list stops: %w", err)
	}
	defer rows.Close()
	stops := []model.Stop{}
	for rows.Next() {
		var s model.Stop
		if err := rows.Scan(&s.Name, &s.Sequence, &s.DistanceFromOrigin, &s.EstimatedArrival); err != nil {
			return nil, err
		}
		stops = append(stops, s)
	}
	return stops, rows.Err()
}

// Create inserts a route and its stops in one transaction and populates
// the route ID. A code that is already taken yields ErrDuplicate.
func (r *RouteRepo) Create(ctx context.Context, rt *model.Route) error {
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

	const q = `INSERT INTO routes (name, code, origin, destination, distance, estimated_duration, base_fare, is_active) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, rt.Name, rt.Code, rt.Origin, rt.Destination, rt.Distance,
		rt.EstimatedDuration, rt.BaseFare, rt.IsActive)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert route: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if len(rt.Stops) > 0 {
		query := `INSERT INTO route_stops (route_id, name, sequence, distance_from_origin, estimated_arrival) VALUES `
		args := make([]interface{}, 0, len(rt.Stops)*5)
		for i, s := range rt.Stops {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?, ?)"
			args = append(args, id, s.Name, s.Sequence, s.DistanceFromOrigin, s.EstimatedArrival)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isDuplicateKey(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("insert stops: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	rt.ID = uint64(id)
	return nil
}

// MatchIDs returns the ids of routes whose origin and destination contain
// the given fragments, ignoring case. An empty fragment matches every
// route.
func (r *RouteRepo) MatchIDs(ctx context.Context, origin, destination string) ([]uint64, error) {
	var (
		conds []string
		args  []interface{}
	)
	if origin != "" {
		conds = append(conds, "LOWER(origin) LIKE ?")
		args = append(args, likePattern(origin))
	}
	if destination != "" {
		conds = append(conds, "LOWER(destination) LIKE ?")
		args = append(args, likePattern(destination))
	}
	q := "SELECT id FROM routes"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("match routes: %w", err)
	}
	defer rows.Close()
	ids := []uint64{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the number of routes.
func (r *RouteRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM routes").Scan(&n); err != nil {
		return 0, fmt.Errorf("count routes: %w", err)
	}
	return n, nil
}

// likePattern lower-cases s, escapes LIKE wildcards and wraps it for a
// substring match.
func likePattern(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}
