// Command seed loads demo accounts, buses, routes and two trips departing
// tomorrow into the configured database.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/iliyamo/bus-ticketing/internal/config"
	"github.com/iliyamo/bus-ticketing/internal/database"
	"github.com/iliyamo/bus-ticketing/internal/model"
	"github.com/iliyamo/bus-ticketing/internal/repository"
)

var (
	reset   = pflag.Bool("reset", false, "delete existing rows before seeding")
	migrate = pflag.Bool("migrate", true, "apply pending migrations first")
)

func main() {
	pflag.Parse()
	config.LoadDotEnv()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := run(ctx, db, cfg); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
	slog.Info("database seeded")
}

func run(ctx context.Context, db *sql.DB, cfg config.Config) error {
	if *migrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}
	if *reset {
		if err := resetTables(ctx, db); err != nil {
			return err
		}
	}

	users := repository.NewUserRepo(db)
	var conductorID uint64
	for _, u := range seedUsers() {
		id, err := users.Create(ctx, u, cfg.BcryptCost)
		if err != nil {
			return fmt.Errorf("user %s: %w", u.Email, err)
		}
		if u.Role == model.RoleConductor {
			conductorID = id
		}
	}
	slog.Info("users created")

	buses := repository.NewBusRepo(db)
	fleet := seedBuses()
	for i := range fleet {
		if err := buses.Create(ctx, &fleet[i]); err != nil {
			return fmt.Errorf("bus %s: %w", fleet[i].RegistrationNumber, err)
		}
	}
	slog.Info("buses created")

	routes := repository.NewRouteRepo(db)
	lines := seedRoutes()
	for i := range lines {
		if err := routes.Create(ctx, &lines[i]); err != nil {
			return fmt.Errorf("route %s: %w", lines[i].Code, err)
		}
	}
	slog.Info("routes created")

	trips := repository.NewTripRepo(db)
	tomorrow := time.Now().In(cfg.Location).AddDate(0, 0, 1)
	at := func(h, m int) time.Time {
		return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), h, m, 0, 0, cfg.Location)
	}
	schedule := []model.Trip{
		{
			RouteID:            lines[0].ID,
			BusID:              fleet[0].ID,
			ConductorID:        &conductorID,
			ScheduledDeparture: at(8, 0),
			ScheduledArrival:   at(9, 0),
			Status:             model.TripScheduled,
			AvailableSeats:     fleet[0].Capacity,
		},
		{
			RouteID:            lines[1].ID,
			BusID:              fleet[1].ID,
			ScheduledDeparture: at(9, 0),
			ScheduledArrival:   at(9, 40),
			Status:             model.TripScheduled,
			AvailableSeats:     fleet[1].Capacity,
		},
	}
	for i := range schedule {
		if err := trips.Create(ctx, &schedule[i]); err != nil {
			return err
		}
	}
	slog.Info("trips created", "count", len(schedule))
	return nil
}

// resetTables empties every table, children first.
func resetTables(ctx context.Context, db *sql.DB) error {
	for _, table := range []string{"tickets", "trips", "route_stops", "routes", "buses", "refresh_tokens", "users"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	slog.Info("cleared existing data")
	return nil
}

func strPtr(s string) *string { return &s }

func seedUsers() []repository.NewUser {
	return []repository.NewUser{
		{Email: "passenger@test.com", Password: "Test@123", FullName: "Test Passenger", Phone: strPtr("9876543210"), Role: model.RolePassenger},
		{Email: "admin@test.com", Password: "Admin@123", FullName: "Test Admin", Phone: strPtr("9876543211"), Role: model.RoleAdmin},
		{Email: "conductor@test.com", Password: "Conductor@123", FullName: "Test Conductor", Phone: strPtr("9876543212"), Role: model.RoleConductor},
	}
}

func seedBuses() []model.Bus {
	all := model.BusFeatures{HasAC: true, HasWifi: true, HasUSB: true}
	return []model.Bus{
		{RegistrationNumber: "AP-01-AB-1234", Model: "Volvo 9400", Capacity: 40, Status: model.BusActive, Features: all},
		{RegistrationNumber: "AP-02-CD-5678", Model: "Ashok Leyland Viking", Capacity: 50, Status: model.BusActive},
		{RegistrationNumber: "AP-03-EF-9012", Model: "Tata Marcopolo", Capacity: 30, Status: model.BusMaintenance,
			Features: model.BusFeatures{HasAC: true, HasUSB: true}},
		{RegistrationNumber: "AP-04-GH-3456", Model: "Scania Metrolink", Capacity: 45, Status: model.BusActive, Features: all},
	}
}

func seedRoutes() []model.Route {
	return []model.Route{
		{
			Name: "City Connect", Code: "R-101", Origin: "City Center", Destination: "Airport",
			Distance: 25, EstimatedDuration: 60, BaseFare: 50, IsActive: true,
			Stops: []model.Stop{
				{Name: "City Center", Sequence: 1},
				{Name: "Mall Junction", Sequence: 2, DistanceFromOrigin: 5, EstimatedArrival: 15},
				{Name: "Tech Park", Sequence: 3, DistanceFromOrigin: 15, EstimatedArrival: 35},
				{Name: "Airport", Sequence: 4, DistanceFromOrigin: 25, EstimatedArrival: 60},
			},
		},
		{
			Name: "Suburb Express", Code: "R-202", Origin: "Railway Station", Destination: "North Suburb",
			Distance: 15, EstimatedDuration: 40, BaseFare: 30, IsActive: true,
			Stops: []model.Stop{
				{Name: "Railway Station", Sequence: 1},
				{Name: "Market", Sequence: 2, DistanceFromOrigin: 4, EstimatedArrival: 12},
				{Name: "University", Sequence: 3, DistanceFromOrigin: 8, EstimatedArrival: 25},
				{Name: "North Suburb", Sequence: 4, DistanceFromOrigin: 15, EstimatedArrival: 40},
			},
		},
	}
}
