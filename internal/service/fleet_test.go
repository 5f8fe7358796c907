package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bus-ticketing/internal/model"
	"github.com/iliyamo/bus-ticketing/internal/repository"
)

func busStoreWith(buses ...model.Bus) *mockBusStore {
	byID := map[uint64]model.Bus{}
	for _, b := range buses {
		byID[b.ID] = b
	}
	return &mockBusStore{
		list: func(context.Context) ([]model.Bus, error) { return buses, nil },
		getByID: func(_ context.Context, id uint64) (model.Bus, error) {
			b, ok := byID[id]
			if !ok {
				return model.Bus{}, repository.ErrNotFound
			}
			return b, nil
		},
		create: func(_ context.Context, b *model.Bus) error {
			for _, existing := range byID {
				if existing.RegistrationNumber == b.RegistrationNumber {
					return repository.ErrDuplicate
				}
			}
			b.ID = uint64(len(byID) + 1)
			byID[b.ID] = *b
			return nil
		},
		updateStatus: func(_ context.Context, id uint64, status model.BusStatus) error {
			b, ok := byID[id]
			if !ok {
				return repository.ErrNotFound
			}
			b.Status = status
			byID[id] = b
			return nil
		},
		count: func(context.Context) (int, error) { return len(byID), nil },
	}
}

func usersWith(users ...model.User) *mockUserStore {
	return &mockUserStore{
		getByID: func(_ context.Context, id uint64) (model.User, error) {
			for _, u := range users {
				if u.ID == id {
					return u, nil
				}
			}
			return model.User{}, repository.ErrNotFound
		},
		countByRole: func(_ context.Context, role model.Role) (int, error) {
			n := 0
			for _, u := range users {
				if u.Role == role {
					n++
				}
			}
			return n, nil
		},
	}
}

func TestCreateBusFeatures(t *testing.T) {
	buses := busStoreWith()
	svc := NewFleetService(usersWith(), buses, &memRoutes{}, newMemStore(), newMemStore())

	cases := []struct {
		busType string
		want    model.BusFeatures
	}{
		{"AC", model.BusFeatures{HasAC: true, HasUSB: true}},
		{"Luxury", model.BusFeatures{HasAC: true, HasWifi: true, HasUSB: true}},
		{"Ordinary", model.BusFeatures{HasUSB: true}},
	}
	for i, tc := range cases {
		b, err := svc.CreateBus(context.Background(), admin, CreateBusRequest{
			RegistrationNumber: "AP-0" + string(rune('1'+i)) + "-XX-0000",
			Model:              "Volvo 9400",
			Capacity:           40,
			Type:               tc.busType,
		})
		require.NoError(t, err, tc.busType)
		assert.Equal(t, tc.want, b.Features, tc.busType)
		assert.Equal(t, model.BusActive, b.Status)
	}
}

func TestCreateBusRejections(t *testing.T) {
	buses := busStoreWith(model.Bus{ID: 1, RegistrationNumber: "AP-01-AB-1234", Capacity: 40, Status: model.BusActive})
	svc := NewFleetService(usersWith(), buses, &memRoutes{}, newMemStore(), newMemStore())

	_, err := svc.CreateBus(context.Background(), admin, CreateBusRequest{RegistrationNumber: "AP-01-AB-1234", Model: "Volvo", Capacity: 40})
	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, KindDuplicate, se.Kind)
	assert.Equal(t, "Bus already exists", se.Message)

	_, err = svc.CreateBus(context.Background(), admin, CreateBusRequest{RegistrationNumber: "X", Model: "Volvo", Capacity: 0})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.CreateBus(context.Background(), admin, CreateBusRequest{RegistrationNumber: "X", Model: "Volvo", Capacity: 10, Status: "parked"})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.CreateBus(context.Background(), conductor, CreateBusRequest{RegistrationNumber: "X", Model: "Volvo", Capacity: 10})
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestUpdateBusStatus(t *testing.T) {
	buses := busStoreWith(model.Bus{ID: 1, RegistrationNumber: "AP-01-AB-1234", Capacity: 40, Status: model.BusActive})
	svc := NewFleetService(usersWith(), buses, &memRoutes{}, newMemStore(), newMemStore())

	b, err := svc.UpdateBusStatus(context.Background(), admin, 1, model.BusMaintenance)
	require.NoError(t, err)
	assert.Equal(t, model.BusMaintenance, b.Status)

	_, err = svc.UpdateBusStatus(context.Background(), admin, 9, model.BusRetired)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCreateRouteNumbersStops(t *testing.T) {
	routes := &memRoutes{}
	svc := NewFleetService(usersWith(), busStoreWith(), routes, newMemStore(), newMemStore())

	rt, err := svc.CreateRoute(context.Background(), admin, CreateRouteRequest{
		Name: "Vijayawada - Hyderabad", Code: "R101", Origin: "Vijayawada", Destination: "Hyderabad",
		Distance: 275, EstimatedDuration: 330, BaseFare: 450,
		Stops: []model.Stop{{Name: "Vijayawada"}, {Name: "Suryapet"}, {Name: "Hyderabad"}},
	})
	require.NoError(t, err)
	assert.True(t, rt.IsActive)
	require.Len(t, rt.Stops, 3)
	for i, st := range rt.Stops {
		assert.Equal(t, i+1, st.Sequence)
	}

	_, err = svc.CreateRoute(context.Background(), admin, CreateRouteRequest{Name: "Dup", Code: "R101", Origin: "A", Destination: "B"})
	assert.Equal(t, KindDuplicate, KindOf(err))

	_, err = svc.CreateRoute(context.Background(), admin, CreateRouteRequest{Name: "X", Code: "R9", Origin: "A", Destination: "B",
		Stops: []model.Stop{{Name: "A", Sequence: 1}, {Name: "B", Sequence: 1}}})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.CreateRoute(context.Background(), admin, CreateRouteRequest{Code: "R9"})
	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, map[string]any{"fields": []string{"name", "origin", "destination"}}, se.Details)
}

func TestScheduleTripSeatsFollowCapacity(t *testing.T) {
	trips := newMemStore()
	routes := &memRoutes{routes: []model.Route{{ID: 1, Code: "R101"}}}
	buses := busStoreWith(
		model.Bus{ID: 1, RegistrationNumber: "AP-01-AB-1234", Capacity: 40, Status: model.BusActive},
		model.Bus{ID: 2, RegistrationNumber: "AP-03-EF-9012", Capacity: 30, Status: model.BusMaintenance},
	)
	users := usersWith(
		model.User{ID: 12, Role: model.RoleConductor},
		model.User{ID: 3, Role: model.RolePassenger},
	)
	svc := NewFleetService(users, buses, routes, trips, newMemStore())

	dep := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	cid := uint64(12)
	req := ScheduleTripRequest{RouteID: 1, BusID: 1, ConductorID: &cid, ScheduledDeparture: dep, ScheduledArrival: dep.Add(5 * time.Hour)}

	d, err := svc.ScheduleTrip(context.Background(), admin, req)
	require.NoError(t, err)
	assert.Equal(t, 40, d.AvailableSeats)
	assert.Equal(t, model.TripScheduled, d.Status)
	require.NotNil(t, d.ConductorID)
	assert.Equal(t, cid, *d.ConductorID)

	inactive := req
	inactive.BusID = 2
	_, err = svc.ScheduleTrip(context.Background(), admin, inactive)
	assert.Equal(t, KindValidation, KindOf(err))

	notConductor := req
	pid := uint64(3)
	notConductor.ConductorID = &pid
	_, err = svc.ScheduleTrip(context.Background(), admin, notConductor)
	assert.Equal(t, KindValidation, KindOf(err))

	missingRoute := req
	missingRoute.RouteID = 9
	_, err = svc.ScheduleTrip(context.Background(), admin, missingRoute)
	assert.Equal(t, KindNotFound, KindOf(err))

	backwards := req
	backwards.ScheduledArrival = dep.Add(-time.Hour)
	_, err = svc.ScheduleTrip(context.Background(), admin, backwards)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestStats(t *testing.T) {
	store := newMemStore()
	store.addTrip(7, 10)
	store.addTrip(8, 10)
	store.trips[8].Status = model.TripCompleted
	store.addTicket(model.Ticket{TripID: 7, Fare: 450, Status: model.TicketConfirmed})
	store.addTicket(model.Ticket{TripID: 7, Fare: 300, Status: model.TicketBoarded})
	store.addTicket(model.Ticket{TripID: 7, Fare: 999, Status: model.TicketCancelled})

	users := usersWith(
		model.User{ID: 1, Role: model.RoleAdmin},
		model.User{ID: 2, Role: model.RolePassenger},
		model.User{ID: 3, Role: model.RolePassenger},
	)
	buses := busStoreWith(model.Bus{ID: 1}, model.Bus{ID: 2})
	routes := &memRoutes{routes: []model.Route{{ID: 1}}}
	svc := NewFleetService(users, buses, routes, store, store)

	st, err := svc.Stats(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalUsers: 2, TotalBuses: 2, TotalRoutes: 1, ActiveTrips: 1, Revenue: 750}, st)

	_, err = svc.Stats(context.Background(), conductor)
	assert.Equal(t, KindForbidden, KindOf(err))
}
