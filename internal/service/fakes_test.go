package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/bus-ticketing/internal/model"
	"github.com/iliyamo/bus-ticketing/internal/queue"
	"github.com/iliyamo/bus-ticketing/internal/repository"
)

// memStore is an in-memory TripStore and TicketStore. CreateWithSeat and
// MarkBoarded hold the lock across check and write, mirroring the
// conditional updates of the SQL repositories.
type memStore struct {
	mu      sync.Mutex
	trips   map[uint64]*model.TripDetail
	tickets map[uint64]*model.Ticket
	nextID  uint64
	now     time.Time

	lastFilter repository.TripFilter
	searches   int
	// beforeBoard runs inside MarkBoarded before the status check.
	beforeBoard func(t *model.Ticket)
}

func newMemStore() *memStore {
	return &memStore{
		trips:   map[uint64]*model.TripDetail{},
		tickets: map[uint64]*model.Ticket{},
		now:     time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func (m *memStore) addTrip(id uint64, seats int) *model.TripDetail {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := &model.TripDetail{
		Trip: model.Trip{ID: id, RouteID: 1, BusID: 1, Status: model.TripScheduled, AvailableSeats: seats,
			ScheduledDeparture: m.now.Add(24 * time.Hour)},
		Route: &model.Route{ID: 1, Code: "R101", Origin: "Vijayawada", Destination: "Hyderabad"},
		Bus:   &model.Bus{ID: 1, RegistrationNumber: "AP-01-AB-1234", Capacity: seats},
	}
	m.trips[id] = d
	return d
}

func (m *memStore) addTicket(t model.Ticket) model.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	if t.ID == 0 {
		t.ID = m.nextID
	}
	m.tickets[t.ID] = &t
	return t
}

func (m *memStore) seats(tripID uint64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trips[tripID].AvailableSeats
}

func (m *memStore) ticketCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tickets)
}

func (m *memStore) GetDetail(_ context.Context, id uint64) (model.TripDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.trips[id]
	if !ok {
		return model.TripDetail{}, repository.ErrNotFound
	}
	cp := *d
	return cp, nil
}

func (m *memStore) Search(_ context.Context, f repository.TripFilter) ([]model.TripDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = f
	m.searches++
	out := []model.TripDetail{}
	for _, d := range m.trips {
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if f.RouteIDs != nil && !containsID(f.RouteIDs, d.RouteID) {
			continue
		}
		if !f.DepartFrom.IsZero() && d.ScheduledDeparture.Before(f.DepartFrom) {
			continue
		}
		if !f.DepartBefore.IsZero() && !d.ScheduledDeparture.Before(f.DepartBefore) {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledDeparture.Before(out[j].ScheduledDeparture) })
	return out, nil
}

func (m *memStore) ListByConductor(_ context.Context, conductorID uint64) ([]model.TripDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.TripDetail{}
	for _, d := range m.trips {
		if d.ConductorID != nil && *d.ConductorID == conductorID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledDeparture.Before(out[j].ScheduledDeparture) })
	return out, nil
}

func (m *memStore) Create(_ context.Context, t *model.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t.ID = 100 + m.nextID
	m.trips[t.ID] = &model.TripDetail{Trip: *t}
	return nil
}

func (m *memStore) CountByStatus(_ context.Context, status model.TripStatus) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, d := range m.trips {
		if d.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *memStore) CreateWithSeat(_ context.Context, t *model.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[t.TripID]
	if !ok || trip.AvailableSeats <= 0 {
		return repository.ErrNoSeats
	}
	for _, existing := range m.tickets {
		if existing.BookingReference == t.BookingReference {
			return repository.ErrDuplicateReference
		}
	}
	trip.AvailableSeats--
	m.nextID++
	t.ID = m.nextID
	t.CreatedAt, t.UpdatedAt = m.now, m.now
	cp := *t
	m.tickets[t.ID] = &cp
	return nil
}

func (m *memStore) GetByID(_ context.Context, id uint64) (model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return model.Ticket{}, repository.ErrNotFound
	}
	return *t, nil
}

func (m *memStore) GetByReference(_ context.Context, ref string) (model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tickets {
		if t.BookingReference == ref {
			return *t, nil
		}
	}
	return model.Ticket{}, repository.ErrNotFound
}

func (m *memStore) MarkBoarded(_ context.Context, id uint64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return repository.ErrNotBoardable
	}
	if m.beforeBoard != nil {
		m.beforeBoard(t)
	}
	if !t.Status.Boardable() {
		return repository.ErrNotBoardable
	}
	t.Status = model.TicketBoarded
	b := at
	t.BoardedAt = &b
	t.UpdatedAt = at
	return nil
}

func (m *memStore) ListByUser(_ context.Context, userID uint64) ([]model.TicketDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.TicketDetail{}
	for _, t := range m.tickets {
		if t.UserID == userID {
			out = append(out, model.TicketDetail{Ticket: *t})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) ListByTrip(_ context.Context, tripID uint64) ([]model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Ticket{}
	for _, t := range m.tickets {
		if t.TripID == tripID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PassengerName < out[j].PassengerName })
	return out, nil
}

func (m *memStore) Revenue(_ context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum float64
	for _, t := range m.tickets {
		if t.Status != model.TicketCancelled {
			sum += t.Fare
		}
	}
	return sum, nil
}

func containsID(ids []uint64, id uint64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

var (
	_ TripStore   = (*memStore)(nil)
	_ TicketStore = (*memStore)(nil)
)

// memRoutes is an in-memory RouteStore.
type memRoutes struct {
	mu     sync.Mutex
	routes []model.Route
	calls  int
}

func (m *memRoutes) MatchIDs(_ context.Context, origin, destination string) ([]uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	ids := []uint64{}
	for _, r := range m.routes {
		if origin != "" && !strings.Contains(strings.ToLower(r.Origin), strings.ToLower(origin)) {
			continue
		}
		if destination != "" && !strings.Contains(strings.ToLower(r.Destination), strings.ToLower(destination)) {
			continue
		}
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (m *memRoutes) Stops(_ context.Context, routeID uint64) ([]model.Stop, error) {
	for _, r := range m.routes {
		if r.ID == routeID {
			return r.Stops, nil
		}
	}
	return []model.Stop{}, nil
}

func (m *memRoutes) List(_ context.Context) ([]model.Route, error) { return m.routes, nil }

func (m *memRoutes) GetByID(_ context.Context, id uint64) (model.Route, error) {
	for _, r := range m.routes {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Route{}, repository.ErrNotFound
}

func (m *memRoutes) Create(_ context.Context, rt *model.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.routes {
		if r.Code == rt.Code {
			return repository.ErrDuplicate
		}
	}
	rt.ID = uint64(len(m.routes) + 1)
	m.routes = append(m.routes, *rt)
	return nil
}

func (m *memRoutes) Count(_ context.Context) (int, error) { return len(m.routes), nil }

var _ RouteStore = (*memRoutes)(nil)

// mockBusStore is a function-field BusStore. Set only the fields a test
// needs.
type mockBusStore struct {
	list         func(ctx context.Context) ([]model.Bus, error)
	getByID      func(ctx context.Context, id uint64) (model.Bus, error)
	create       func(ctx context.Context, b *model.Bus) error
	updateStatus func(ctx context.Context, id uint64, status model.BusStatus) error
	count        func(ctx context.Context) (int, error)
}

func (m *mockBusStore) List(ctx context.Context) ([]model.Bus, error) { return m.list(ctx) }
func (m *mockBusStore) GetByID(ctx context.Context, id uint64) (model.Bus, error) {
	return m.getByID(ctx, id)
}
func (m *mockBusStore) Create(ctx context.Context, b *model.Bus) error { return m.create(ctx, b) }
func (m *mockBusStore) UpdateStatus(ctx context.Context, id uint64, status model.BusStatus) error {
	return m.updateStatus(ctx, id, status)
}
func (m *mockBusStore) Count(ctx context.Context) (int, error) { return m.count(ctx) }

var _ BusStore = (*mockBusStore)(nil)

// mockUserStore is a function-field UserStore.
type mockUserStore struct {
	create      func(ctx context.Context, u repository.NewUser, cost int) (uint64, error)
	getByEmail  func(ctx context.Context, email string) (model.User, error)
	getByID     func(ctx context.Context, id uint64) (model.User, error)
	countByRole func(ctx context.Context, role model.Role) (int, error)
}

func (m *mockUserStore) Create(ctx context.Context, u repository.NewUser, cost int) (uint64, error) {
	return m.create(ctx, u, cost)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return m.getByEmail(ctx, email)
}
func (m *mockUserStore) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return m.getByID(ctx, id)
}
func (m *mockUserStore) CountByRole(ctx context.Context, role model.Role) (int, error) {
	return m.countByRole(ctx, role)
}

var _ UserStore = (*mockUserStore)(nil)

// memTokens is an in-memory TokenStore keyed by token hash.
type memTokens struct {
	mu      sync.Mutex
	byHash  map[string]uint64
	revoked map[string]bool
}

func newMemTokens() *memTokens {
	return &memTokens{byHash: map[string]uint64{}, revoked: map[string]bool{}}
}

func (m *memTokens) StoreRefresh(_ context.Context, userID uint64, hash string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byHash[hash] = userID
	return nil
}

func (m *memTokens) ValidateRefresh(_ context.Context, hash string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	uid, ok := m.byHash[hash]
	if !ok || m.revoked[hash] {
		return 0, repository.ErrNotFound
	}
	return uid, nil
}

func (m *memTokens) RevokeByHash(_ context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[hash] = true
	return nil
}

func (m *memTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for h, uid := range m.byHash {
		if uid == userID {
			m.revoked[h] = true
		}
	}
	return nil
}

func (m *memTokens) active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for h := range m.byHash {
		if !m.revoked[h] {
			n++
		}
	}
	return n
}

var _ TokenStore = (*memTokens)(nil)

// stubQR returns a data URL embedding the reference so tests can tell
// encodings apart.
type stubQR struct{ fail bool }

func (s stubQR) Encode(p model.QRPayload) (string, error) {
	if s.fail {
		return "", errors.New("qr failed")
	}
	return fmt.Sprintf("data:image/png;base64,%s-%d", p.Ref, p.TripID), nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu      sync.Mutex
	booked  []queue.TicketBookedEvent
	boarded []queue.TicketBoardedEvent
	err     error
}

func (r *recordingPublisher) TicketBooked(_ context.Context, ev queue.TicketBookedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.booked = append(r.booked, ev)
	return r.err
}

func (r *recordingPublisher) TicketBoarded(_ context.Context, ev queue.TicketBoardedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.boarded = append(r.boarded, ev)
	return r.err
}

var _ EventPublisher = (*recordingPublisher)(nil)

func inline(f func()) { f() }

var (
	passenger = Actor{UserID: 3, Role: model.RolePassenger}
	conductor = Actor{UserID: 12, Role: model.RoleConductor}
	admin     = Actor{UserID: 1, Role: model.RoleAdmin}
)
