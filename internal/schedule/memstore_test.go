package schedule

import (
	"context"
	"sort"
	"sync"
	"time"

	"shule_transit/internal/models"
	"shule_transit/internal/notify"
)

// memStore is a mutex-guarded Store used by the engine tests. Its guarded
// updates mirror the conditional-UPDATE semantics of the real store: each
// guarded method checks and mutates under one lock acquisition.
type memStore struct {
	mu       sync.Mutex
	trips    map[uint]models.TripSchedule
	bookings map[uint]models.Booking
	routes   map[uint]models.Route
	vehicles map[uint]models.Vehicle
	nextID   uint
}

func newMemStore() *memStore {
	return &memStore{
		trips:    make(map[uint]models.TripSchedule),
		bookings: make(map[uint]models.Booking),
		routes:   make(map[uint]models.Route),
		vehicles: make(map[uint]models.Vehicle),
		nextID:   1,
	}
}

func (m *memStore) id() uint {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memStore) addRoute(r models.Route) models.Route {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == 0 {
		r.ID = m.id()
	}
	m.routes[r.ID] = r
	return r
}

func (m *memStore) addVehicle(v models.Vehicle) models.Vehicle {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.ID == 0 {
		v.ID = m.id()
	}
	m.vehicles[v.ID] = v
	return v
}

func (m *memStore) addTrip(t models.TripSchedule) models.TripSchedule {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == 0 {
		t.ID = m.id()
	}
	if t.Status == "" {
		t.Status = models.TripStatusScheduled
	}
	m.trips[t.ID] = t
	return t
}

func (m *memStore) addBooking(b models.Booking) models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == 0 {
		b.ID = m.id()
	}
	if b.Status == "" {
		b.Status = models.BookingStatusConfirmed
	}
	if b.SeatCount == 0 {
		b.SeatCount = 1
	}
	m.bookings[b.ID] = b
	return b
}

func (m *memStore) GetTrip(_ context.Context, id uint) (models.TripSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok {
		return models.TripSchedule{}, NotFoundError{Resource: "trip schedule", ID: id}
	}
	return trip, nil
}

func (m *memStore) ListTrips(_ context.Context, f TripFilter) ([]models.TripSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TripSchedule
	for _, trip := range m.trips {
		if f.RouteID != 0 && trip.RouteID != f.RouteID {
			continue
		}
		if f.DateFrom != nil && trip.ScheduleDate.Before(truncateToDay(*f.DateFrom)) {
			continue
		}
		if f.DateTo != nil && trip.ScheduleDate.After(truncateToDay(*f.DateTo)) {
			continue
		}
		if f.Status != "" && trip.Status != f.Status {
			continue
		}
		if f.Bookable && !trip.BookingEnabled {
			continue
		}
		out = append(out, trip)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduleDate.Equal(out[j].ScheduleDate) {
			return out[i].ScheduleDate.Before(out[j].ScheduleDate)
		}
		if out[i].DepartureTime != out[j].DepartureTime {
			return out[i].DepartureTime < out[j].DepartureTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memStore) CreateTrip(_ context.Context, t *models.TripSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.id()
	m.trips[t.ID] = *t
	return nil
}

func (m *memStore) DeleteTrip(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[id]; !ok {
		return NotFoundError{Resource: "trip schedule", ID: id}
	}
	delete(m.trips, id)
	return nil
}

func (m *memStore) ApplyChange(_ context.Context, id uint, prev, next Change) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok {
		return false, nil
	}
	if trip.AdminSchedulingEnabled != prev.AdminSchedulingEnabled ||
		trip.BookingEnabled != prev.BookingEnabled ||
		trip.Status != prev.Status ||
		(trip.ApprovedAt == nil) != (prev.ApprovedAt == nil) ||
		(trip.DisabledAt == nil) != (prev.DisabledAt == nil) {
		return false, nil
	}
	trip.AdminSchedulingEnabled = next.AdminSchedulingEnabled
	trip.BookingEnabled = next.BookingEnabled
	trip.Status = next.Status
	trip.ApprovedAt = next.ApprovedAt
	trip.DisabledAt = next.DisabledAt
	m.trips[id] = trip
	return true, nil
}

func (m *memStore) TryReserveSeats(_ context.Context, id uint, count int, now time.Time) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok {
		return 0, false, nil
	}
	if !trip.BookingEnabled {
		return 0, false, nil
	}
	if trip.BookingDeadline != nil && !trip.BookingDeadline.After(now) {
		return 0, false, nil
	}
	if trip.BookedSeats+count > trip.TotalSeats {
		return 0, false, nil
	}
	trip.BookedSeats += count
	m.trips[id] = trip
	return trip.BookedSeats, true, nil
}

func (m *memStore) ReleaseSeats(_ context.Context, id uint, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil
	}
	trip.BookedSeats -= count
	if trip.BookedSeats < 0 {
		trip.BookedSeats = 0
	}
	m.trips[id] = trip
	return nil
}

func (m *memStore) CountBookings(_ context.Context, scheduleID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, b := range m.bookings {
		if b.ScheduleID == scheduleID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ConfirmedBookings(_ context.Context, scheduleID uint) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.ScheduleID == scheduleID && b.Status == models.BookingStatusConfirmed {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) CancelBooking(_ context.Context, bookingID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok || b.Status != models.BookingStatusConfirmed {
		return false, nil
	}
	b.Status = models.BookingStatusCancelled
	m.bookings[bookingID] = b
	return true, nil
}

func (m *memStore) CreateBooking(_ context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = m.id()
	m.bookings[b.ID] = *b
	return nil
}

func (m *memStore) GetRoute(_ context.Context, id uint) (models.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	route, ok := m.routes[id]
	if !ok {
		return models.Route{}, NotFoundError{Resource: "route", ID: id}
	}
	return route, nil
}

func (m *memStore) GetVehicle(_ context.Context, id uint) (models.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return models.Vehicle{}, NotFoundError{Resource: "vehicle", ID: id}
	}
	return vehicle, nil
}

// recordingNotifier captures emitted events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordingNotifier) Emit(_ context.Context, ev notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingNotifier) Events() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Event, len(r.events))
	copy(out, r.events)
	return out
}

// newTestEngine wires an engine over the in-memory store with a frozen clock.
func newTestEngine(now time.Time) (*Engine, *memStore, *recordingNotifier) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	engine := NewEngine(store, DatePolicy{LeadDays: 1}, notifier)
	engine.Now = func() time.Time { return now }
	return engine, store, notifier
}
