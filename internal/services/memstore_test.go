package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/domain/models"
	"shuttle/internal/repositories"
	"shuttle/internal/utils"
)

var (
	testDate = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	testNow  = func() time.Time { return time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC) }
)

// memStore mirrors the MySQL repositories' guarantees: every mutation runs
// under one lock, and the unique keys become explicit checks.
type memStore struct {
	mu        sync.Mutex
	nextID    int64
	routes    map[int64]models.Route
	buses     map[int64]models.Bus
	schedules map[int64]models.Schedule
	passes    map[int64]models.Pass
	bookings  map[int64]models.Booking
	history   []models.RideHistory
	counters  map[string]int64

	// beforeClaim runs outside the lock ahead of every ClaimSeat.
	beforeClaim func(bookingID int64, t domain.TripType, seat int)
	// failClose forces CloseLeg to fail for the given booking ids.
	failClose map[int64]error
}

func newMemStore() *memStore {
	return &memStore{
		routes:    map[int64]models.Route{},
		buses:     map[int64]models.Bus{},
		schedules: map[int64]models.Schedule{},
		passes:    map[int64]models.Pass{},
		bookings:  map[int64]models.Booking{},
		counters:  map[string]int64{},
		failClose: map[int64]error{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func sameDay(a, b time.Time) bool { return utils.FormatDate(a) == utils.FormatDate(b) }

func (m *memStore) addRoute(r models.Route) models.Route {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == 0 {
		r.ID = m.id()
	} else if r.ID > m.nextID {
		m.nextID = r.ID
	}
	r.Active = true
	m.routes[r.ID] = r
	return r
}

func (m *memStore) addBus(b models.Bus) models.Bus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == 0 {
		b.ID = m.id()
	} else if b.ID > m.nextID {
		m.nextID = b.ID
	}
	m.buses[b.ID] = b
	return b
}

func (m *memStore) addSchedule(s models.Schedule) models.Schedule {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.id()
	if s.Status == "" {
		s.Status = domain.ScheduleActive
	}
	m.schedules[s.ID] = s
	return s
}

func (m *memStore) addPass(p models.Pass) models.Pass {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.id()
	if p.Status == "" {
		p.Status = models.PassActive
	}
	if p.EndDate.IsZero() {
		p.StartDate, p.EndDate = testDate, testDate.AddDate(0, 0, 30)
	}
	m.passes[p.ID] = p
	return p
}

func (m *memStore) booking(id int64) models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bookings[id]
}

func (m *memStore) historyFor(bookingID int64) []models.RideHistory {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.RideHistory{}
	for _, h := range m.history {
		if h.BookingID == bookingID {
			out = append(out, h)
		}
	}
	return out
}

// memBookings implements BookingStore.
type memBookings struct{ m *memStore }

func (s memBookings) countActive(routeID int64, date time.Time, t domain.TripType, slot string) int {
	n := 0
	for _, b := range s.m.bookings {
		if b.RouteID == routeID && sameDay(b.Date, date) && b.Leg(t).Slot == slot && b.Status.Active() {
			n++
		}
	}
	return n
}

func (s memBookings) Reserve(ctx context.Context, nb repositories.NewBooking) (models.Booking, error) {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, leg := range nb.Legs {
		sched, ok := m.schedules[leg.ScheduleID]
		if !ok {
			return models.Booking{}, sql.ErrNoRows
		}
		if !sched.Status.Bookable() {
			return models.Booking{}, repositories.ErrScheduleClosed
		}
		if s.countActive(nb.RouteID, nb.Date, leg.TripType, leg.Slot) >= sched.TotalSeats {
			return models.Booking{}, repositories.ErrCapacityReached{TripType: leg.TripType, Slot: leg.Slot}
		}
	}
	for _, b := range m.bookings {
		if b.RiderID != nb.RiderID || !sameDay(b.Date, nb.Date) || !b.Status.Active() {
			continue
		}
		for _, leg := range nb.Legs {
			if b.Leg(leg.TripType).Slot == leg.Slot {
				return models.Booking{}, repositories.ErrActiveBookingExists
			}
		}
	}

	b := models.Booking{
		ID:             m.id(),
		RiderID:        nb.RiderID,
		Date:           nb.Date,
		RouteID:        nb.RouteID,
		RouteNo:        nb.RouteNo,
		PickupLocation: nb.PickupLocation,
		DropLocation:   nb.DropLocation,
		Status:         domain.BookingReserved,
		CreatedAt:      time.Now(),
	}
	for _, leg := range nb.Legs {
		busID, schedID := leg.BusID, leg.ScheduleID
		b.SetLeg(leg.TripType, models.Leg{Slot: leg.Slot, BusID: &busID, ScheduleID: &schedID})
	}
	m.bookings[b.ID] = b
	for _, leg := range nb.Legs {
		sched := m.schedules[leg.ScheduleID]
		sched.Booked = s.countActive(nb.RouteID, nb.Date, leg.TripType, leg.Slot)
		m.schedules[leg.ScheduleID] = sched
	}
	return b, nil
}

func (s memBookings) GetByID(ctx context.Context, id int64) (models.Booking, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	b, ok := s.m.bookings[id]
	if !ok {
		return b, sql.ErrNoRows
	}
	return b, nil
}

func (s memBookings) FindForBoarding(ctx context.Context, riderID, bookingID int64) (models.Booking, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	b, ok := s.m.bookings[bookingID]
	if !ok || b.RiderID != riderID || !b.Status.Active() {
		return models.Booking{}, sql.ErrNoRows
	}
	return b, nil
}

func (s memBookings) ActiveForRider(ctx context.Context, riderID int64, from time.Time) ([]models.Booking, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []models.Booking{}
	for _, b := range s.m.bookings {
		if b.RiderID == riderID && !b.Completed && b.Status.Active() && utils.FormatDate(b.Date) >= utils.FormatDate(from) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !sameDay(out[i].Date, out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s memBookings) Cancel(ctx context.Context, b models.Booking) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	cur, ok := s.m.bookings[b.ID]
	if !ok || cur.Status != b.Status {
		return repositories.ErrStale
	}
	cur.Status = domain.BookingCancelled
	s.m.bookings[b.ID] = cur
	for _, t := range cur.Legs() {
		if id := cur.Leg(t).ScheduleID; id != nil {
			sched := s.m.schedules[*id]
			sched.Booked = max(sched.Booked-1, 0)
			s.m.schedules[*id] = sched
		}
	}
	return nil
}

func (s memBookings) CountsByRouteDate(ctx context.Context, routeID int64, date time.Time) (map[repositories.SlotKey]int, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := map[repositories.SlotKey]int{}
	for _, b := range s.m.bookings {
		if b.RouteID != routeID || !sameDay(b.Date, date) || !b.Status.Active() {
			continue
		}
		for _, t := range b.Legs() {
			out[repositories.SlotKey{TripType: t, Slot: b.Leg(t).Slot}]++
		}
	}
	return out, nil
}

func (s memBookings) TakenSeats(ctx context.Context, ref models.LegRef) ([]int, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.takenLocked(ref), nil
}

func (s memBookings) takenLocked(ref models.LegRef) []int {
	out := []int{}
	for _, b := range s.m.bookings {
		leg := b.Leg(ref.TripType)
		if sameDay(b.Date, ref.Date) && leg.Slot == ref.Slot && leg.BusID != nil && *leg.BusID == ref.BusID && leg.SeatNo != nil {
			out = append(out, *leg.SeatNo)
		}
	}
	sort.Ints(out)
	return out
}

func (s memBookings) ClaimSeat(ctx context.Context, bookingID int64, t domain.TripType, seat int) error {
	if s.m.beforeClaim != nil {
		s.m.beforeClaim(bookingID, t, seat)
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	b, ok := s.m.bookings[bookingID]
	leg := b.Leg(t)
	if !ok || leg.SeatNo != nil || !b.Status.Active() {
		return repositories.ErrLegAlreadySeated
	}
	ref := models.LegRef{Date: b.Date, Slot: leg.Slot, TripType: t}
	if leg.BusID != nil {
		ref.BusID = *leg.BusID
	}
	for _, n := range s.takenLocked(ref) {
		if n == seat {
			return repositories.ErrSeatTaken
		}
	}
	leg.SeatNo = &seat
	leg.Boarded = true
	b.SetLeg(t, leg)
	if other := b.Leg(t.Other()); !other.Present() || other.Boarded {
		b.Status = domain.BookingBoarded
	}
	s.m.bookings[bookingID] = b
	return nil
}

func (s memBookings) MarkBoarded(ctx context.Context, bookingID int64, t domain.TripType) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	b := s.m.bookings[bookingID]
	leg := b.Leg(t)
	leg.Boarded = true
	b.SetLeg(t, leg)
	if other := b.Leg(t.Other()); !other.Present() || other.Boarded {
		b.Status = domain.BookingBoarded
	}
	s.m.bookings[bookingID] = b
	return nil
}

func (s memBookings) ClosureCandidates(ctx context.Context, sched models.Schedule) ([]models.Booking, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []models.Booking{}
	for _, b := range s.m.bookings {
		leg := b.Leg(sched.TripType)
		if !sameDay(b.Date, sched.Date) || b.Completed || !b.Status.Active() || !leg.Present() || leg.Completed {
			continue
		}
		match := false
		if leg.ScheduleID != nil {
			match = *leg.ScheduleID == sched.ID
		} else {
			match = (b.RouteID == sched.RouteID && leg.Slot == sched.Slot) || (leg.BusID != nil && *leg.BusID == sched.BusID)
		}
		if match {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memBookings) CloseLeg(ctx context.Context, bookingID int64, t domain.TripType, h models.RideHistory) (bool, bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.failClose[bookingID]; err != nil {
		return false, false, err
	}
	b := s.m.bookings[bookingID]
	leg := b.Leg(t)
	if leg.Completed || !b.Status.Active() {
		return false, false, nil
	}
	leg.Completed = true
	b.SetLeg(t, leg)
	if other := b.Leg(t.Other()); !other.Present() || other.Completed {
		b.Completed = true
		b.Status = domain.BookingCompleted
	}
	s.m.bookings[bookingID] = b
	for _, existing := range s.m.history {
		if existing.BookingID == bookingID && existing.TripType == t {
			return true, false, nil
		}
	}
	h.ID = s.m.id()
	h.TripType = t
	h.BookingID = bookingID
	s.m.history = append(s.m.history, h)
	return true, true, nil
}

// memSchedules implements ScheduleStore.
type memSchedules struct{ m *memStore }

func (s memSchedules) Upsert(ctx context.Context, sc models.Schedule) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for id, cur := range s.m.schedules {
		if cur.RouteID != sc.RouteID || !sameDay(cur.Date, sc.Date) || cur.Slot != sc.Slot || cur.TripType != sc.TripType {
			continue
		}
		if !cur.Status.Bookable() {
			return 0, repositories.ErrScheduleClosed
		}
		if (memBookings{s.m}).countActive(sc.RouteID, sc.Date, sc.TripType, sc.Slot) > sc.TotalSeats {
			return 0, repositories.ErrCapacityBelowBooked
		}
		moved := []int64{}
		for bid, b := range s.m.bookings {
			leg := b.Leg(sc.TripType)
			if !b.Status.Active() || leg.ScheduleID == nil || *leg.ScheduleID != id {
				continue
			}
			if leg.SeatNo != nil {
				if leg.BusID != nil && *leg.BusID != sc.BusID {
					return 0, repositories.ErrSeatsAssigned
				}
				continue
			}
			moved = append(moved, bid)
		}
		for _, bid := range moved {
			b := s.m.bookings[bid]
			leg := b.Leg(sc.TripType)
			busID := sc.BusID
			leg.BusID = &busID
			b.SetLeg(sc.TripType, leg)
			s.m.bookings[bid] = b
		}
		cur.BusID, cur.SocietyID, cur.TotalSeats, cur.Status = sc.BusID, sc.SocietyID, sc.TotalSeats, sc.Status
		s.m.schedules[id] = cur
		return id, nil
	}
	sc.ID = s.m.id()
	s.m.schedules[sc.ID] = sc
	return sc.ID, nil
}

func (s memSchedules) GetByID(ctx context.Context, id int64) (models.Schedule, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	sc, ok := s.m.schedules[id]
	if !ok {
		return sc, sql.ErrNoRows
	}
	return sc, nil
}

func (s memSchedules) Find(ctx context.Context, routeID int64, date time.Time, slot string, t domain.TripType) (models.Schedule, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, sc := range s.m.schedules {
		if sc.RouteID == routeID && sameDay(sc.Date, date) && sc.Slot == slot && sc.TripType == t {
			return sc, nil
		}
	}
	return models.Schedule{}, sql.ErrNoRows
}

func (s memSchedules) List(ctx context.Context, date time.Time, routeID int64) ([]models.Schedule, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []models.Schedule{}
	for _, sc := range s.m.schedules {
		if sameDay(sc.Date, date) && (routeID <= 0 || sc.RouteID == routeID) {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Slot != out[j].Slot {
			return out[i].Slot < out[j].Slot
		}
		return out[i].TripType < out[j].TripType
	})
	return out, nil
}

func (s memSchedules) UpdateStatus(ctx context.Context, id int64, from, to domain.ScheduleStatus, start, end *time.Time) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	sc, ok := s.m.schedules[id]
	if !ok || sc.Status != from {
		return repositories.ErrStale
	}
	sc.Status = to
	if start != nil {
		sc.StartTime = start
	}
	if end != nil {
		sc.EndTime = end
	}
	s.m.schedules[id] = sc
	return nil
}

// memRoutes implements RouteStore.
type memRoutes struct{ m *memStore }

func (s memRoutes) Create(ctx context.Context, r models.Route) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, cur := range s.m.routes {
		if cur.RouteNo == r.RouteNo {
			return 0, repositories.ErrDuplicate
		}
	}
	r.ID = s.m.id()
	s.m.routes[r.ID] = r
	return r.ID, nil
}

func (s memRoutes) GetByID(ctx context.Context, id int64) (models.Route, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r, ok := s.m.routes[id]
	if !ok {
		return r, sql.ErrNoRows
	}
	return r, nil
}

func (s memRoutes) GetByRouteNo(ctx context.Context, routeNo string) (models.Route, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, r := range s.m.routes {
		if r.RouteNo == routeNo {
			return r, nil
		}
	}
	return models.Route{}, sql.ErrNoRows
}

func (s memRoutes) List(ctx context.Context, onlyActive bool) ([]models.Route, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []models.Route{}
	for _, r := range s.m.routes {
		if !onlyActive || r.Active {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RouteNo < out[j].RouteNo })
	return out, nil
}

func (s memRoutes) SetActive(ctx context.Context, id int64, active bool) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r, ok := s.m.routes[id]
	if !ok {
		return sql.ErrNoRows
	}
	r.Active = active
	s.m.routes[id] = r
	return nil
}

// memBuses implements BusStore.
type memBuses struct{ m *memStore }

func (s memBuses) Create(ctx context.Context, b models.Bus) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, cur := range s.m.buses {
		if strings.EqualFold(cur.RegNumber, b.RegNumber) {
			return 0, repositories.ErrDuplicate
		}
	}
	b.ID = s.m.id()
	s.m.buses[b.ID] = b
	return b.ID, nil
}

func (s memBuses) GetByID(ctx context.Context, id int64) (models.Bus, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	b, ok := s.m.buses[id]
	if !ok {
		return b, sql.ErrNoRows
	}
	return b, nil
}

func (s memBuses) FindByRegNumber(ctx context.Context, reg string) (models.Bus, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, b := range s.m.buses {
		if strings.EqualFold(b.RegNumber, strings.TrimSpace(reg)) {
			return b, nil
		}
	}
	return models.Bus{}, sql.ErrNoRows
}

func (s memBuses) List(ctx context.Context) ([]models.Bus, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []models.Bus{}
	for _, b := range s.m.buses {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// memPasses implements PassStore.
type memPasses struct{ m *memStore }

func (s memPasses) Create(ctx context.Context, p models.Pass) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for id, cur := range s.m.passes {
		if cur.TicketID == p.TicketID {
			return 0, repositories.ErrDuplicate
		}
		if cur.RiderID == p.RiderID && cur.Status == models.PassActive {
			cur.Status = models.PassExpired
			s.m.passes[id] = cur
		}
	}
	p.ID = s.m.id()
	s.m.passes[p.ID] = p
	return p.ID, nil
}

func (s memPasses) ActiveForRider(ctx context.Context, riderID int64, on time.Time) (models.Pass, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var best models.Pass
	for _, p := range s.m.passes {
		if p.RiderID == riderID && p.Status == models.PassActive && utils.FormatDate(p.EndDate) >= utils.FormatDate(on) && p.ID > best.ID {
			best = p
		}
	}
	if best.ID == 0 {
		return best, sql.ErrNoRows
	}
	return best, nil
}

func (s memPasses) GetByID(ctx context.Context, id int64) (models.Pass, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.passes[id]
	if !ok {
		return p, sql.ErrNoRows
	}
	return p, nil
}

// memCounters implements CounterStore.
type memCounters struct{ m *memStore }

func (s memCounters) Next(ctx context.Context, key string) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.counters[key]++
	return s.m.counters[key], nil
}

// memHistory implements RideHistoryStore.
type memHistory struct{ m *memStore }

func (s memHistory) ListByRider(ctx context.Context, riderID int64) ([]models.RideHistory, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []models.RideHistory{}
	for i := len(s.m.history) - 1; i >= 0; i-- {
		if s.m.history[i].RiderID == riderID {
			out = append(out, s.m.history[i])
		}
	}
	return out, nil
}

// memCache implements AvailabilityCache with JSON round-trips.
type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	hits    int
	deletes int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dst)
}

func (c *memCache) Set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *memCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.deletes++
	}
	return nil
}

// fixture wires services over one memStore with a route R1
// (Society -> Gate 2 -> Metro Station -> Tech Park) and bus KA01AB1234.
type fixture struct {
	st    *memStore
	cache *memCache
	route models.Route
	bus   models.Bus
}

func newFixture(busCapacity int) *fixture {
	st := newMemStore()
	f := &fixture{st: st, cache: newMemCache()}
	f.route = st.addRoute(models.Route{
		RouteNo:      "R1",
		StartPoint:   "Society",
		EndPoint:     "Tech Park",
		Stops:        []string{"Gate 2", "Metro Station"},
		PassAmount15: 1500,
		PassAmount30: 2500,
	})
	f.bus = st.addBus(models.Bus{RegNumber: "KA01AB1234", SeatingCapacity: busCapacity, DriverName: "Ravi", DriverContact: "98450"})
	return f
}

func (f *fixture) schedule(slot string, t domain.TripType, totalSeats int, busID int64) models.Schedule {
	return f.st.addSchedule(models.Schedule{
		Date: testDate, RouteID: f.route.ID, Slot: slot, TripType: t, BusID: busID, TotalSeats: totalSeats,
	})
}

func (f *fixture) rider(id int64) {
	f.st.addPass(models.Pass{RiderID: id, RouteID: f.route.ID, RouteNo: "R1", PickupLocation: "Gate 2", DropLocation: "Tech Park"})
}

func (f *fixture) reservation() ReservationService {
	return ReservationService{
		Bookings:  memBookings{f.st},
		Schedules: memSchedules{f.st},
		Routes:    memRoutes{f.st},
		Buses:     memBuses{f.st},
		Passes:    memPasses{f.st},
		Cache:     f.cache,
		Location:  time.UTC,
		Now:       testNow,
	}
}

func (f *fixture) boarding() BoardingService {
	return BoardingService{
		Bookings:  memBookings{f.st},
		Buses:     memBuses{f.st},
		Schedules: memSchedules{f.st},
		Routes:    memRoutes{f.st},
		Cache:     f.cache,
	}
}

func (f *fixture) closure() TripClosureService {
	return TripClosureService{
		Bookings:  memBookings{f.st},
		Schedules: memSchedules{f.st},
		Routes:    memRoutes{f.st},
		Buses:     memBuses{f.st},
		Cache:     f.cache,
		Now:       testNow,
	}
}

func (f *fixture) schedules() ScheduleService {
	return ScheduleService{
		Schedules: memSchedules{f.st},
		Routes:    memRoutes{f.st},
		Buses:     memBuses{f.st},
		Bookings:  memBookings{f.st},
		History:   memHistory{f.st},
		Cache:     f.cache,
		Location:  time.UTC,
		Now:       testNow,
	}
}

func (f *fixture) availability() AvailabilityService {
	return AvailabilityService{
		Schedules: memSchedules{f.st},
		Routes:    memRoutes{f.st},
		Bookings:  memBookings{f.st},
		Passes:    memPasses{f.st},
		Cache:     f.cache,
		Location:  time.UTC,
	}
}

func qr(reg string) string {
	return "BUSQR-" + strings.ToLower(reg) + "-1704844800000"
}
