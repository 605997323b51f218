package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/domain/models"
	"shuttle/internal/repositories"
	"shuttle/internal/utils"
)

// ScheduleService manages per-date schedules and their trip lifecycle.
type ScheduleService struct {
	Schedules ScheduleStore
	Routes    RouteStore
	Buses     BusStore
	Bookings  BookingStore
	History   RideHistoryStore
	Cache     AvailabilityCache
	Location  *time.Location
	Now       func() time.Time
	RequestID string
}

type UpsertScheduleInput struct {
	Date       string `json:"date"`
	RouteID    int64  `json:"routeId"`
	RouteNo    string `json:"routeNo"`
	Slot       string `json:"slot"`
	TripType   string `json:"tripType"`
	BusID      int64  `json:"busId"`
	SocietyID  *int64 `json:"societyId"`
	TotalSeats int    `json:"totalSeats"`
}

// ScheduleView carries occupancy derived from bookings.
type ScheduleView struct {
	models.Schedule
	Available int `json:"available"`
}

// Upsert assigns a bus to (route, date, slot, trip type). Capacity defaults
// to the bus's seating capacity and never exceeds it, since boarding draws
// seat numbers from the bus. Trips already started or closed are left alone.
// Reservations without a seat follow the new bus.
func (s ScheduleService) Upsert(ctx context.Context, in UpsertScheduleInput) (models.Schedule, error) {
	slot := strings.TrimSpace(in.Slot)
	if slot == "" {
		return models.Schedule{}, domain.ValidationError{Field: "slot", Msg: "is required"}
	}
	tripType, ok := domain.ParseTripType(in.TripType)
	if !ok {
		return models.Schedule{}, domain.ValidationError{Field: "tripType", Msg: "must be pickup or drop"}
	}
	if in.BusID <= 0 {
		return models.Schedule{}, domain.ValidationError{Field: "busId", Msg: "is required"}
	}
	if in.TotalSeats < 0 {
		return models.Schedule{}, domain.ValidationError{Field: "totalSeats", Msg: "must not be negative"}
	}
	date, err := parseTravelDate(in.Date, locOr(s.Location))
	if err != nil {
		return models.Schedule{}, err
	}
	route, err := routeLookup(ctx, s.Routes, in.RouteID, in.RouteNo, 0)
	if err != nil {
		return models.Schedule{}, err
	}
	bus, err := s.Buses.GetByID(ctx, in.BusID)
	if err != nil {
		if isNoRows(err) {
			return models.Schedule{}, domain.NotFoundError{Resource: "bus", Reason: domain.ReasonBusNotFound}
		}
		return models.Schedule{}, domain.Wrap("failed to load bus", err)
	}

	existing, err := s.Schedules.Find(ctx, route.ID, date, slot, tripType)
	switch {
	case err == nil:
		if _, terr := existing.Status.Transition(domain.ScheduleScheduled); terr != nil {
			return models.Schedule{}, terr
		}
	case !isNoRows(err):
		return models.Schedule{}, domain.Wrap("failed to load schedule", err)
	}

	total := in.TotalSeats
	if total == 0 || (bus.SeatingCapacity > 0 && total > bus.SeatingCapacity) {
		total = bus.SeatingCapacity
	}
	id, err := s.Schedules.Upsert(ctx, models.Schedule{
		Date:       date,
		RouteID:    route.ID,
		Slot:       slot,
		TripType:   tripType,
		BusID:      bus.ID,
		SocietyID:  in.SocietyID,
		TotalSeats: total,
		Status:     domain.ScheduleScheduled,
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrScheduleClosed):
			return models.Schedule{}, domain.ConflictError{Resource: "schedule", Msg: "trip already started or closed", Reason: domain.ReasonInvalidTransition, Err: err}
		case errors.Is(err, repositories.ErrCapacityBelowBooked):
			return models.Schedule{}, domain.ConflictError{Resource: "schedule", Msg: fmt.Sprintf("%d seats is below the active reservations", total), Reason: domain.ReasonCapacityBelowBooked, Err: err}
		case errors.Is(err, repositories.ErrSeatsAssigned):
			return models.Schedule{}, domain.ConflictError{Resource: "schedule", Msg: "riders already hold seats on the current bus", Reason: domain.ReasonSeatsAssigned, Err: err}
		}
		return models.Schedule{}, domain.Wrap("failed to save schedule", err)
	}
	invalidateAvailability(ctx, s.Cache, s.RequestID, route.ID, date)
	utils.LogEvent(s.RequestID, "schedule", "upsert",
		fmt.Sprintf("schedule_id=%d route=%s date=%s slot=%s trip_type=%s bus=%s",
			id, route.RouteNo, utils.FormatDate(date), slot, tripType, bus.RegNumber))
	return loadSchedule(ctx, s.Schedules, id)
}

func (s ScheduleService) Activate(ctx context.Context, id int64) (models.Schedule, error) {
	return s.move(ctx, id, domain.ScheduleActive, false)
}

func (s ScheduleService) StartTrip(ctx context.Context, id int64) (models.Schedule, error) {
	return s.move(ctx, id, domain.ScheduleTripStarted, true)
}

// EndTrip completes the trip and closes its bookings.
func (s ScheduleService) EndTrip(ctx context.Context, id int64) (ClosureResult, error) {
	return TripClosureService{
		Bookings:  s.Bookings,
		Schedules: s.Schedules,
		Routes:    s.Routes,
		Buses:     s.Buses,
		Cache:     s.Cache,
		Now:       s.Now,
		RequestID: s.RequestID,
	}.CloseTrip(ctx, id)
}

func (s ScheduleService) move(ctx context.Context, id int64, to domain.ScheduleStatus, stampStart bool) (models.Schedule, error) {
	sched, err := loadSchedule(ctx, s.Schedules, id)
	if err != nil {
		return sched, err
	}
	next, err := sched.Status.Transition(to)
	if err != nil {
		return sched, err
	}
	var start *time.Time
	if stampStart {
		now := nowOr(s.Now)
		start = &now
	}
	if err := s.Schedules.UpdateStatus(ctx, sched.ID, sched.Status, next, start, nil); err != nil {
		if errors.Is(err, repositories.ErrStale) {
			return sched, domain.ConflictError{Resource: "schedule", Msg: "schedule changed, reload and retry", Reason: domain.ReasonInvalidTransition, Err: err}
		}
		return sched, domain.Wrap("failed to update schedule", err)
	}
	invalidateAvailability(ctx, s.Cache, s.RequestID, sched.RouteID, sched.Date)
	utils.LogEvent(s.RequestID, "schedule", "status", fmt.Sprintf("schedule_id=%d from=%s to=%s", sched.ID, sched.Status, next))
	sched.Status = next
	if start != nil {
		sched.StartTime = start
	}
	return sched, nil
}

// List returns the date's schedules with booked/available derived from
// bookings.
func (s ScheduleService) List(ctx context.Context, rawDate string, routeID int64) ([]ScheduleView, error) {
	date, err := parseTravelDate(rawDate, locOr(s.Location))
	if err != nil {
		return nil, err
	}
	list, err := s.Schedules.List(ctx, date, routeID)
	if err != nil {
		return nil, domain.Wrap("failed to list schedules", err)
	}
	counts := map[int64]map[repositories.SlotKey]int{}
	out := make([]ScheduleView, 0, len(list))
	for _, sc := range list {
		byRoute, ok := counts[sc.RouteID]
		if !ok {
			byRoute, err = s.Bookings.CountsByRouteDate(ctx, sc.RouteID, date)
			if err != nil {
				return nil, domain.Wrap("failed to count bookings", err)
			}
			counts[sc.RouteID] = byRoute
		}
		sc.Booked = byRoute[repositories.SlotKey{TripType: sc.TripType, Slot: sc.Slot}]
		out = append(out, ScheduleView{Schedule: sc, Available: max(sc.TotalSeats-sc.Booked, 0)})
	}
	return out, nil
}

// RideHistory lists a rider's completed legs, newest first.
func (s ScheduleService) RideHistory(ctx context.Context, riderID int64) ([]models.RideHistory, error) {
	if riderID <= 0 {
		return nil, domain.ValidationError{Field: "userId", Msg: "is required"}
	}
	list, err := s.History.ListByRider(ctx, riderID)
	if err != nil {
		return nil, domain.Wrap("failed to load ride history", err)
	}
	return list, nil
}
