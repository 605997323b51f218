package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/domain/models"
	"shuttle/internal/repositories"
	"shuttle/internal/utils"
)

// TripClosureService completes a schedule's trip and writes ride history.
// Each booking is closed in its own transaction, so a partial run can be
// repeated safely.
type TripClosureService struct {
	Bookings  BookingStore
	Schedules ScheduleStore
	Routes    RouteStore
	Buses     BusStore
	Cache     AvailabilityCache
	Now       func() time.Time
	RequestID string
}

type ClosureFailure struct {
	BookingID int64  `json:"bookingId"`
	Error     string `json:"error"`
}

type ClosureResult struct {
	ScheduleID     int64            `json:"scheduleId"`
	Affected       int              `json:"affected"`
	HistoryCreated int              `json:"historyCreated"`
	Failed         []ClosureFailure `json:"failed"`
}

func (s TripClosureService) CloseTrip(ctx context.Context, scheduleID int64) (ClosureResult, error) {
	result := ClosureResult{ScheduleID: scheduleID, Failed: []ClosureFailure{}}
	sched, err := loadSchedule(ctx, s.Schedules, scheduleID)
	if err != nil {
		return result, err
	}
	if sched, err = s.completeSchedule(ctx, sched); err != nil {
		return result, err
	}

	candidates, err := s.Bookings.ClosureCandidates(ctx, sched)
	if err != nil {
		return result, domain.Wrap("failed to load bookings for closure", err)
	}

	routeNo := ""
	if s.Routes != nil {
		if r, err := s.Routes.GetByID(ctx, sched.RouteID); err == nil {
			routeNo = r.RouteNo
		}
	}
	busReg := ""
	if s.Buses != nil {
		if b, err := s.Buses.GetByID(ctx, sched.BusID); err == nil {
			busReg = b.RegNumber
		}
	}

	for _, b := range candidates {
		leg := b.Leg(sched.TripType)
		h := models.RideHistory{
			RiderID:        b.RiderID,
			Date:           b.Date,
			Slot:           leg.Slot,
			TripType:       sched.TripType,
			PickupLocation: b.PickupLocation,
			DropLocation:   b.DropLocation,
			RouteID:        b.RouteID,
			RouteNo:        utils.FirstNonEmpty(b.RouteNo, routeNo),
			BusID:          sched.BusID,
			BusReg:         busReg,
			SeatNo:         leg.SeatNo,
			BookingID:      b.ID,
			ScheduleID:     sched.ID,
		}
		closed, created, err := s.Bookings.CloseLeg(ctx, b.ID, sched.TripType, h)
		if err != nil {
			result.Failed = append(result.Failed, ClosureFailure{BookingID: b.ID, Error: err.Error()})
			utils.LogEvent(s.RequestID, "closure", "close_leg_failed", fmt.Sprintf("booking_id=%d err=%v", b.ID, err))
			continue
		}
		if closed {
			result.Affected++
		}
		if created {
			result.HistoryCreated++
		}
	}

	invalidateAvailability(ctx, s.Cache, s.RequestID, sched.RouteID, sched.Date)
	utils.LogEvent(s.RequestID, "closure", "close_trip",
		fmt.Sprintf("schedule_id=%d affected=%d history_created=%d failed=%d",
			sched.ID, result.Affected, result.HistoryCreated, len(result.Failed)))
	return result, nil
}

// completeSchedule moves the schedule to Trip Completed. Re-closing an
// already completed trip keeps its original end time.
func (s TripClosureService) completeSchedule(ctx context.Context, sched models.Schedule) (models.Schedule, error) {
	if sched.Status == domain.ScheduleTripCompleted {
		return sched, nil
	}
	next, err := sched.Status.Transition(domain.ScheduleTripCompleted)
	if err != nil {
		return sched, err
	}
	end := nowOr(s.Now)
	err = s.Schedules.UpdateStatus(ctx, sched.ID, sched.Status, next, nil, &end)
	if errors.Is(err, repositories.ErrStale) {
		current, gerr := loadSchedule(ctx, s.Schedules, sched.ID)
		if gerr != nil {
			return sched, gerr
		}
		if current.Status == domain.ScheduleTripCompleted {
			return current, nil
		}
		return sched, domain.ConflictError{Resource: "schedule", Msg: "schedule changed, reload and retry", Reason: domain.ReasonInvalidTransition, Err: err}
	}
	if err != nil {
		return sched, domain.Wrap("failed to complete schedule", err)
	}
	sched.Status = next
	sched.EndTime = &end
	return sched, nil
}

func loadSchedule(ctx context.Context, schedules ScheduleStore, id int64) (models.Schedule, error) {
	if id <= 0 {
		return models.Schedule{}, domain.ValidationError{Field: "scheduleId", Msg: "is required"}
	}
	sched, err := schedules.GetByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return sched, domain.NotFoundError{Resource: "schedule", Reason: domain.ReasonScheduleNotFound}
		}
		return sched, domain.Wrap("failed to load schedule", err)
	}
	return sched, nil
}
