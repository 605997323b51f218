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

// ReservationService creates daily bookings against per-date schedules.
type ReservationService struct {
	Bookings  BookingStore
	Schedules ScheduleStore
	Routes    RouteStore
	Buses     BusStore
	Passes    PassStore
	Cache     AvailabilityCache
	Location  *time.Location
	Now       func() time.Time
	RequestID string
}

type ReserveInput struct {
	RiderID        int64  `json:"userId"`
	Date           string `json:"date"`
	PickupSlot     string `json:"pickupSlot"`
	DropSlot       string `json:"dropSlot"`
	RouteID        int64  `json:"routeId"`
	RouteNo        string `json:"routeNo"`
	PickupLocation string `json:"pickupLocation"`
	DropLocation   string `json:"dropLocation"`
}

func (s ReservationService) Reserve(ctx context.Context, in ReserveInput) (BookingView, error) {
	in.PickupSlot = strings.TrimSpace(in.PickupSlot)
	in.DropSlot = strings.TrimSpace(in.DropSlot)
	if in.RiderID <= 0 {
		return BookingView{}, domain.ValidationError{Field: "userId", Msg: "is required"}
	}
	if in.PickupSlot == "" && in.DropSlot == "" {
		return BookingView{}, domain.ValidationError{Field: "slot", Msg: "pickup or drop slot is required"}
	}
	loc := locOr(s.Location)
	date, err := parseTravelDate(in.Date, loc)
	if err != nil {
		return BookingView{}, err
	}
	if date.Before(utils.StartOfDay(nowOr(s.Now), loc)) {
		return BookingView{}, domain.ValidationError{Field: "date", Msg: "travel date is in the past"}
	}

	pass, err := s.Passes.ActiveForRider(ctx, in.RiderID, date)
	if err != nil {
		if isNoRows(err) {
			return BookingView{}, domain.AuthorizationError{Msg: "rider has no active pass", Reason: domain.ReasonNotEntitled}
		}
		return BookingView{}, domain.Wrap("failed to load pass", err)
	}

	route, err := routeLookup(ctx, s.Routes, in.RouteID, in.RouteNo, pass.RouteID)
	if err != nil {
		return BookingView{}, err
	}

	pickupLoc, dropLoc, err := resolveLocations(route, pass, in)
	if err != nil {
		return BookingView{}, err
	}

	nb := repositories.NewBooking{
		RiderID:        in.RiderID,
		Date:           date,
		RouteID:        route.ID,
		RouteNo:        route.RouteNo,
		PickupLocation: pickupLoc,
		DropLocation:   dropLoc,
	}
	for _, req := range []struct {
		t    domain.TripType
		slot string
	}{{domain.TripPickup, in.PickupSlot}, {domain.TripDrop, in.DropSlot}} {
		if req.slot == "" {
			continue
		}
		sched, err := s.Schedules.Find(ctx, route.ID, date, req.slot, req.t)
		if err != nil && !isNoRows(err) {
			return BookingView{}, domain.Wrap("failed to load schedule", err)
		}
		if err != nil || !sched.Status.Bookable() {
			return BookingView{}, slotUnavailable(req.t, req.slot)
		}
		nb.Legs = append(nb.Legs, repositories.ReserveLeg{
			TripType:   req.t,
			Slot:       req.slot,
			ScheduleID: sched.ID,
			BusID:      sched.BusID,
		})
	}

	booking, err := s.Bookings.Reserve(ctx, nb)
	if err != nil {
		return BookingView{}, translateReserveError(err)
	}
	invalidateAvailability(ctx, s.Cache, s.RequestID, route.ID, date)
	utils.LogEvent(s.RequestID, "reservation", "reserve",
		fmt.Sprintf("booking_id=%d rider_id=%d route=%s date=%s", booking.ID, in.RiderID, route.RouteNo, utils.FormatDate(date)))

	return buildBookingView(ctx, s.Routes, s.Buses, booking, &route), nil
}

func slotUnavailable(t domain.TripType, slot string) error {
	return domain.ConflictError{
		Resource: "schedule",
		Msg:      fmt.Sprintf("no bookable %s trip at %s", t, slot),
		Reason:   domain.ReasonSlotUnavailable,
	}
}

func translateReserveError(err error) error {
	var full repositories.ErrCapacityReached
	switch {
	case errors.As(err, &full):
		return domain.ConflictError{
			Resource: "schedule",
			Msg:      fmt.Sprintf("%s slot %s is full", full.TripType, full.Slot),
			Reason:   domain.ReasonSlotFull,
			Err:      err,
		}
	case errors.Is(err, repositories.ErrActiveBookingExists):
		return domain.ConflictError{
			Resource: "booking",
			Msg:      "an active booking already exists for this date and slot",
			Reason:   domain.ReasonDuplicateBooking,
			Err:      err,
		}
	case errors.Is(err, repositories.ErrScheduleClosed), isNoRows(err):
		return domain.ConflictError{Resource: "schedule", Msg: "trip is no longer bookable", Reason: domain.ReasonSlotUnavailable, Err: err}
	}
	return domain.Wrap("failed to create booking", err)
}

// resolveLocations validates overrides against the route's stops and fills
// defaults from the pass, then from the route endpoints.
func resolveLocations(route models.Route, pass models.Pass, in ReserveInput) (string, string, error) {
	for _, o := range []struct{ field, value string }{
		{"pickupLocation", in.PickupLocation},
		{"dropLocation", in.DropLocation},
	} {
		if strings.TrimSpace(o.value) != "" && !route.HasStop(o.value) {
			return "", "", domain.ValidationError{
				Field:  o.field,
				Msg:    fmt.Sprintf("%q is not a stop on route %s", strings.TrimSpace(o.value), route.RouteNo),
				Reason: domain.ReasonInvalidLocation,
			}
		}
	}
	pickup := utils.FirstNonEmpty(in.PickupLocation, pass.PickupLocation, route.StartPoint)
	drop := utils.FirstNonEmpty(in.DropLocation, pass.DropLocation, route.EndPoint)
	return pickup, drop, nil
}

// ActiveBooking returns the rider's nearest open booking from today on.
func (s ReservationService) ActiveBooking(ctx context.Context, riderID int64) (BookingView, error) {
	if riderID <= 0 {
		return BookingView{}, domain.ValidationError{Field: "userId", Msg: "is required"}
	}
	today := utils.StartOfDay(nowOr(s.Now), locOr(s.Location))
	list, err := s.Bookings.ActiveForRider(ctx, riderID, today)
	if err != nil {
		return BookingView{}, domain.Wrap("failed to load bookings", err)
	}
	if len(list) == 0 {
		return BookingView{}, domain.NotFoundError{Resource: "active booking", Reason: domain.ReasonBookingNotFound}
	}
	return buildBookingView(ctx, s.Routes, s.Buses, list[0], nil), nil
}

func (s ReservationService) Ticket(ctx context.Context, bookingID int64) (BookingView, error) {
	b, err := loadBooking(ctx, s.Bookings, bookingID)
	if err != nil {
		return BookingView{}, err
	}
	return buildBookingView(ctx, s.Routes, s.Buses, b, nil), nil
}

// Cancel releases the rider's booking. Only the owner may cancel.
func (s ReservationService) Cancel(ctx context.Context, riderID, bookingID int64) (BookingView, error) {
	b, err := loadBooking(ctx, s.Bookings, bookingID)
	if err != nil {
		return BookingView{}, err
	}
	if riderID > 0 && b.RiderID != riderID {
		return BookingView{}, domain.AuthorizationError{Msg: "booking belongs to another rider", Reason: domain.ReasonNotOwner}
	}
	next, err := b.Status.Transition(domain.BookingCancelled)
	if err != nil {
		return BookingView{}, err
	}
	if err := s.Bookings.Cancel(ctx, b); err != nil {
		if errors.Is(err, repositories.ErrStale) {
			return BookingView{}, domain.ConflictError{Resource: "booking", Msg: "booking changed, reload and retry", Reason: domain.ReasonInvalidTransition, Err: err}
		}
		return BookingView{}, domain.Wrap("failed to cancel booking", err)
	}
	b.Status = next
	invalidateAvailability(ctx, s.Cache, s.RequestID, b.RouteID, b.Date)
	utils.LogEvent(s.RequestID, "reservation", "cancel", fmt.Sprintf("booking_id=%d", b.ID))
	return buildBookingView(ctx, s.Routes, s.Buses, b, nil), nil
}

func loadBooking(ctx context.Context, bookings BookingStore, id int64) (models.Booking, error) {
	if id <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "bookingId", Msg: "is required"}
	}
	b, err := bookings.GetByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return b, domain.NotFoundError{Resource: "booking", Reason: domain.ReasonBookingNotFound}
		}
		return b, domain.Wrap("failed to load booking", err)
	}
	return b, nil
}
