package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"shuttle/internal/domain"
	"shuttle/internal/domain/models"
	"shuttle/internal/repositories"
	"shuttle/internal/utils"
)

const (
	defaultSeatClaimAttempts = 5
	fallbackBusCapacity      = 25
)

// SeatPicker chooses one seat from a non-empty pool. No ordering is implied;
// collisions are resolved by the storage layer.
type SeatPicker func(available []int) int

func RandomSeat(available []int) int {
	return available[rand.IntN(len(available))]
}

// BoardingService confirms boarding from a bus QR scan and assigns seats.
type BoardingService struct {
	Bookings      BookingStore
	Buses         BusStore
	Schedules     ScheduleStore
	Routes        RouteStore
	Cache         AvailabilityCache
	Picker        SeatPicker
	ClaimAttempts int
	RequestID     string
}

type BoardingResult struct {
	BookingID      int64           `json:"bookingId"`
	TripType       domain.TripType `json:"tripType"`
	SeatNo         int             `json:"seatNo"`
	BusID          int64           `json:"busId"`
	RegNumber      string          `json:"regNumber"`
	AlreadyBoarded bool            `json:"alreadyBoarded"`
	Message        string          `json:"message"`
}

func (s BoardingService) ConfirmBoarding(ctx context.Context, riderID, bookingID int64, qrToken string) (BoardingResult, error) {
	if riderID <= 0 {
		return BoardingResult{}, domain.ValidationError{Field: "userId", Msg: "is required"}
	}
	if bookingID <= 0 {
		return BoardingResult{}, domain.ValidationError{Field: "bookingId", Msg: "is required"}
	}
	if strings.TrimSpace(qrToken) == "" {
		return BoardingResult{}, domain.ValidationError{Field: "qrToken", Msg: "is required"}
	}
	reg, ok := utils.ParseBusQR(qrToken)
	if !ok {
		return BoardingResult{}, domain.ValidationError{Field: "qrToken", Msg: "unrecognised bus QR code", Reason: domain.ReasonBadToken}
	}

	bus, err := s.Buses.FindByRegNumber(ctx, reg)
	if err != nil {
		if isNoRows(err) {
			return BoardingResult{}, domain.NotFoundError{Resource: "bus " + reg, Reason: domain.ReasonBusNotFound}
		}
		return BoardingResult{}, domain.Wrap("failed to load bus", err)
	}

	booking, err := s.Bookings.FindForBoarding(ctx, riderID, bookingID)
	if err != nil {
		if isNoRows(err) {
			return BoardingResult{}, domain.NotFoundError{Resource: "pending reservation", Reason: domain.ReasonNoPendingReservation}
		}
		return BoardingResult{}, domain.Wrap("failed to load booking", err)
	}

	tripType, ok := legForBus(booking, bus.ID)
	if !ok {
		return BoardingResult{}, domain.AuthorizationError{
			Msg:    fmt.Sprintf("bus %s is not assigned to this booking", bus.RegNumber),
			Reason: domain.ReasonBusMismatch,
		}
	}
	leg := booking.Leg(tripType)
	result := BoardingResult{BookingID: booking.ID, TripType: tripType, BusID: bus.ID, RegNumber: bus.RegNumber}

	if leg.Boarded && leg.SeatNo != nil {
		return alreadyBoarded(result, *leg.SeatNo), nil
	}
	if leg.SeatNo != nil {
		if err := s.Bookings.MarkBoarded(ctx, booking.ID, tripType); err != nil {
			return BoardingResult{}, domain.Wrap("failed to mark boarded", err)
		}
		return s.boarded(ctx, booking, result, *leg.SeatNo), nil
	}

	capacity := s.capacity(ctx, bus, leg)
	ref := models.LegRef{Date: booking.Date, Slot: leg.Slot, TripType: tripType, BusID: bus.ID}
	seat, err := s.claimSeat(ctx, booking.ID, ref, capacity)
	if errors.Is(err, repositories.ErrLegAlreadySeated) {
		// A concurrent scan of the same leg won; report its seat.
		current, gerr := s.Bookings.GetByID(ctx, booking.ID)
		if gerr != nil {
			return BoardingResult{}, domain.Wrap("failed to reload booking", gerr)
		}
		if cur := current.Leg(tripType); cur.SeatNo != nil {
			return alreadyBoarded(result, *cur.SeatNo), nil
		}
		return BoardingResult{}, domain.ConflictError{Resource: "booking", Msg: "booking changed during boarding", Reason: domain.ReasonSeatRaceLost, Err: err}
	}
	if err != nil {
		return BoardingResult{}, err
	}
	return s.boarded(ctx, booking, result, seat), nil
}

// legForBus maps the scanned bus to a leg. When both legs ride the same bus
// the pickup leg is chosen until it has been closed.
func legForBus(b models.Booking, busID int64) (domain.TripType, bool) {
	matches := func(l models.Leg) bool {
		return l.Present() && l.BusID != nil && *l.BusID == busID && !l.Completed
	}
	if matches(b.Pickup) {
		return domain.TripPickup, true
	}
	if matches(b.Drop) {
		return domain.TripDrop, true
	}
	return "", false
}

// capacity prefers the bus's seating capacity, then the schedule's seats.
func (s BoardingService) capacity(ctx context.Context, bus models.Bus, leg models.Leg) int {
	if bus.SeatingCapacity > 0 {
		return bus.SeatingCapacity
	}
	if leg.ScheduleID != nil && s.Schedules != nil {
		if sched, err := s.Schedules.GetByID(ctx, *leg.ScheduleID); err == nil && sched.TotalSeats > 0 {
			return sched.TotalSeats
		}
	}
	return fallbackBusCapacity
}

// claimSeat picks from the free pool and claims it. A unique-key conflict
// means another scan took that seat first; the pool is re-read and the
// pick retried a bounded number of times.
func (s BoardingService) claimSeat(ctx context.Context, bookingID int64, ref models.LegRef, capacity int) (int, error) {
	pick := s.Picker
	if pick == nil {
		pick = RandomSeat
	}
	attempts := s.ClaimAttempts
	if attempts <= 0 {
		attempts = defaultSeatClaimAttempts
	}

	for i := 0; i < attempts; i++ {
		taken, err := s.Bookings.TakenSeats(ctx, ref)
		if err != nil {
			return 0, domain.Wrap("failed to load taken seats", err)
		}
		pool := freeSeats(capacity, taken)
		if len(pool) == 0 {
			return 0, domain.ConflictError{Resource: "bus", Msg: "no seats left for this trip", Reason: domain.ReasonNoSeatsLeft}
		}
		seat := pick(pool)
		err = s.Bookings.ClaimSeat(ctx, bookingID, ref.TripType, seat)
		switch {
		case err == nil:
			return seat, nil
		case errors.Is(err, repositories.ErrSeatTaken):
			utils.LogEvent(s.RequestID, "boarding", "seat_conflict", fmt.Sprintf("booking_id=%d seat=%d attempt=%d", bookingID, seat, i+1))
			continue
		case errors.Is(err, repositories.ErrLegAlreadySeated):
			return 0, err
		default:
			return 0, domain.Wrap("failed to claim seat", err)
		}
	}
	return 0, domain.ConflictError{Resource: "bus", Msg: "seat was taken concurrently, retry boarding", Reason: domain.ReasonSeatRaceLost}
}

// freeSeats returns [1..capacity] minus taken, ascending.
func freeSeats(capacity int, taken []int) []int {
	used := make(map[int]bool, len(taken))
	for _, n := range taken {
		used[n] = true
	}
	out := make([]int, 0, capacity)
	for n := 1; n <= capacity; n++ {
		if !used[n] {
			out = append(out, n)
		}
	}
	return out
}

func alreadyBoarded(r BoardingResult, seat int) BoardingResult {
	r.SeatNo = seat
	r.AlreadyBoarded = true
	r.Message = fmt.Sprintf("already boarded, seat %d", seat)
	return r
}

func (s BoardingService) boarded(ctx context.Context, b models.Booking, r BoardingResult, seat int) BoardingResult {
	r.SeatNo = seat
	r.Message = fmt.Sprintf("boarding confirmed, seat %d on %s", seat, r.RegNumber)
	invalidateAvailability(ctx, s.Cache, s.RequestID, b.RouteID, b.Date)
	utils.LogEvent(s.RequestID, "boarding", "confirm",
		fmt.Sprintf("booking_id=%d trip_type=%s bus=%s seat=%d", b.ID, r.TripType, r.RegNumber, seat))
	return r
}

// BoardingStatus returns the booking snapshot used by the boarding screen.
func (s BoardingService) BoardingStatus(ctx context.Context, bookingID int64) (BookingView, error) {
	b, err := loadBooking(ctx, s.Bookings, bookingID)
	if err != nil {
		return BookingView{}, err
	}
	return buildBookingView(ctx, s.Routes, s.Buses, b, nil), nil
}
