package repositories

import (
	"errors"
	"fmt"

	"shuttle/internal/domain"
)

// Sentinels returned by the storage layer; services translate them into
// domain errors. Missing rows are reported as sql.ErrNoRows.
var (
	ErrActiveBookingExists = errors.New("rider already holds an active booking for this slot")
	ErrSeatTaken           = errors.New("seat already claimed on this trip")
	ErrLegAlreadySeated    = errors.New("leg already holds a seat")
	ErrStale               = errors.New("record changed concurrently")
	ErrDuplicate           = errors.New("record already exists")
	ErrScheduleClosed      = errors.New("schedule no longer bookable")
	ErrCapacityBelowBooked = errors.New("capacity below active bookings")
	ErrSeatsAssigned       = errors.New("seats already assigned on the current bus")
)

// ErrCapacityReached reports that a leg's schedule is fully booked.
type ErrCapacityReached struct {
	TripType domain.TripType
	Slot     string
}

func (e ErrCapacityReached) Error() string {
	return fmt.Sprintf("%s slot %s is full", e.TripType, e.Slot)
}
