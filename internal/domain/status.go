package domain

import (
	"fmt"
	"strings"
)

type BookingStatus string

const (
	BookingReserved  BookingStatus = "reserved"
	BookingBoarded   BookingStatus = "boarded"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Unboarded reservations may be closed out directly when their trip ends.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingReserved: {BookingBoarded, BookingCompleted, BookingCancelled},
	BookingBoarded:  {BookingCompleted, BookingCancelled},
}

// Active reports whether the booking still holds a claim on capacity.
func (s BookingStatus) Active() bool {
	return s == BookingReserved || s == BookingBoarded
}

func (s BookingStatus) CanTransition(to BookingStatus) bool {
	for _, next := range bookingTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition returns to when the move is allowed, otherwise a ConflictError.
func (s BookingStatus) Transition(to BookingStatus) (BookingStatus, error) {
	if !s.CanTransition(to) {
		return s, ConflictError{
			Resource: "booking",
			Msg:      fmt.Sprintf("cannot move from %s to %s", s, to),
			Reason:   ReasonInvalidTransition,
		}
	}
	return to, nil
}

func ParseBookingStatus(s string) (BookingStatus, bool) {
	st := BookingStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case BookingReserved, BookingBoarded, BookingCompleted, BookingCancelled:
		return st, true
	}
	return "", false
}

// ActiveBookingStatuses lists statuses that count against capacity.
func ActiveBookingStatuses() []BookingStatus {
	return []BookingStatus{BookingReserved, BookingBoarded}
}

type ScheduleStatus string

const (
	ScheduleScheduled     ScheduleStatus = "Scheduled"
	ScheduleActive        ScheduleStatus = "Active"
	ScheduleTripStarted   ScheduleStatus = "Trip Started"
	ScheduleTripCompleted ScheduleStatus = "Trip Completed"
	ScheduleCancelled     ScheduleStatus = "Cancelled"
)

// Closing a completed trip again is allowed so closure can be re-run.
var scheduleTransitions = map[ScheduleStatus][]ScheduleStatus{
	ScheduleScheduled:     {ScheduleScheduled, ScheduleActive, ScheduleTripStarted, ScheduleTripCompleted, ScheduleCancelled},
	ScheduleActive:        {ScheduleScheduled, ScheduleActive, ScheduleTripStarted, ScheduleTripCompleted, ScheduleCancelled},
	ScheduleTripStarted:   {ScheduleTripCompleted, ScheduleCancelled},
	ScheduleTripCompleted: {ScheduleTripCompleted},
}

// Bookable reports whether riders may still reserve on the schedule.
func (s ScheduleStatus) Bookable() bool {
	return s == ScheduleScheduled || s == ScheduleActive
}

func (s ScheduleStatus) CanTransition(to ScheduleStatus) bool {
	for _, next := range scheduleTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s ScheduleStatus) Transition(to ScheduleStatus) (ScheduleStatus, error) {
	if !s.CanTransition(to) {
		return s, ConflictError{
			Resource: "schedule",
			Msg:      fmt.Sprintf("cannot move from %s to %s", s, to),
			Reason:   ReasonInvalidTransition,
		}
	}
	return to, nil
}

// ParseScheduleStatus matches case-insensitively, so "active" and "ACTIVE"
// both resolve to Active.
func ParseScheduleStatus(s string) (ScheduleStatus, bool) {
	v := strings.TrimSpace(s)
	for _, st := range []ScheduleStatus{ScheduleScheduled, ScheduleActive, ScheduleTripStarted, ScheduleTripCompleted, ScheduleCancelled} {
		if strings.EqualFold(v, string(st)) {
			return st, true
		}
	}
	return "", false
}
