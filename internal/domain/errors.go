package domain

import (
	"errors"
	"fmt"
)

// Stable reason codes returned to clients next to the human message.
const (
	ReasonInvalidInput         = "invalid_input"
	ReasonNotEntitled          = "not_entitled"
	ReasonRouteNotFound        = "route_not_found"
	ReasonInvalidLocation      = "invalid_location"
	ReasonSlotUnavailable      = "slot_unavailable"
	ReasonSlotFull             = "slot_full"
	ReasonDuplicateBooking     = "duplicate_booking"
	ReasonBadToken             = "bad_token"
	ReasonBusNotFound          = "bus_not_found"
	ReasonBookingNotFound      = "booking_not_found"
	ReasonScheduleNotFound     = "schedule_not_found"
	ReasonPassNotFound         = "pass_not_found"
	ReasonNoPendingReservation = "no_pending_reservation"
	ReasonBusMismatch          = "bus_mismatch"
	ReasonAlreadyBoarded       = "already_boarded"
	ReasonNoSeatsLeft          = "no_seats_left"
	ReasonSeatRaceLost         = "seat_race_lost"
	ReasonInvalidTransition    = "invalid_transition"
	ReasonInvalidCredentials   = "invalid_credentials"
	ReasonNotOwner             = "not_owner"
	ReasonAlreadyExists        = "already_exists"
	ReasonCapacityBelowBooked  = "capacity_below_booked"
	ReasonSeatsAssigned        = "seats_assigned"
	ReasonStorage              = "storage_error"
)

type reasoned interface {
	ReasonCode() string
}

type NotFoundError struct {
	Resource string
	Reason   string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error      { return e.Err }
func (e NotFoundError) ReasonCode() string { return e.Reason }

type ValidationError struct {
	Field  string
	Msg    string
	Reason string
	Err    error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

func (e ValidationError) ReasonCode() string {
	if e.Reason == "" {
		return ReasonInvalidInput
	}
	return e.Reason
}

// ConflictError covers capacity, duplicate and race failures. Callers may
// re-query availability and resubmit.
type ConflictError struct {
	Resource string
	Msg      string
	Reason   string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error      { return e.Err }
func (e ConflictError) ReasonCode() string { return e.Reason }

type AuthorizationError struct {
	Msg    string
	Reason string
	Err    error
}

func (e AuthorizationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "not authorized"
}

func (e AuthorizationError) Unwrap() error      { return e.Err }
func (e AuthorizationError) ReasonCode() string { return e.Reason }

// SystemError wraps storage and infrastructure failures. Retryable with backoff.
type SystemError struct {
	Msg string
	Err error
}

func (e SystemError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e SystemError) Unwrap() error      { return e.Err }
func (e SystemError) ReasonCode() string { return ReasonStorage }

// Wrap turns an unexpected error into a SystemError, leaving typed domain
// errors untouched.
func Wrap(msg string, err error) error {
	if err == nil {
		return nil
	}
	var r reasoned
	if errors.As(err, &r) {
		return err
	}
	return SystemError{Msg: msg, Err: err}
}

// ReasonOf returns the reason code carried by err, or "" for untyped errors.
func ReasonOf(err error) string {
	var r reasoned
	if errors.As(err, &r) {
		return r.ReasonCode()
	}
	return ""
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsAuthorization(err error) bool {
	var target AuthorizationError
	return errors.As(err, &target)
}

func IsSystem(err error) bool {
	var target SystemError
	return errors.As(err, &target)
}
