package domain

import "strings"

// ID is used across domain entities.
type ID = int64

// TripType identifies one leg of a booking.
type TripType string

const (
	TripPickup TripType = "pickup"
	TripDrop   TripType = "drop"
)

func (t TripType) Valid() bool { return t == TripPickup || t == TripDrop }

// Other returns the opposite leg.
func (t TripType) Other() TripType {
	if t == TripPickup {
		return TripDrop
	}
	return TripPickup
}

func ParseTripType(s string) (TripType, bool) {
	t := TripType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Roles carried in auth tokens.
const (
	RoleRider  = "rider"
	RoleDriver = "driver"
	RoleAdmin  = "admin"
)

// RequestContext carries authenticated identity when available.
type RequestContext struct {
	UserID ID     `json:"userId"`
	BusID  ID     `json:"busId,omitempty"`
	Role   string `json:"role"`
}
