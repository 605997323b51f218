package models

import (
	"time"

	"shuttle/internal/domain"
)

// RideHistory is written once per (booking, trip type) when a trip closes.
type RideHistory struct {
	ID             int64           `json:"id"`
	RiderID        int64           `json:"userId"`
	Date           time.Time       `json:"date"`
	Slot           string          `json:"time"`
	TripType       domain.TripType `json:"tripType"`
	PickupLocation string          `json:"pickupLocation"`
	DropLocation   string          `json:"dropLocation"`
	RouteID        int64           `json:"routeId"`
	RouteNo        string          `json:"routeNo"`
	BusID          int64           `json:"busId"`
	BusReg         string          `json:"busReg"`
	SeatNo         *int            `json:"seatNo"`
	BookingID      int64           `json:"bookingId"`
	ScheduleID     int64           `json:"scheduleId"`
	CreatedAt      time.Time       `json:"createdAt"`
}
