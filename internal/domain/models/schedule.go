package models

import (
	"time"

	"shuttle/internal/domain"
)

// Schedule is the per-date materialisation of (route, slot, trip type).
// Booked is an advisory counter; occupancy is always recounted from bookings.
type Schedule struct {
	ID         int64                 `json:"id"`
	Date       time.Time             `json:"date"`
	RouteID    int64                 `json:"routeId"`
	Slot       string                `json:"slot"`
	TripType   domain.TripType       `json:"tripType"`
	BusID      int64                 `json:"busId"`
	SocietyID  *int64                `json:"societyId"`
	TotalSeats int                   `json:"totalSeats"`
	Booked     int                   `json:"booked"`
	Status     domain.ScheduleStatus `json:"status"`
	StartTime  *time.Time            `json:"startTime"`
	EndTime    *time.Time            `json:"endTime"`
	CreatedAt  time.Time             `json:"createdAt"`
}

// SlotAvailability is the derived occupancy of one schedule.
type SlotAvailability struct {
	ScheduleID int64                 `json:"scheduleId"`
	Slot       string                `json:"slot"`
	TripType   domain.TripType       `json:"tripType"`
	Status     domain.ScheduleStatus `json:"status"`
	TotalSeats int                   `json:"totalSeats"`
	Booked     int                   `json:"booked"`
	Available  int                   `json:"available"`
	BusID      int64                 `json:"busId"`
	StartTime  *time.Time            `json:"startTime"`
	EndTime    *time.Time            `json:"endTime"`
}
