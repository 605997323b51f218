package models

import "time"

const (
	PassActive  = "Active"
	PassExpired = "Expired"
)

// Pass is a rider's standing entitlement on a route.
type Pass struct {
	ID             int64     `json:"id"`
	RiderID        int64     `json:"userId"`
	PickupLocation string    `json:"pickupLocation"`
	DropLocation   string    `json:"dropLocation"`
	PickupSlot     string    `json:"pickupSlot"`
	DropSlot       string    `json:"dropSlot"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	DurationDays   int       `json:"durationDays"`
	Price          int64     `json:"price"`
	Status         string    `json:"status"`
	RouteID        int64     `json:"routeId"`
	RouteNo        string    `json:"routeNo"`
	RouteSerial    int64     `json:"routeSerial"`
	OverallSerial  int64     `json:"overallSerial"`
	TicketID       string    `json:"ticketId"`
	CreatedAt      time.Time `json:"createdAt"`
}
