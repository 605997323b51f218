package models

import (
	"time"

	"shuttle/internal/domain"
)

// Leg is one independently seated direction of a daily booking.
// An empty Slot means the booking does not carry this leg.
type Leg struct {
	Slot       string `json:"slot"`
	BusID      *int64 `json:"busId"`
	ScheduleID *int64 `json:"scheduleId"`
	SeatNo     *int   `json:"seatNo"`
	Boarded    bool   `json:"boarded"`
	Completed  bool   `json:"completed"`
}

func (l Leg) Present() bool { return l.Slot != "" }

// Booking is a rider's claim on one or two legs for a single travel date.
type Booking struct {
	ID             int64                `json:"id"`
	RiderID        int64                `json:"userId"`
	Date           time.Time            `json:"date"`
	RouteID        int64                `json:"routeId"`
	RouteNo        string               `json:"routeNo"`
	PickupLocation string               `json:"pickupLocation"`
	DropLocation   string               `json:"dropLocation"`
	Pickup         Leg                  `json:"pickup"`
	Drop           Leg                  `json:"drop"`
	Status         domain.BookingStatus `json:"status"`
	Completed      bool                 `json:"completed"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

func (b Booking) Leg(t domain.TripType) Leg {
	if t == domain.TripDrop {
		return b.Drop
	}
	return b.Pickup
}

func (b *Booking) SetLeg(t domain.TripType, l Leg) {
	if t == domain.TripDrop {
		b.Drop = l
		return
	}
	b.Pickup = l
}

// Legs lists the directions this booking carries, pickup first.
func (b Booking) Legs() []domain.TripType {
	out := make([]domain.TripType, 0, 2)
	if b.Pickup.Present() {
		out = append(out, domain.TripPickup)
	}
	if b.Drop.Present() {
		out = append(out, domain.TripDrop)
	}
	return out
}

// LegRef identifies the physical trip a seat belongs to.
type LegRef struct {
	Date     time.Time
	Slot     string
	TripType domain.TripType
	BusID    int64
}
