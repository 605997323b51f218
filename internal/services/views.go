package services

import (
	"context"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/domain/models"
	"shuttle/internal/utils"
)

// LegView is one leg of a booking as shown on tickets and boarding screens.
type LegView struct {
	TripType   domain.TripType    `json:"tripType"`
	Slot       string             `json:"slot"`
	ScheduleID *int64             `json:"scheduleId"`
	SeatNo     *int               `json:"seatNo"`
	Boarded    bool               `json:"boarded"`
	Completed  bool               `json:"completed"`
	Bus        *models.BusSummary `json:"bus"`
}

// BookingView is a booking enriched with route and bus display fields.
type BookingView struct {
	ID             int64                `json:"id"`
	RiderID        int64                `json:"userId"`
	Date           string               `json:"date"`
	TripType       domain.TripType      `json:"tripType"`
	RouteID        int64                `json:"routeId"`
	RouteNo        string               `json:"routeNo"`
	RouteStart     string               `json:"routeStart"`
	RouteEnd       string               `json:"routeEnd"`
	PickupLocation string               `json:"pickupLocation"`
	DropLocation   string               `json:"dropLocation"`
	Pickup         *LegView             `json:"pickup"`
	Drop           *LegView             `json:"drop"`
	Status         domain.BookingStatus `json:"status"`
	Completed      bool                 `json:"completed"`
	CreatedAt      time.Time            `json:"createdAt"`
}

// buildBookingView enriches b. Lookup failures leave display fields empty
// instead of failing the request.
func buildBookingView(ctx context.Context, routes RouteStore, buses BusStore, b models.Booking, route *models.Route) BookingView {
	v := BookingView{
		ID:             b.ID,
		RiderID:        b.RiderID,
		Date:           utils.FormatDate(b.Date),
		RouteID:        b.RouteID,
		RouteNo:        b.RouteNo,
		PickupLocation: b.PickupLocation,
		DropLocation:   b.DropLocation,
		Status:         b.Status,
		Completed:      b.Completed,
		CreatedAt:      b.CreatedAt,
	}
	if route == nil && routes != nil && b.RouteID > 0 {
		if r, err := routes.GetByID(ctx, b.RouteID); err == nil {
			route = &r
		}
	}
	if route != nil {
		v.RouteNo = route.RouteNo
		v.RouteStart = route.StartPoint
		v.RouteEnd = route.EndPoint
	}

	busCache := map[int64]*models.BusSummary{}
	for _, t := range b.Legs() {
		leg := b.Leg(t)
		lv := &LegView{
			TripType:   t,
			Slot:       leg.Slot,
			ScheduleID: leg.ScheduleID,
			SeatNo:     leg.SeatNo,
			Boarded:    leg.Boarded,
			Completed:  leg.Completed,
		}
		if leg.BusID != nil && buses != nil {
			summary, seen := busCache[*leg.BusID]
			if !seen {
				if bus, err := buses.GetByID(ctx, *leg.BusID); err == nil {
					s := bus.Summary()
					summary = &s
				}
				busCache[*leg.BusID] = summary
			}
			lv.Bus = summary
		}
		if t == domain.TripPickup {
			v.Pickup = lv
		} else {
			v.Drop = lv
		}
		if v.TripType == "" {
			v.TripType = t
		}
	}
	return v
}
