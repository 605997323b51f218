package services

import (
	"context"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/domain/models"
	"shuttle/internal/repositories"
	"shuttle/internal/utils"
)

// AvailabilityService reports per-slot occupancy for a route and date.
type AvailabilityService struct {
	Schedules ScheduleStore
	Routes    RouteStore
	Bookings  BookingStore
	Passes    PassStore
	Cache     AvailabilityCache
	Location  *time.Location
	RequestID string
}

type AvailabilityQuery struct {
	RouteID    int64
	RouteNo    string
	RiderID    int64
	Date       string
	OnlyActive bool
}

type Availability struct {
	RouteID int64                     `json:"routeId"`
	RouteNo string                    `json:"routeNo"`
	Date    string                    `json:"date"`
	Slots   []models.SlotAvailability `json:"slots"`
}

// Availability derives booked counts from bookings, never from the
// schedule's advisory counter. The route may come from the rider's pass.
func (s AvailabilityService) Availability(ctx context.Context, q AvailabilityQuery) (Availability, error) {
	date, err := parseTravelDate(q.Date, locOr(s.Location))
	if err != nil {
		return Availability{}, err
	}

	var passRouteID int64
	if q.RouteID <= 0 && q.RouteNo == "" {
		if q.RiderID <= 0 || s.Passes == nil {
			return Availability{}, domain.ValidationError{Field: "routeNo", Msg: "routeNo or userId is required"}
		}
		pass, err := s.Passes.ActiveForRider(ctx, q.RiderID, date)
		if err != nil {
			if isNoRows(err) {
				return Availability{}, domain.AuthorizationError{Msg: "rider has no active pass", Reason: domain.ReasonNotEntitled}
			}
			return Availability{}, domain.Wrap("failed to load pass", err)
		}
		passRouteID = pass.RouteID
	}
	route, err := routeLookup(ctx, s.Routes, q.RouteID, q.RouteNo, passRouteID)
	if err != nil {
		return Availability{}, err
	}

	out, err := s.load(ctx, route, date)
	if err != nil {
		return Availability{}, err
	}
	if q.OnlyActive {
		filtered := make([]models.SlotAvailability, 0, len(out.Slots))
		for _, slot := range out.Slots {
			if slot.Status.Bookable() {
				filtered = append(filtered, slot)
			}
		}
		out.Slots = filtered
	}
	return out, nil
}

func (s AvailabilityService) load(ctx context.Context, route models.Route, date time.Time) (Availability, error) {
	key := availabilityKey(route.ID, date)
	if s.Cache != nil {
		var cached Availability
		hit, err := s.Cache.Get(ctx, key, &cached)
		if err != nil {
			utils.LogError(s.RequestID, "availability", "cache_read_failed", err)
		}
		if hit {
			return cached, nil
		}
	}

	schedules, err := s.Schedules.List(ctx, date, route.ID)
	if err != nil {
		return Availability{}, domain.Wrap("failed to list schedules", err)
	}
	counts, err := s.Bookings.CountsByRouteDate(ctx, route.ID, date)
	if err != nil {
		return Availability{}, domain.Wrap("failed to count bookings", err)
	}

	out := Availability{
		RouteID: route.ID,
		RouteNo: route.RouteNo,
		Date:    utils.FormatDate(date),
		Slots:   make([]models.SlotAvailability, 0, len(schedules)),
	}
	for _, sc := range schedules {
		booked := counts[repositories.SlotKey{TripType: sc.TripType, Slot: sc.Slot}]
		out.Slots = append(out.Slots, models.SlotAvailability{
			ScheduleID: sc.ID,
			Slot:       sc.Slot,
			TripType:   sc.TripType,
			Status:     sc.Status,
			TotalSeats: sc.TotalSeats,
			Booked:     booked,
			Available:  max(sc.TotalSeats-booked, 0),
			BusID:      sc.BusID,
			StartTime:  sc.StartTime,
			EndTime:    sc.EndTime,
		})
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, key, out); err != nil {
			utils.LogError(s.RequestID, "availability", "cache_write_failed", err)
		}
	}
	return out, nil
}
