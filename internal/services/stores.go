package services

import (
	"context"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/domain/models"
	"shuttle/internal/repositories"
)

// Stores consumed by the services. The MySQL repositories satisfy them;
// tests substitute in-memory versions.

type BookingStore interface {
	Reserve(ctx context.Context, nb repositories.NewBooking) (models.Booking, error)
	GetByID(ctx context.Context, id int64) (models.Booking, error)
	FindForBoarding(ctx context.Context, riderID, bookingID int64) (models.Booking, error)
	ActiveForRider(ctx context.Context, riderID int64, from time.Time) ([]models.Booking, error)
	Cancel(ctx context.Context, b models.Booking) error
	CountsByRouteDate(ctx context.Context, routeID int64, date time.Time) (map[repositories.SlotKey]int, error)
	TakenSeats(ctx context.Context, ref models.LegRef) ([]int, error)
	ClaimSeat(ctx context.Context, bookingID int64, t domain.TripType, seat int) error
	MarkBoarded(ctx context.Context, bookingID int64, t domain.TripType) error
	ClosureCandidates(ctx context.Context, s models.Schedule) ([]models.Booking, error)
	CloseLeg(ctx context.Context, bookingID int64, t domain.TripType, h models.RideHistory) (closed, created bool, err error)
}

type ScheduleStore interface {
	Upsert(ctx context.Context, s models.Schedule) (int64, error)
	GetByID(ctx context.Context, id int64) (models.Schedule, error)
	Find(ctx context.Context, routeID int64, date time.Time, slot string, t domain.TripType) (models.Schedule, error)
	List(ctx context.Context, date time.Time, routeID int64) ([]models.Schedule, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.ScheduleStatus, start, end *time.Time) error
}

type RouteStore interface {
	Create(ctx context.Context, r models.Route) (int64, error)
	GetByID(ctx context.Context, id int64) (models.Route, error)
	GetByRouteNo(ctx context.Context, routeNo string) (models.Route, error)
	List(ctx context.Context, onlyActive bool) ([]models.Route, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

type BusStore interface {
	Create(ctx context.Context, b models.Bus) (int64, error)
	GetByID(ctx context.Context, id int64) (models.Bus, error)
	FindByRegNumber(ctx context.Context, reg string) (models.Bus, error)
	List(ctx context.Context) ([]models.Bus, error)
}

type PassStore interface {
	Create(ctx context.Context, p models.Pass) (int64, error)
	ActiveForRider(ctx context.Context, riderID int64, on time.Time) (models.Pass, error)
	GetByID(ctx context.Context, id int64) (models.Pass, error)
}

type CounterStore interface {
	Next(ctx context.Context, key string) (int64, error)
}

type RideHistoryStore interface {
	ListByRider(ctx context.Context, riderID int64) ([]models.RideHistory, error)
}
