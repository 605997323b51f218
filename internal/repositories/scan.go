package repositories

import (
	"database/sql"
	"strings"
	"time"

	intdb "shuttle/internal/db"
	"shuttle/internal/domain"
	"shuttle/internal/domain/models"
	"shuttle/internal/utils"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func dateArg(t time.Time) string {
	return utils.FormatDate(t)
}

// legColumn returns the per-leg column name, e.g. pickup_seat_no.
func legColumn(t domain.TripType, suffix string) string {
	if t == domain.TripDrop {
		return "drop_" + suffix
	}
	return "pickup_" + suffix
}

// activeStatusSQL is the IN-list body for statuses that hold capacity.
func activeStatusSQL() string {
	parts := []string{}
	for _, s := range domain.ActiveBookingStatuses() {
		parts = append(parts, "'"+string(s)+"'")
	}
	return strings.Join(parts, ",")
}

const bookingColumns = `id, rider_id, travel_date, route_id, route_no, pickup_location, drop_location,
	pickup_slot, drop_slot, pickup_bus_id, drop_bus_id, pickup_schedule_id, drop_schedule_id,
	pickup_seat_no, drop_seat_no, pickup_boarded, drop_boarded, pickup_completed, drop_completed,
	status, completed, created_at, updated_at`

func scanBooking(s rowScanner) (models.Booking, error) {
	var (
		b                                    models.Booking
		pickupBus, dropBus                   sql.NullInt64
		pickupSchedule, dropSchedule         sql.NullInt64
		pickupSeat, dropSeat                 sql.NullInt64
		pickupBoarded, dropBoarded           bool
		pickupCompleted, dropCompleted, done bool
		status                               string
	)
	err := s.Scan(
		&b.ID, &b.RiderID, &b.Date, &b.RouteID, &b.RouteNo, &b.PickupLocation, &b.DropLocation,
		&b.Pickup.Slot, &b.Drop.Slot, &pickupBus, &dropBus, &pickupSchedule, &dropSchedule,
		&pickupSeat, &dropSeat, &pickupBoarded, &dropBoarded, &pickupCompleted, &dropCompleted,
		&status, &done, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return b, err
	}
	b.Pickup.BusID = intdb.Int64Ptr(pickupBus)
	b.Drop.BusID = intdb.Int64Ptr(dropBus)
	b.Pickup.ScheduleID = intdb.Int64Ptr(pickupSchedule)
	b.Drop.ScheduleID = intdb.Int64Ptr(dropSchedule)
	b.Pickup.SeatNo = intdb.IntPtr(pickupSeat)
	b.Drop.SeatNo = intdb.IntPtr(dropSeat)
	b.Pickup.Boarded, b.Drop.Boarded = pickupBoarded, dropBoarded
	b.Pickup.Completed, b.Drop.Completed = pickupCompleted, dropCompleted
	b.Status, _ = domain.ParseBookingStatus(status)
	if b.Status == "" {
		b.Status = domain.BookingStatus(status)
	}
	b.Completed = done
	return b, nil
}

func scanBookings(rows *sql.Rows) ([]models.Booking, error) {
	defer rows.Close()
	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

const scheduleColumns = `id, travel_date, route_id, slot, trip_type, bus_id, society_id, total_seats, booked, status, start_time, end_time, created_at`

func scanSchedule(s rowScanner) (models.Schedule, error) {
	var (
		sc               models.Schedule
		tripType, status string
		society          sql.NullInt64
		start, end       sql.NullTime
	)
	err := s.Scan(&sc.ID, &sc.Date, &sc.RouteID, &sc.Slot, &tripType, &sc.BusID, &society,
		&sc.TotalSeats, &sc.Booked, &status, &start, &end, &sc.CreatedAt)
	if err != nil {
		return sc, err
	}
	sc.TripType = domain.TripType(tripType)
	sc.Status, _ = domain.ParseScheduleStatus(status)
	if sc.Status == "" {
		sc.Status = domain.ScheduleStatus(status)
	}
	sc.SocietyID = intdb.Int64Ptr(society)
	sc.StartTime = intdb.TimePtr(start)
	sc.EndTime = intdb.TimePtr(end)
	return sc, nil
}
