package repositories

import (
	"context"
	"database/sql"
	"fmt"

	intconfig "shuttle/internal/config"
	intdb "shuttle/internal/db"
	"shuttle/internal/domain"
	"shuttle/internal/domain/models"
)

type RideHistoryRepo struct {
	DB *sql.DB
}

func (r RideHistoryRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// ListByRider returns the rider's history, newest first.
func (r RideHistoryRepo) ListByRider(ctx context.Context, riderID int64) ([]models.RideHistory, error) {
	db := r.db()
	if db == nil {
		return nil, fmt.Errorf("db not available")
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, rider_id, travel_date, slot, trip_type, pickup_location, drop_location,
			route_id, route_no, bus_id, bus_reg, seat_no, booking_id, schedule_id, created_at
		FROM ride_history
		WHERE rider_id=?
		ORDER BY travel_date DESC, id DESC`, riderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.RideHistory{}
	for rows.Next() {
		var h models.RideHistory
		var tripType string
		var seat sql.NullInt64
		if err := rows.Scan(&h.ID, &h.RiderID, &h.Date, &h.Slot, &tripType, &h.PickupLocation, &h.DropLocation,
			&h.RouteID, &h.RouteNo, &h.BusID, &h.BusReg, &seat, &h.BookingID, &h.ScheduleID, &h.CreatedAt); err != nil {
			return out, err
		}
		h.TripType = domain.TripType(tripType)
		h.SeatNo = intdb.IntPtr(seat)
		out = append(out, h)
	}
	return out, rows.Err()
}
