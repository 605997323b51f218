package repositories

import (
	"context"
	"database/sql"
	"fmt"

	intdb "shuttle/internal/db"
	"shuttle/internal/domain"
	"shuttle/internal/domain/models"
)

// ClosureCandidates returns open bookings whose leg in the schedule's
// direction rides this schedule. Rows written without a schedule id are
// matched by route and slot, or by bus.
func (r BookingRepo) ClosureCandidates(ctx context.Context, s models.Schedule) ([]models.Booking, error) {
	db := r.db()
	if db == nil {
		return nil, fmt.Errorf("db not available")
	}
	t := s.TripType
	rows, err := db.QueryContext(ctx, `
		SELECT `+bookingColumns+` FROM daily_bookings
		WHERE travel_date=? AND completed=0 AND status IN (`+activeStatusSQL()+`)
		  AND `+legColumn(t, "slot")+`<>'' AND `+legColumn(t, "completed")+`=0
		  AND (`+legColumn(t, "schedule_id")+`=?
		       OR (`+legColumn(t, "schedule_id")+` IS NULL
		           AND ((route_id=? AND `+legColumn(t, "slot")+`=?) OR `+legColumn(t, "bus_id")+`=?)))
		ORDER BY id ASC`,
		dateArg(s.Date), s.ID, s.RouteID, s.Slot, s.BusID)
	if err != nil {
		return nil, err
	}
	return scanBookings(rows)
}

// CloseLeg completes one leg of a booking and appends its ride history in
// a single transaction. closed is false when the leg was already completed;
// created is false when history for (booking, trip type) already exists.
func (r BookingRepo) CloseLeg(ctx context.Context, bookingID int64, t domain.TripType, h models.RideHistory) (closed, created bool, err error) {
	other := t.Other()
	bothDone := legColumn(other, "slot") + `='' OR ` + legColumn(other, "completed") + `=1`
	err = intdb.WithTx(ctx, r.db(), func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE daily_bookings
			SET `+legColumn(t, "completed")+`=1,
			    completed=IF(`+bothDone+`, 1, completed),
			    status=IF(`+bothDone+`, '`+string(domain.BookingCompleted)+`', status)
			WHERE id=? AND `+legColumn(t, "completed")+`=0 AND status IN (`+activeStatusSQL()+`)`,
			bookingID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil
		}
		closed = true

		_, err = tx.ExecContext(ctx, `
			INSERT INTO ride_history (rider_id, travel_date, slot, trip_type, pickup_location, drop_location,
				route_id, route_no, bus_id, bus_reg, seat_no, booking_id, schedule_id)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			h.RiderID, dateArg(h.Date), h.Slot, string(t), h.PickupLocation, h.DropLocation,
			h.RouteID, h.RouteNo, h.BusID, h.BusReg, intdb.NullInt(h.SeatNo), bookingID, h.ScheduleID)
		if err != nil {
			if intdb.IsDuplicateKey(err) {
				return nil
			}
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, false, err
	}
	return closed, created, nil
}
