package repositories

import (
	"context"
	"fmt"

	intdb "shuttle/internal/db"
	"shuttle/internal/domain"
	"shuttle/internal/domain/models"
)

// TakenSeats lists seat numbers already held on the physical trip.
func (r BookingRepo) TakenSeats(ctx context.Context, ref models.LegRef) ([]int, error) {
	db := r.db()
	if db == nil {
		return nil, fmt.Errorf("db not available")
	}
	seatCol := legColumn(ref.TripType, "seat_no")
	rows, err := db.QueryContext(ctx, `
		SELECT `+seatCol+` FROM daily_bookings
		WHERE travel_date=? AND `+legColumn(ref.TripType, "slot")+`=? AND `+legColumn(ref.TripType, "bus_id")+`=?
		  AND `+seatCol+` IS NOT NULL
		ORDER BY `+seatCol+` ASC`,
		dateArg(ref.Date), ref.Slot, ref.BusID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []int{}
	for rows.Next() {
		var seat int
		if err := rows.Scan(&seat); err != nil {
			return out, err
		}
		out = append(out, seat)
	}
	return out, rows.Err()
}

// boardedStatusSQL flips the booking to boarded once the other leg is
// absent or already boarded.
func boardedStatusSQL(t domain.TripType) string {
	other := t.Other()
	return `status=IF(` + legColumn(other, "slot") + `='' OR ` + legColumn(other, "boarded") + `=1, '` +
		string(domain.BookingBoarded) + `', status)`
}

// ClaimSeat assigns seat to the leg and marks it boarded in one statement.
// The per-trip seat unique key rejects a seat another scan claimed first
// (ErrSeatTaken); a leg that already holds a seat is left untouched
// (ErrLegAlreadySeated).
func (r BookingRepo) ClaimSeat(ctx context.Context, bookingID int64, t domain.TripType, seat int) error {
	db := r.db()
	if db == nil {
		return fmt.Errorf("db not available")
	}
	seatCol := legColumn(t, "seat_no")
	res, err := db.ExecContext(ctx, `
		UPDATE daily_bookings
		SET `+seatCol+`=?, `+legColumn(t, "boarded")+`=1, `+boardedStatusSQL(t)+`
		WHERE id=? AND `+seatCol+` IS NULL AND status IN (`+activeStatusSQL()+`)`,
		seat, bookingID)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return ErrSeatTaken
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLegAlreadySeated
	}
	return nil
}

// MarkBoarded sets the boarded flag on a leg that already holds a seat.
func (r BookingRepo) MarkBoarded(ctx context.Context, bookingID int64, t domain.TripType) error {
	db := r.db()
	if db == nil {
		return fmt.Errorf("db not available")
	}
	_, err := db.ExecContext(ctx, `
		UPDATE daily_bookings
		SET `+legColumn(t, "boarded")+`=1, `+boardedStatusSQL(t)+`
		WHERE id=? AND `+legColumn(t, "boarded")+`=0 AND status IN (`+activeStatusSQL()+`)`,
		bookingID)
	return err
}
