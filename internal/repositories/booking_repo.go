package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	intconfig "shuttle/internal/config"
	intdb "shuttle/internal/db"
	"shuttle/internal/domain"
	"shuttle/internal/domain/models"
)

// BookingRepo owns daily_bookings. Capacity, duplicate and seat invariants
// are enforced here with row locks and unique keys.
type BookingRepo struct {
	DB *sql.DB
}

func (r BookingRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// ReserveLeg is one direction of a new booking, bound to its schedule.
type ReserveLeg struct {
	TripType   domain.TripType
	Slot       string
	ScheduleID int64
	BusID      int64
}

type NewBooking struct {
	RiderID        int64
	Date           time.Time
	RouteID        int64
	RouteNo        string
	PickupLocation string
	DropLocation   string
	Legs           []ReserveLeg
}

// SlotKey identifies one (trip type, slot) pair of a route on a date.
type SlotKey struct {
	TripType domain.TripType
	Slot     string
}

// Reserve runs capacity check, duplicate check and insert as one
// transaction. Each leg's schedule row is locked FOR UPDATE in ascending id
// order, so concurrent reservations on the same slot serialise on the lock
// and the recount below is authoritative.
func (r BookingRepo) Reserve(ctx context.Context, nb NewBooking) (models.Booking, error) {
	if len(nb.Legs) == 0 {
		return models.Booking{}, fmt.Errorf("booking has no legs")
	}
	legs := append([]ReserveLeg(nil), nb.Legs...)
	sort.Slice(legs, func(i, j int) bool { return legs[i].ScheduleID < legs[j].ScheduleID })

	booking := models.Booking{
		RiderID:        nb.RiderID,
		Date:           nb.Date,
		RouteID:        nb.RouteID,
		RouteNo:        nb.RouteNo,
		PickupLocation: nb.PickupLocation,
		DropLocation:   nb.DropLocation,
		Status:         domain.BookingReserved,
	}
	for _, leg := range nb.Legs {
		busID, scheduleID := leg.BusID, leg.ScheduleID
		booking.SetLeg(leg.TripType, models.Leg{Slot: leg.Slot, BusID: &busID, ScheduleID: &scheduleID})
	}

	err := intdb.WithTx(ctx, r.db(), func(tx *sql.Tx) error {
		// All locks are taken before the first plain read so the
		// transaction snapshot includes every booking committed under them.
		totals := map[int64]int{}
		for _, leg := range legs {
			var total int
			var status string
			if err := tx.QueryRowContext(ctx,
				`SELECT total_seats, status FROM bus_schedules WHERE id=? FOR UPDATE`, leg.ScheduleID,
			).Scan(&total, &status); err != nil {
				return err
			}
			if st, _ := domain.ParseScheduleStatus(status); !st.Bookable() {
				return ErrScheduleClosed
			}
			totals[leg.ScheduleID] = total
		}

		counts := map[int64]int{}
		for _, leg := range legs {
			n, err := countActive(ctx, tx, nb.RouteID, nb.Date, leg.TripType, leg.Slot)
			if err != nil {
				return err
			}
			if n >= totals[leg.ScheduleID] {
				return ErrCapacityReached{TripType: leg.TripType, Slot: leg.Slot}
			}
			counts[leg.ScheduleID] = n
		}

		exists, err := hasOverlappingBooking(ctx, tx, nb.RiderID, nb.Date, nb.Legs)
		if err != nil {
			return err
		}
		if exists {
			return ErrActiveBookingExists
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO daily_bookings (rider_id, travel_date, route_id, route_no, pickup_location, drop_location,
				pickup_slot, drop_slot, pickup_bus_id, drop_bus_id, pickup_schedule_id, drop_schedule_id, status)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			nb.RiderID, dateArg(nb.Date), nb.RouteID, nb.RouteNo, nb.PickupLocation, nb.DropLocation,
			booking.Pickup.Slot, booking.Drop.Slot,
			intdb.NullInt64(booking.Pickup.BusID), intdb.NullInt64(booking.Drop.BusID),
			intdb.NullInt64(booking.Pickup.ScheduleID), intdb.NullInt64(booking.Drop.ScheduleID),
			string(domain.BookingReserved),
		)
		if err != nil {
			if intdb.IsDuplicateKey(err) {
				return ErrActiveBookingExists
			}
			return err
		}
		if booking.ID, err = res.LastInsertId(); err != nil {
			return err
		}

		for _, leg := range legs {
			if _, err := tx.ExecContext(ctx,
				`UPDATE bus_schedules SET booked=? WHERE id=?`, counts[leg.ScheduleID]+1, leg.ScheduleID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Booking{}, err
	}
	now := time.Now()
	booking.CreatedAt, booking.UpdatedAt = now, now
	return booking, nil
}

func countActive(ctx context.Context, q intdb.Querier, routeID int64, date time.Time, t domain.TripType, slot string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM daily_bookings
		WHERE route_id=? AND travel_date=? AND `+legColumn(t, "slot")+`=?
		  AND status IN (`+activeStatusSQL()+`)`,
		routeID, dateArg(date), slot,
	).Scan(&n)
	return n, err
}

func hasOverlappingBooking(ctx context.Context, q intdb.Querier, riderID int64, date time.Time, legs []ReserveLeg) (bool, error) {
	conds := []string{}
	args := []any{riderID, dateArg(date)}
	for _, leg := range legs {
		conds = append(conds, legColumn(leg.TripType, "slot")+"=?")
		args = append(args, leg.Slot)
	}
	var id int64
	err := q.QueryRowContext(ctx, `
		SELECT id FROM daily_bookings
		WHERE rider_id=? AND travel_date=? AND status IN (`+activeStatusSQL()+`)
		  AND (`+strings.Join(conds, " OR ")+`)
		LIMIT 1`, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r BookingRepo) GetByID(ctx context.Context, id int64) (models.Booking, error) {
	db := r.db()
	if db == nil {
		return models.Booking{}, fmt.Errorf("db not available")
	}
	return scanBooking(db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM daily_bookings WHERE id=? LIMIT 1`, id))
}

// FindForBoarding loads the rider's booking when it is still reserved or
// boarded. Boarded rows are returned so a repeated scan can be answered
// with the seat already held.
func (r BookingRepo) FindForBoarding(ctx context.Context, riderID, bookingID int64) (models.Booking, error) {
	db := r.db()
	if db == nil {
		return models.Booking{}, fmt.Errorf("db not available")
	}
	return scanBooking(db.QueryRowContext(ctx, `
		SELECT `+bookingColumns+` FROM daily_bookings
		WHERE id=? AND rider_id=? AND status IN (`+activeStatusSQL()+`)
		LIMIT 1`, bookingID, riderID))
}

// ActiveForRider lists reserved/boarded bookings dated on or after from.
func (r BookingRepo) ActiveForRider(ctx context.Context, riderID int64, from time.Time) ([]models.Booking, error) {
	db := r.db()
	if db == nil {
		return nil, fmt.Errorf("db not available")
	}
	rows, err := db.QueryContext(ctx, `
		SELECT `+bookingColumns+` FROM daily_bookings
		WHERE rider_id=? AND travel_date>=? AND completed=0 AND status IN (`+activeStatusSQL()+`)
		ORDER BY travel_date ASC, id DESC`, riderID, dateArg(from))
	if err != nil {
		return nil, err
	}
	return scanBookings(rows)
}

// Cancel moves the booking from its current status to cancelled and
// releases the advisory counters of its schedules.
func (r BookingRepo) Cancel(ctx context.Context, b models.Booking) error {
	return intdb.WithTx(ctx, r.db(), func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE daily_bookings SET status=? WHERE id=? AND status=?`,
			string(domain.BookingCancelled), b.ID, string(b.Status))
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrStale
		}
		for _, t := range b.Legs() {
			leg := b.Leg(t)
			if leg.ScheduleID == nil {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE bus_schedules SET booked=GREATEST(booked-1, 0) WHERE id=?`, *leg.ScheduleID); err != nil {
				return err
			}
		}
		return nil
	})
}

// CountsByRouteDate derives per-slot occupancy from active bookings.
func (r BookingRepo) CountsByRouteDate(ctx context.Context, routeID int64, date time.Time) (map[SlotKey]int, error) {
	db := r.db()
	if db == nil {
		return nil, fmt.Errorf("db not available")
	}
	d := dateArg(date)
	rows, err := db.QueryContext(ctx, `
		SELECT 'pickup', pickup_slot, COUNT(*) FROM daily_bookings
		WHERE route_id=? AND travel_date=? AND pickup_slot<>'' AND status IN (`+activeStatusSQL()+`)
		GROUP BY pickup_slot
		UNION ALL
		SELECT 'drop', drop_slot, COUNT(*) FROM daily_bookings
		WHERE route_id=? AND travel_date=? AND drop_slot<>'' AND status IN (`+activeStatusSQL()+`)
		GROUP BY drop_slot`, routeID, d, routeID, d)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[SlotKey]int{}
	for rows.Next() {
		var tripType, slot string
		var n int
		if err := rows.Scan(&tripType, &slot, &n); err != nil {
			return out, err
		}
		out[SlotKey{TripType: domain.TripType(tripType), Slot: slot}] = n
	}
	return out, rows.Err()
}
