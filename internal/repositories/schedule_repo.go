package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	intconfig "shuttle/internal/config"
	intdb "shuttle/internal/db"
	"shuttle/internal/domain"
	"shuttle/internal/domain/models"
)

type ScheduleRepo struct {
	DB *sql.DB
}

func (r ScheduleRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// Upsert keys on (route, date, slot, trip type) and runs in one
// transaction with the schedule row locked FOR UPDATE, the same lock Reserve
// takes. Reassigning resets status to Scheduled and copies the new capacity.
// Bookings on the schedule that hold no seat yet move to the new bus; once a
// seat has been claimed on another bus the reassignment is refused with
// ErrSeatsAssigned. Capacity below the active booking count yields
// ErrCapacityBelowBooked.
func (r ScheduleRepo) Upsert(ctx context.Context, s models.Schedule) (int64, error) {
	db := r.db()
	if db == nil {
		return 0, fmt.Errorf("db not available")
	}
	slot := strings.TrimSpace(s.Slot)
	var id int64
	err := intdb.WithTx(ctx, db, func(tx *sql.Tx) error {
		var status string
		err := tx.QueryRowContext(ctx, `
			SELECT id, status FROM bus_schedules
			WHERE route_id=? AND travel_date=? AND slot=? AND trip_type=?
			FOR UPDATE`, s.RouteID, dateArg(s.Date), slot, string(s.TripType)).Scan(&id, &status)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			id = 0
		case err != nil:
			return err
		default:
			if st, _ := domain.ParseScheduleStatus(status); !st.Bookable() {
				return ErrScheduleClosed
			}
			if err := rebindBookings(ctx, tx, id, s, slot); err != nil {
				return err
			}
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO bus_schedules (travel_date, route_id, slot, trip_type, bus_id, society_id, total_seats, booked, status)
			VALUES (?,?,?,?,?,?,?,0,?)
			ON DUPLICATE KEY UPDATE
				id=LAST_INSERT_ID(id),
				bus_id=VALUES(bus_id),
				society_id=VALUES(society_id),
				total_seats=VALUES(total_seats),
				status=VALUES(status)`,
			dateArg(s.Date), s.RouteID, slot, string(s.TripType), s.BusID,
			intdb.NullInt64(s.SocietyID), s.TotalSeats, string(s.Status),
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// rebindBookings checks capacity against the active count and moves
// unseated legs of schedule id onto s.BusID.
func rebindBookings(ctx context.Context, tx *sql.Tx, id int64, s models.Schedule, slot string) error {
	n, err := countActive(ctx, tx, s.RouteID, s.Date, s.TripType, slot)
	if err != nil {
		return err
	}
	if n > s.TotalSeats {
		return ErrCapacityBelowBooked
	}

	var seated int
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM daily_bookings
		WHERE `+legColumn(s.TripType, "schedule_id")+`=? AND `+legColumn(s.TripType, "seat_no")+` IS NOT NULL
		  AND `+legColumn(s.TripType, "bus_id")+`<>? AND status IN (`+activeStatusSQL()+`)`,
		id, s.BusID).Scan(&seated); err != nil {
		return err
	}
	if seated > 0 {
		return ErrSeatsAssigned
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE daily_bookings SET `+legColumn(s.TripType, "bus_id")+`=?
		WHERE `+legColumn(s.TripType, "schedule_id")+`=? AND `+legColumn(s.TripType, "seat_no")+` IS NULL
		  AND status IN (`+activeStatusSQL()+`)`,
		s.BusID, id)
	return err
}

func (r ScheduleRepo) GetByID(ctx context.Context, id int64) (models.Schedule, error) {
	db := r.db()
	if db == nil {
		return models.Schedule{}, fmt.Errorf("db not available")
	}
	return scanSchedule(db.QueryRowContext(ctx, `SELECT `+scheduleColumns+` FROM bus_schedules WHERE id=? LIMIT 1`, id))
}

// Find returns the schedule for the tuple regardless of status.
func (r ScheduleRepo) Find(ctx context.Context, routeID int64, date time.Time, slot string, tripType domain.TripType) (models.Schedule, error) {
	db := r.db()
	if db == nil {
		return models.Schedule{}, fmt.Errorf("db not available")
	}
	return scanSchedule(db.QueryRowContext(ctx, `
		SELECT `+scheduleColumns+` FROM bus_schedules
		WHERE route_id=? AND travel_date=? AND slot=? AND trip_type=?
		LIMIT 1`, routeID, dateArg(date), strings.TrimSpace(slot), string(tripType)))
}

// List filters by date and, when routeID > 0, by route.
func (r ScheduleRepo) List(ctx context.Context, date time.Time, routeID int64) ([]models.Schedule, error) {
	db := r.db()
	if db == nil {
		return nil, fmt.Errorf("db not available")
	}
	query := `SELECT ` + scheduleColumns + ` FROM bus_schedules WHERE travel_date=?`
	args := []any{dateArg(date)}
	if routeID > 0 {
		query += ` AND route_id=?`
		args = append(args, routeID)
	}
	query += ` ORDER BY slot ASC, trip_type ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Schedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateStatus moves the schedule from one status to another. Start and
// end times are only written when non-nil. A concurrent move away from
// `from` yields ErrStale.
func (r ScheduleRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.ScheduleStatus, start, end *time.Time) error {
	db := r.db()
	if db == nil {
		return fmt.Errorf("db not available")
	}
	sets := []string{"status=?"}
	args := []any{string(to)}
	if start != nil {
		sets = append(sets, "start_time=?")
		args = append(args, *start)
	}
	if end != nil {
		sets = append(sets, "end_time=?")
		args = append(args, *end)
	}
	args = append(args, id, string(from))
	res, err := db.ExecContext(ctx, `UPDATE bus_schedules SET `+strings.Join(sets, ", ")+` WHERE id=? AND status=?`, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 && from != to {
		return ErrStale
	}
	return nil
}
