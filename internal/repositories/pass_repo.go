package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	intconfig "shuttle/internal/config"
	intdb "shuttle/internal/db"
	"shuttle/internal/domain/models"
)

type PassRepo struct {
	DB *sql.DB
}

func (r PassRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const passColumns = `id, rider_id, pickup_location, drop_location, pickup_slot, drop_slot, start_date, end_date,
	duration_days, price, status, route_id, route_no, route_serial, overall_serial, ticket_id, created_at`

func scanPass(s rowScanner) (models.Pass, error) {
	var p models.Pass
	err := s.Scan(&p.ID, &p.RiderID, &p.PickupLocation, &p.DropLocation, &p.PickupSlot, &p.DropSlot,
		&p.StartDate, &p.EndDate, &p.DurationDays, &p.Price, &p.Status, &p.RouteID, &p.RouteNo,
		&p.RouteSerial, &p.OverallSerial, &p.TicketID, &p.CreatedAt)
	return p, err
}

// Create expires the rider's earlier Active passes and inserts the new one
// in the same transaction, keeping at most one Active pass per rider.
func (r PassRepo) Create(ctx context.Context, p models.Pass) (int64, error) {
	var id int64
	err := intdb.WithTx(ctx, r.db(), func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE passes SET status=? WHERE rider_id=? AND status=?`,
			models.PassExpired, p.RiderID, models.PassActive); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO passes (rider_id, pickup_location, drop_location, pickup_slot, drop_slot, start_date, end_date,
				duration_days, price, status, route_id, route_no, route_serial, overall_serial, ticket_id)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			p.RiderID, p.PickupLocation, p.DropLocation, p.PickupSlot, p.DropSlot, dateArg(p.StartDate), dateArg(p.EndDate),
			p.DurationDays, p.Price, p.Status, p.RouteID, p.RouteNo, p.RouteSerial, p.OverallSerial, p.TicketID)
		if err != nil {
			if intdb.IsDuplicateKey(err) {
				return ErrDuplicate
			}
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

// ActiveForRider returns the rider's newest Active pass still valid on the
// given day.
func (r PassRepo) ActiveForRider(ctx context.Context, riderID int64, on time.Time) (models.Pass, error) {
	db := r.db()
	if db == nil {
		return models.Pass{}, fmt.Errorf("db not available")
	}
	return scanPass(db.QueryRowContext(ctx, `
		SELECT `+passColumns+` FROM passes
		WHERE rider_id=? AND status=? AND end_date>=?
		ORDER BY id DESC LIMIT 1`, riderID, models.PassActive, dateArg(on)))
}

func (r PassRepo) GetByID(ctx context.Context, id int64) (models.Pass, error) {
	db := r.db()
	if db == nil {
		return models.Pass{}, fmt.Errorf("db not available")
	}
	return scanPass(db.QueryRowContext(ctx, `SELECT `+passColumns+` FROM passes WHERE id=? LIMIT 1`, id))
}
