package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	intconfig "shuttle/internal/config"
	intdb "shuttle/internal/db"
	"shuttle/internal/domain/models"
)

type BusRepo struct {
	DB *sql.DB
}

func (r BusRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const busColumns = `id, reg_number, operator_name, make_model, seating_capacity, seat_layout,
	driver_name, driver_contact, password_hash, qr_token, status, created_at`

func scanBus(s rowScanner) (models.Bus, error) {
	var b models.Bus
	var qr sql.NullString
	err := s.Scan(&b.ID, &b.RegNumber, &b.OperatorName, &b.MakeModel, &b.SeatingCapacity, &b.SeatLayout,
		&b.DriverName, &b.DriverContact, &b.PasswordHash, &qr, &b.Status, &b.CreatedAt)
	b.QRToken = qr.String
	return b, err
}

// Create stores a bus; reg numbers are kept upper-cased.
func (r BusRepo) Create(ctx context.Context, b models.Bus) (int64, error) {
	db := r.db()
	if db == nil {
		return 0, fmt.Errorf("db not available")
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO buses (reg_number, operator_name, make_model, seating_capacity, seat_layout,
			driver_name, driver_contact, password_hash, qr_token, status)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		strings.ToUpper(strings.TrimSpace(b.RegNumber)), b.OperatorName, b.MakeModel, b.SeatingCapacity, b.SeatLayout,
		b.DriverName, b.DriverContact, b.PasswordHash, intdb.NullIfEmpty(b.QRToken), b.Status,
	)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r BusRepo) GetByID(ctx context.Context, id int64) (models.Bus, error) {
	db := r.db()
	if db == nil {
		return models.Bus{}, fmt.Errorf("db not available")
	}
	return scanBus(db.QueryRowContext(ctx, `SELECT `+busColumns+` FROM buses WHERE id=? LIMIT 1`, id))
}

// FindByRegNumber matches case-insensitively.
func (r BusRepo) FindByRegNumber(ctx context.Context, reg string) (models.Bus, error) {
	db := r.db()
	if db == nil {
		return models.Bus{}, fmt.Errorf("db not available")
	}
	return scanBus(db.QueryRowContext(ctx,
		`SELECT `+busColumns+` FROM buses WHERE UPPER(reg_number)=? LIMIT 1`,
		strings.ToUpper(strings.TrimSpace(reg))))
}

func (r BusRepo) List(ctx context.Context) ([]models.Bus, error) {
	db := r.db()
	if db == nil {
		return nil, fmt.Errorf("db not available")
	}
	rows, err := db.QueryContext(ctx, `SELECT `+busColumns+` FROM buses ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Bus{}
	for rows.Next() {
		b, err := scanBus(rows)
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
