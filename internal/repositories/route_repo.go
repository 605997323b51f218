package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	intconfig "shuttle/internal/config"
	intdb "shuttle/internal/db"
	"shuttle/internal/domain"
	"shuttle/internal/domain/models"
)

type RouteRepo struct {
	DB *sql.DB
}

func (r RouteRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const routeColumns = `id, route_no, start_point, end_point, distance_km, pass_amount_15, pass_amount_30, active, created_at`

// Create inserts the route with its stops and slot templates in one tx.
func (r RouteRepo) Create(ctx context.Context, rt models.Route) (int64, error) {
	var id int64
	err := intdb.WithTx(ctx, r.db(), func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO routes (route_no, start_point, end_point, distance_km, pass_amount_15, pass_amount_30, active)
			VALUES (?,?,?,?,?,?,?)`,
			strings.TrimSpace(rt.RouteNo), rt.StartPoint, rt.EndPoint, rt.DistanceKm, rt.PassAmount15, rt.PassAmount30, rt.Active)
		if err != nil {
			if intdb.IsDuplicateKey(err) {
				return ErrDuplicate
			}
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		for i, stop := range rt.Stops {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO route_stops (route_id, position, name) VALUES (?,?,?)`, id, i+1, stop); err != nil {
				return err
			}
		}
		for _, tpl := range rt.Templates {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO route_trip_templates (route_id, slot, trip_type, seats, status)
				VALUES (?,?,?,?,?)`, id, tpl.Slot, string(tpl.TripType), tpl.Seats, tpl.Status); err != nil {
				if intdb.IsDuplicateKey(err) {
					return ErrDuplicate
				}
				return err
			}
		}
		return nil
	})
	return id, err
}

func (r RouteRepo) GetByID(ctx context.Context, id int64) (models.Route, error) {
	return r.getOne(ctx, `WHERE id=?`, id)
}

func (r RouteRepo) GetByRouteNo(ctx context.Context, routeNo string) (models.Route, error) {
	return r.getOne(ctx, `WHERE route_no=?`, strings.TrimSpace(routeNo))
}

func (r RouteRepo) getOne(ctx context.Context, where string, arg any) (models.Route, error) {
	db := r.db()
	if db == nil {
		return models.Route{}, fmt.Errorf("db not available")
	}
	rt, err := scanRoute(db.QueryRowContext(ctx, `SELECT `+routeColumns+` FROM routes `+where+` LIMIT 1`, arg))
	if err != nil {
		return rt, err
	}
	if err := r.loadDetails(ctx, db, &rt); err != nil {
		return rt, err
	}
	return rt, nil
}

// List returns routes with stops and templates; onlyActive filters inactive ones.
func (r RouteRepo) List(ctx context.Context, onlyActive bool) ([]models.Route, error) {
	db := r.db()
	if db == nil {
		return nil, fmt.Errorf("db not available")
	}
	query := `SELECT ` + routeColumns + ` FROM routes`
	if onlyActive {
		query += ` WHERE active=1`
	}
	query += ` ORDER BY route_no ASC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	out := []models.Route{}
	for rows.Next() {
		rt, err := scanRoute(rows)
		if err != nil {
			rows.Close()
			return out, err
		}
		out = append(out, rt)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return out, err
	}
	for i := range out {
		if err := r.loadDetails(ctx, db, &out[i]); err != nil {
			return out, err
		}
	}
	return out, nil
}

func (r RouteRepo) SetActive(ctx context.Context, id int64, active bool) error {
	db := r.db()
	if db == nil {
		return fmt.Errorf("db not available")
	}
	res, err := db.ExecContext(ctx, `UPDATE routes SET active=? WHERE id=?`, active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanRoute(s rowScanner) (models.Route, error) {
	var rt models.Route
	err := s.Scan(&rt.ID, &rt.RouteNo, &rt.StartPoint, &rt.EndPoint, &rt.DistanceKm,
		&rt.PassAmount15, &rt.PassAmount30, &rt.Active, &rt.CreatedAt)
	return rt, err
}

func (r RouteRepo) loadDetails(ctx context.Context, q intdb.Querier, rt *models.Route) error {
	rows, err := q.QueryContext(ctx, `SELECT name FROM route_stops WHERE route_id=? ORDER BY position ASC`, rt.ID)
	if err != nil {
		return err
	}
	rt.Stops = []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		rt.Stops = append(rt.Stops, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = q.QueryContext(ctx, `
		SELECT slot, trip_type, seats, status FROM route_trip_templates
		WHERE route_id=? ORDER BY slot ASC, trip_type ASC`, rt.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	rt.Templates = []models.TripTemplate{}
	for rows.Next() {
		var tpl models.TripTemplate
		var tripType string
		if err := rows.Scan(&tpl.Slot, &tripType, &tpl.Seats, &tpl.Status); err != nil {
			return err
		}
		tpl.TripType = domain.TripType(tripType)
		rt.Templates = append(rt.Templates, tpl)
	}
	return rows.Err()
}
