package repositories

import (
	"context"
	"database/sql"
	"fmt"

	intconfig "shuttle/internal/config"
)

type CounterRepo struct {
	DB *sql.DB
}

func (r CounterRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// Next atomically increments the named counter and returns the new value.
// LAST_INSERT_ID(expr) ties the value to this connection, so the result
// is read from the same Exec without a second query.
func (r CounterRepo) Next(ctx context.Context, key string) (int64, error) {
	db := r.db()
	if db == nil {
		return 0, fmt.Errorf("db not available")
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO counters (counter_key, value) VALUES (?, LAST_INSERT_ID(1))
		ON DUPLICATE KEY UPDATE value=LAST_INSERT_ID(value+1)`, key)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
