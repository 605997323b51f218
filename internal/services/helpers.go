package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/domain/models"
	"shuttle/internal/utils"
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func nowOr(now func() time.Time) time.Time {
	if now != nil {
		return now()
	}
	return time.Now()
}

func locOr(loc *time.Location) *time.Location {
	if loc != nil {
		return loc
	}
	return time.Local
}

func parseTravelDate(raw string, loc *time.Location) (time.Time, error) {
	d, err := utils.ParseDate(raw, loc)
	if err != nil {
		return time.Time{}, domain.ValidationError{Field: "date", Msg: err.Error(), Err: err}
	}
	return d, nil
}

// routeLookup resolves a route by id, then by number, then by fallback id.
// The first reference that resolves wins.
func routeLookup(ctx context.Context, routes RouteStore, id int64, routeNo string, fallbackID int64) (models.Route, error) {
	try := func(get func() (models.Route, error)) (models.Route, bool, error) {
		r, err := get()
		if err == nil {
			return r, true, nil
		}
		if isNoRows(err) {
			return r, false, nil
		}
		return r, false, domain.Wrap("failed to load route", err)
	}

	if id > 0 {
		if r, ok, err := try(func() (models.Route, error) { return routes.GetByID(ctx, id) }); err != nil || ok {
			return r, err
		}
	}
	if no := strings.TrimSpace(routeNo); no != "" {
		if r, ok, err := try(func() (models.Route, error) { return routes.GetByRouteNo(ctx, no) }); err != nil || ok {
			return r, err
		}
	}
	if fallbackID > 0 && fallbackID != id {
		if r, ok, err := try(func() (models.Route, error) { return routes.GetByID(ctx, fallbackID) }); err != nil || ok {
			return r, err
		}
	}
	return models.Route{}, domain.NotFoundError{Resource: "route", Reason: domain.ReasonRouteNotFound}
}
