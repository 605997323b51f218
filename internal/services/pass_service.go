package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/domain/models"
	"shuttle/internal/repositories"
	"shuttle/internal/utils"
)

const overallPassCounter = "pass:overall"

// PassService issues route passes with sequential ticket ids.
type PassService struct {
	Passes    PassStore
	Routes    RouteStore
	Counters  CounterStore
	Location  *time.Location
	Now       func() time.Time
	RequestID string
}

type CreatePassInput struct {
	RiderID        int64  `json:"userId"`
	RouteID        int64  `json:"routeId"`
	RouteNo        string `json:"routeNo"`
	PickupLocation string `json:"pickupLocation"`
	DropLocation   string `json:"dropLocation"`
	PickupSlot     string `json:"pickupSlot"`
	DropSlot       string `json:"dropSlot"`
	StartDate      string `json:"startDate"`
	DurationDays   int    `json:"durationDays"`
}

// Create issues a pass for 15 or 30 days priced from the route. Earlier
// Active passes of the rider are expired in the same write.
func (s PassService) Create(ctx context.Context, in CreatePassInput) (models.Pass, error) {
	if in.RiderID <= 0 {
		return models.Pass{}, domain.ValidationError{Field: "userId", Msg: "is required"}
	}
	if in.DurationDays == 0 {
		in.DurationDays = 30
	}
	if in.DurationDays != 15 && in.DurationDays != 30 {
		return models.Pass{}, domain.ValidationError{Field: "durationDays", Msg: "must be 15 or 30"}
	}
	loc := locOr(s.Location)
	start := utils.StartOfDay(nowOr(s.Now), loc)
	if strings.TrimSpace(in.StartDate) != "" {
		d, err := parseTravelDate(in.StartDate, loc)
		if err != nil {
			return models.Pass{}, err
		}
		start = d
	}

	route, err := routeLookup(ctx, s.Routes, in.RouteID, in.RouteNo, 0)
	if err != nil {
		return models.Pass{}, err
	}
	pickup := utils.FirstNonEmpty(in.PickupLocation, route.StartPoint)
	drop := utils.FirstNonEmpty(in.DropLocation, route.EndPoint)
	for _, loc := range []struct{ field, value string }{{"pickupLocation", pickup}, {"dropLocation", drop}} {
		if !route.HasStop(loc.value) {
			return models.Pass{}, domain.ValidationError{
				Field:  loc.field,
				Msg:    fmt.Sprintf("%q is not a stop on route %s", loc.value, route.RouteNo),
				Reason: domain.ReasonInvalidLocation,
			}
		}
	}

	price := route.PassAmount30
	if in.DurationDays == 15 {
		price = route.PassAmount15
	}

	routeSerial, err := s.Counters.Next(ctx, "pass:route:"+route.RouteNo)
	if err != nil {
		return models.Pass{}, domain.Wrap("failed to allocate route serial", err)
	}
	overallSerial, err := s.Counters.Next(ctx, overallPassCounter)
	if err != nil {
		return models.Pass{}, domain.Wrap("failed to allocate serial", err)
	}

	pass := models.Pass{
		RiderID:        in.RiderID,
		PickupLocation: pickup,
		DropLocation:   drop,
		PickupSlot:     strings.TrimSpace(in.PickupSlot),
		DropSlot:       strings.TrimSpace(in.DropSlot),
		StartDate:      start,
		EndDate:        start.AddDate(0, 0, in.DurationDays),
		DurationDays:   in.DurationDays,
		Price:          price,
		Status:         models.PassActive,
		RouteID:        route.ID,
		RouteNo:        route.RouteNo,
		RouteSerial:    routeSerial,
		OverallSerial:  overallSerial,
		TicketID:       utils.FormatTicketID(route.RouteNo, routeSerial, overallSerial),
	}
	id, err := s.Passes.Create(ctx, pass)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.Pass{}, domain.ConflictError{Resource: "pass", Msg: "ticket id already issued, retry", Reason: domain.ReasonAlreadyExists, Err: err}
		}
		return models.Pass{}, domain.Wrap("failed to save pass", err)
	}
	pass.ID = id
	pass.CreatedAt = nowOr(s.Now)
	utils.LogEvent(s.RequestID, "pass", "create", fmt.Sprintf("pass_id=%d rider_id=%d ticket=%s", id, in.RiderID, pass.TicketID))
	return pass, nil
}

func (s PassService) Active(ctx context.Context, riderID int64) (models.Pass, error) {
	if riderID <= 0 {
		return models.Pass{}, domain.ValidationError{Field: "userId", Msg: "is required"}
	}
	p, err := s.Passes.ActiveForRider(ctx, riderID, utils.StartOfDay(nowOr(s.Now), locOr(s.Location)))
	if err != nil {
		if isNoRows(err) {
			return p, domain.NotFoundError{Resource: "active pass", Reason: domain.ReasonPassNotFound}
		}
		return p, domain.Wrap("failed to load pass", err)
	}
	return p, nil
}
