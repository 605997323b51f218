package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shuttle/internal/domain"
	"shuttle/internal/domain/models"
	"shuttle/internal/repositories"
	"shuttle/internal/utils"
)

type RouteService struct {
	Routes    RouteStore
	RequestID string
}

type CreateRouteInput struct {
	RouteNo       string                `json:"routeNo"`
	StartPoint    string                `json:"startPoint"`
	EndPoint      string                `json:"endPoint"`
	DistanceKm    float64               `json:"distanceKm"`
	PassAmount15  int64                 `json:"passAmount15"`
	PassAmount30  int64                 `json:"passAmount30"`
	Stops         []string              `json:"stops"`
	TripSchedules []models.TripTemplate `json:"tripSchedules"`
}

func (s RouteService) Create(ctx context.Context, in CreateRouteInput) (models.Route, error) {
	rt := models.Route{
		RouteNo:      strings.TrimSpace(in.RouteNo),
		StartPoint:   utils.NormalizeSpace(in.StartPoint),
		EndPoint:     utils.NormalizeSpace(in.EndPoint),
		DistanceKm:   in.DistanceKm,
		PassAmount15: in.PassAmount15,
		PassAmount30: in.PassAmount30,
		Stops:        []string{},
		Templates:    []models.TripTemplate{},
		Active:       true,
	}
	switch {
	case rt.RouteNo == "":
		return rt, domain.ValidationError{Field: "routeNo", Msg: "is required"}
	case rt.StartPoint == "" || rt.EndPoint == "":
		return rt, domain.ValidationError{Field: "startPoint", Msg: "start and end points are required"}
	case rt.PassAmount15 < 0 || rt.PassAmount30 < 0:
		return rt, domain.ValidationError{Field: "passAmount", Msg: "must not be negative"}
	}
	for _, stop := range in.Stops {
		if stop = utils.NormalizeSpace(stop); stop != "" {
			rt.Stops = append(rt.Stops, stop)
		}
	}
	for _, tpl := range in.TripSchedules {
		t, ok := domain.ParseTripType(string(tpl.TripType))
		if !ok || strings.TrimSpace(tpl.Slot) == "" {
			return rt, domain.ValidationError{Field: "tripSchedules", Msg: "each entry needs a slot and a trip type of pickup or drop"}
		}
		rt.Templates = append(rt.Templates, models.TripTemplate{
			Slot:     strings.TrimSpace(tpl.Slot),
			TripType: t,
			Seats:    tpl.Seats,
			Status:   utils.FirstNonEmpty(tpl.Status, "active"),
		})
	}

	id, err := s.Routes.Create(ctx, rt)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return rt, domain.ConflictError{Resource: "route", Msg: "route number or slot already exists", Reason: domain.ReasonAlreadyExists, Err: err}
		}
		return rt, domain.Wrap("failed to save route", err)
	}
	rt.ID = id
	utils.LogEvent(s.RequestID, "route", "create", fmt.Sprintf("route_id=%d route_no=%s", id, rt.RouteNo))
	return rt, nil
}

func (s RouteService) List(ctx context.Context, onlyActive bool) ([]models.Route, error) {
	list, err := s.Routes.List(ctx, onlyActive)
	if err != nil {
		return nil, domain.Wrap("failed to list routes", err)
	}
	return list, nil
}

func (s RouteService) GetByRouteNo(ctx context.Context, routeNo string) (models.Route, error) {
	return routeLookup(ctx, s.Routes, 0, routeNo, 0)
}

// Search returns active routes that pass through from before to.
func (s RouteService) Search(ctx context.Context, from, to string) ([]models.Route, error) {
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return nil, domain.ValidationError{Field: "from", Msg: "from and to are required"}
	}
	list, err := s.List(ctx, true)
	if err != nil {
		return nil, err
	}
	out := []models.Route{}
	for _, rt := range list {
		i, j := rt.IndexOf(from), rt.IndexOf(to)
		if i >= 0 && j > i {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (s RouteService) SetActive(ctx context.Context, id int64, active bool) error {
	if err := s.Routes.SetActive(ctx, id, active); err != nil {
		if isNoRows(err) {
			return domain.NotFoundError{Resource: "route", Reason: domain.ReasonRouteNotFound}
		}
		return domain.Wrap("failed to update route", err)
	}
	utils.LogEvent(s.RequestID, "route", "set_active", fmt.Sprintf("route_id=%d active=%v", id, active))
	return nil
}
