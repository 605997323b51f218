package models

import (
	"strings"
	"time"

	"shuttle/internal/domain"
)

// TripTemplate is a nominal per-slot trip on a route; per-date schedules
// supersede it.
type TripTemplate struct {
	Slot     string          `json:"slot"`
	TripType domain.TripType `json:"tripType"`
	Seats    int             `json:"seats"`
	Status   string          `json:"status"`
}

type Route struct {
	ID           int64          `json:"id"`
	RouteNo      string         `json:"routeNo"`
	StartPoint   string         `json:"startPoint"`
	EndPoint     string         `json:"endPoint"`
	DistanceKm   float64        `json:"distanceKm"`
	PassAmount15 int64          `json:"passAmount15"`
	PassAmount30 int64          `json:"passAmount30"`
	Stops        []string       `json:"stops"`
	Templates    []TripTemplate `json:"tripSchedules"`
	Active       bool           `json:"active"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// StopSequence returns start, via stops and end in travel order.
func (r Route) StopSequence() []string {
	out := make([]string, 0, len(r.Stops)+2)
	out = append(out, r.StartPoint)
	out = append(out, r.Stops...)
	return append(out, r.EndPoint)
}

// IndexOf finds a stop ignoring case and surrounding space; -1 when absent.
func (r Route) IndexOf(location string) int {
	needle := strings.ToLower(strings.TrimSpace(location))
	if needle == "" {
		return -1
	}
	for i, s := range r.StopSequence() {
		if strings.ToLower(strings.TrimSpace(s)) == needle {
			return i
		}
	}
	return -1
}

func (r Route) HasStop(location string) bool { return r.IndexOf(location) >= 0 }
