package handlers

import (
	"sync"
	"time"

	intconfig "shuttle/internal/config"
	"shuttle/internal/http/middleware"
	"shuttle/internal/repositories"
	"shuttle/internal/services"

	"github.com/gin-gonic/gin"
)

// Runtime carries the process-wide collaborators handlers build their
// services from. Repositories fall back to the shared DB connection.
type Runtime struct {
	Env   intconfig.Env
	Cache services.AvailabilityCache
}

var (
	runtimeMu sync.RWMutex
	shared    Runtime
)

func Configure(r Runtime) {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	shared = r
}

func current() Runtime {
	runtimeMu.RLock()
	defer runtimeMu.RUnlock()
	return shared
}

func location() *time.Location {
	if loc := current().Env.Location; loc != nil {
		return loc
	}
	return time.Local
}

func reservationService(c *gin.Context) services.ReservationService {
	return services.ReservationService{
		Bookings:  repositories.BookingRepo{},
		Schedules: repositories.ScheduleRepo{},
		Routes:    repositories.RouteRepo{},
		Buses:     repositories.BusRepo{},
		Passes:    repositories.PassRepo{},
		Cache:     current().Cache,
		Location:  location(),
		RequestID: middleware.GetRequestID(c),
	}
}

func boardingService(c *gin.Context) services.BoardingService {
	return services.BoardingService{
		Bookings:      repositories.BookingRepo{},
		Buses:         repositories.BusRepo{},
		Schedules:     repositories.ScheduleRepo{},
		Routes:        repositories.RouteRepo{},
		Cache:         current().Cache,
		ClaimAttempts: current().Env.SeatClaimAttempts,
		RequestID:     middleware.GetRequestID(c),
	}
}

func scheduleService(c *gin.Context) services.ScheduleService {
	return services.ScheduleService{
		Schedules: repositories.ScheduleRepo{},
		Routes:    repositories.RouteRepo{},
		Buses:     repositories.BusRepo{},
		Bookings:  repositories.BookingRepo{},
		History:   repositories.RideHistoryRepo{},
		Cache:     current().Cache,
		Location:  location(),
		RequestID: middleware.GetRequestID(c),
	}
}

func availabilityService(c *gin.Context) services.AvailabilityService {
	return services.AvailabilityService{
		Schedules: repositories.ScheduleRepo{},
		Routes:    repositories.RouteRepo{},
		Bookings:  repositories.BookingRepo{},
		Passes:    repositories.PassRepo{},
		Cache:     current().Cache,
		Location:  location(),
		RequestID: middleware.GetRequestID(c),
	}
}

func authService(c *gin.Context) services.AuthService {
	return NewAuthService(current().Env, middleware.GetRequestID(c))
}

// NewAuthService is shared with the router so token checks and token
// issuing use the same secret.
func NewAuthService(env intconfig.Env, requestID string) services.AuthService {
	return services.AuthService{
		Buses:     repositories.BusRepo{},
		Secret:    []byte(env.JWTSecret),
		RequestID: requestID,
	}
}
