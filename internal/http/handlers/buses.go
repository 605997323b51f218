package handlers

import (
	"net/http"

	"shuttle/internal/http/middleware"
	"shuttle/internal/repositories"
	"shuttle/internal/services"

	"github.com/gin-gonic/gin"
)

func busService(c *gin.Context) services.BusService {
	return services.BusService{Buses: repositories.BusRepo{}, RequestID: middleware.GetRequestID(c)}
}

// POST /api/buses
func OnboardBus(c *gin.Context) {
	var in services.OnboardBusInput
	if !BindJSONOrError(c, &in) {
		return
	}
	bus, err := busService(c).Onboard(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "bus onboarded", "bus": bus})
}

// GET /api/buses
func ListBuses(c *gin.Context) {
	list, err := busService(c).List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/buses/:id
func GetBus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	bus, err := busService(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, bus)
}
