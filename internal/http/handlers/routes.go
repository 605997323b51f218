package handlers

import (
	"net/http"

	"shuttle/internal/http/middleware"
	"shuttle/internal/repositories"
	"shuttle/internal/services"

	"github.com/gin-gonic/gin"
)

func routeService(c *gin.Context) services.RouteService {
	return services.RouteService{Routes: repositories.RouteRepo{}, RequestID: middleware.GetRequestID(c)}
}

// POST /api/routes
func CreateRoute(c *gin.Context) {
	var in services.CreateRouteInput
	if !BindJSONOrError(c, &in) {
		return
	}
	rt, err := routeService(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "route created", "route": rt})
}

// GET /api/routes?active=true
func ListRoutes(c *gin.Context) {
	list, err := routeService(c).List(c.Request.Context(), queryBool(c, "active"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/routes/search?from=&to=
func SearchRoutes(c *gin.Context) {
	list, err := routeService(c).Search(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/routes/:routeNo
func GetRoute(c *gin.Context) {
	rt, err := routeService(c).GetByRouteNo(c.Request.Context(), c.Param("routeNo"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, rt)
}

type routeActiveRequest struct {
	Active *bool `json:"active"`
}

// PATCH /api/routes/:routeNo/active
func SetRouteActive(c *gin.Context) {
	var req routeActiveRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.Active == nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid_input", "active is required", nil)
		return
	}
	svc := routeService(c)
	rt, err := svc.GetByRouteNo(c.Request.Context(), c.Param("routeNo"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if err := svc.SetActive(c.Request.Context(), rt.ID, *req.Active); err != nil {
		RespondDomainError(c, err)
		return
	}
	rt.Active = *req.Active
	c.JSON(http.StatusOK, rt)
}
