package handlers

import (
	"net/http"
	"strconv"

	"shuttle/internal/services"

	"github.com/gin-gonic/gin"
)

// POST /api/schedules
func UpsertSchedule(c *gin.Context) {
	var in services.UpsertScheduleInput
	if !BindJSONOrError(c, &in) {
		return
	}
	sched, err := scheduleService(c).Upsert(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "schedule saved", "schedule": sched})
}

// GET /api/schedules?date=&routeId=
func ListSchedules(c *gin.Context) {
	var routeID int64
	if raw := c.Query("routeId"); raw != "" {
		routeID, _ = strconv.ParseInt(raw, 10, 64)
	}
	list, err := scheduleService(c).List(c.Request.Context(), c.Query("date"), routeID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// PATCH /api/schedules/:id/activate
func ActivateSchedule(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sched, err := scheduleService(c).Activate(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, sched)
}

// PUT /api/schedules/:id/start
func StartTrip(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sched, err := scheduleService(c).StartTrip(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, sched)
}

// EndTrip serves PUT /api/schedules/:id/end and the legacy closure paths,
// which carry the id as :scheduleId.
func EndTrip(c *gin.Context) {
	param := "id"
	if c.Param("scheduleId") != "" {
		param = "scheduleId"
	}
	id, ok := paramID(c, param)
	if !ok {
		return
	}
	res, err := scheduleService(c).EndTrip(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "trip completed", "result": res})
}

// GET /api/ride-history/user/:userId
func GetRideHistory(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	if userID, ok = riderScope(c, userID); !ok {
		return
	}
	list, err := scheduleService(c).RideHistory(c.Request.Context(), userID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
