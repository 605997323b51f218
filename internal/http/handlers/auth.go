package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type driverLoginRequest struct {
	RegNumber string `json:"regNumber"`
	Password  string `json:"password"`
}

// POST /api/driver/login
func DriverLogin(c *gin.Context) {
	var req driverLoginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	login, err := authService(c).LoginDriver(c.Request.Context(), req.RegNumber, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "login successful",
		"token":   login.Token,
		"bus":     login.Bus,
	})
}
