package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type boardingRequest struct {
	UserID    int64  `json:"userId"`
	BookingID int64  `json:"bookingId"`
	QRToken   string `json:"qrToken"`
}

// POST /api/boarding/confirm
func ConfirmBoarding(c *gin.Context) {
	var req boardingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	riderID, ok := riderScope(c, req.UserID)
	if !ok {
		return
	}
	res, err := boardingService(c).ConfirmBoarding(c.Request.Context(), riderID, req.BookingID, req.QRToken)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/boarding/status/:bookingId
func GetBoardingStatus(c *gin.Context) {
	id, ok := paramID(c, "bookingId")
	if !ok {
		return
	}
	view, err := boardingService(c).BoardingStatus(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if _, ok := riderScope(c, view.RiderID); !ok {
		return
	}
	c.JSON(http.StatusOK, view)
}
