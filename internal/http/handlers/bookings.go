package handlers

import (
	"net/http"
	"strconv"

	"shuttle/internal/http/middleware"
	"shuttle/internal/repositories"
	"shuttle/internal/services"

	"github.com/gin-gonic/gin"
)

// POST /api/daily-bookings
func CreateDailyBooking(c *gin.Context) {
	var in services.ReserveInput
	if !BindJSONOrError(c, &in) {
		return
	}
	riderID, ok := riderScope(c, in.RiderID)
	if !ok {
		return
	}
	in.RiderID = riderID
	view, err := reservationService(c).Reserve(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "booking confirmed", "booking": view})
}

// GET /api/daily-bookings/availability?routeNo=&date=&userId=&onlyActive=
func GetAvailability(c *gin.Context) {
	q := services.AvailabilityQuery{
		RouteNo:    c.Query("routeNo"),
		Date:       c.Query("date"),
		OnlyActive: queryBool(c, "onlyActive"),
	}
	if raw := c.Query("routeId"); raw != "" {
		q.RouteID, _ = strconv.ParseInt(raw, 10, 64)
	}
	if raw := c.Query("userId"); raw != "" {
		q.RiderID, _ = strconv.ParseInt(raw, 10, 64)
	}
	out, err := availabilityService(c).Availability(c.Request.Context(), q)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/daily-bookings/active/:userId
func GetActiveDailyBooking(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	if userID, ok = riderScope(c, userID); !ok {
		return
	}
	view, err := reservationService(c).ActiveBooking(c.Request.Context(), userID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GET /api/daily-bookings/:id
func GetDailyBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	view, err := reservationService(c).Ticket(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if _, ok := riderScope(c, view.RiderID); !ok {
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /api/daily-bookings/:id/cancel
func CancelDailyBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	riderID, ok := riderScope(c, 0)
	if !ok {
		return
	}
	view, err := reservationService(c).Cancel(c.Request.Context(), riderID, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking cancelled", "booking": view})
}

// GET /api/daily-bookings/:id/ticket.pdf
func GetDailyBookingTicketPDF(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	view, err := reservationService(c).Ticket(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if _, ok := riderScope(c, view.RiderID); !ok {
		return
	}
	svc := services.DocsService{
		Bookings:  repositories.BookingRepo{},
		Routes:    repositories.RouteRepo{},
		Buses:     repositories.BusRepo{},
		RequestID: middleware.GetRequestID(c),
	}
	pdfBytes, filename, err := svc.GenerateBookingTicket(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendPDF(c, filename, pdfBytes)
}
