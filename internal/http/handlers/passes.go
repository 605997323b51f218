package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"shuttle/internal/domain"
	"shuttle/internal/http/middleware"
	"shuttle/internal/repositories"
	"shuttle/internal/services"

	"github.com/gin-gonic/gin"
)

func passService(c *gin.Context) services.PassService {
	return services.PassService{
		Passes:    repositories.PassRepo{},
		Routes:    repositories.RouteRepo{},
		Counters:  repositories.CounterRepo{},
		Location:  location(),
		RequestID: middleware.GetRequestID(c),
	}
}

// POST /api/passes
func CreatePass(c *gin.Context) {
	var in services.CreatePassInput
	if !BindJSONOrError(c, &in) {
		return
	}
	riderID, ok := riderScope(c, in.RiderID)
	if !ok {
		return
	}
	in.RiderID = riderID
	pass, err := passService(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "pass created", "pass": pass})
}

// GET /api/passes/active/:userId
func GetActivePass(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	if userID, ok = riderScope(c, userID); !ok {
		return
	}
	pass, err := passService(c).Active(c.Request.Context(), userID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, pass)
}

// GET /api/passes/:id/ticket.pdf
func GetPassTicketPDF(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	pass, err := repositories.PassRepo{}.GetByID(c.Request.Context(), id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		RespondDomainError(c, domain.NotFoundError{Resource: "pass", Reason: domain.ReasonPassNotFound})
		return
	case err != nil:
		RespondDomainError(c, domain.Wrap("failed to load pass", err))
		return
	}
	if _, ok := riderScope(c, pass.RiderID); !ok {
		return
	}

	svc := services.DocsService{
		Passes:    repositories.PassRepo{},
		Routes:    repositories.RouteRepo{},
		RequestID: middleware.GetRequestID(c),
	}
	pdfBytes, filename, err := svc.GeneratePassTicket(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendPDF(c, filename, pdfBytes)
}

func sendPDF(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
