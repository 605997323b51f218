package api

import (
	"log"
	stdhttp "net/http"

	intconfig "shuttle/internal/config"
	"shuttle/internal/domain"
	h "shuttle/internal/http/handlers"
	"shuttle/internal/http/middleware"
	"shuttle/internal/services"

	"github.com/gin-gonic/gin"
)

// NewRouter mounts every endpoint. cache may be nil when Redis is not
// configured.
func NewRouter(env intconfig.Env, cache services.AvailabilityCache) *gin.Engine {
	h.Configure(h.Runtime{Env: env, Cache: cache})

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	auth := middleware.Auth(h.NewAuthService(env, "").ParseToken)
	staff := middleware.RequireRoles(domain.RoleAdmin)
	crew := middleware.RequireRoles(domain.RoleAdmin, domain.RoleDriver)
	riders := middleware.RequireRoles(domain.RoleAdmin, domain.RoleRider)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/endpoints", h.Endpoints)

		api.POST("/driver/login", h.DriverLogin)

		// Reference data
		buses := api.Group("/buses", auth, staff)
		buses.POST("", h.OnboardBus)
		buses.GET("", h.ListBuses)
		buses.GET("/:id", h.GetBus)

		routes := api.Group("/routes")
		routes.GET("", h.ListRoutes)
		routes.GET("/search", h.SearchRoutes)
		routes.GET("/:routeNo", h.GetRoute)
		routes.POST("", auth, staff, h.CreateRoute)
		routes.PATCH("/:routeNo/active", auth, staff, h.SetRouteActive)

		passes := api.Group("/passes", auth, riders)
		passes.POST("", h.CreatePass)
		passes.GET("/active/:userId", h.GetActivePass)
		passes.GET("/:id/ticket.pdf", h.GetPassTicketPDF)

		// Schedules and trip lifecycle
		schedules := api.Group("/schedules", auth)
		schedules.POST("", staff, h.UpsertSchedule)
		schedules.GET("", crew, h.ListSchedules)
		schedules.PATCH("/:id/activate", staff, h.ActivateSchedule)
		schedules.PUT("/:id/start", crew, h.StartTrip)
		schedules.PUT("/:id/end", crew, h.EndTrip)
		schedules.POST("/end-trip/:scheduleId", crew, h.EndTrip)

		// Reservation engine
		api.GET("/daily-bookings/availability", h.GetAvailability)
		bookings := api.Group("/daily-bookings", auth, riders)
		bookings.POST("", h.CreateDailyBooking)
		bookings.GET("/active/:userId", h.GetActiveDailyBooking)
		bookings.GET("/:id", h.GetDailyBooking)
		bookings.GET("/:id/ticket.pdf", h.GetDailyBookingTicketPDF)
		bookings.POST("/:id/cancel", h.CancelDailyBooking)

		// Boarding engine
		boarding := api.Group("/boarding", auth, riders)
		boarding.POST("/confirm", h.ConfirmBoarding)
		boarding.GET("/status/:bookingId", h.GetBoardingStatus)

		// Trip closure engine
		history := api.Group("/ride-history", auth)
		history.POST("/from-schedule/:scheduleId", crew, h.EndTrip)
		history.GET("/user/:userId", riders, h.GetRideHistory)
	}

	h.SetRouter(r)
	return r
}
