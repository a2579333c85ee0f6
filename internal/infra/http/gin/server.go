package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"seabreeze/internal/infra/config"
	"seabreeze/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Update(c *gin.Context)
	Confirm(c *gin.Context)
	Cancel(c *gin.Context)
	CheckIn(c *gin.Context)
	CheckOut(c *gin.Context)
	RecordPayment(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
}

type AvailabilityHTTP interface {
	Check(c *gin.Context)
	MonthOverview(c *gin.Context)
	DayView(c *gin.Context)
}

type RebookingHTTP interface {
	Create(c *gin.Context)
	Update(c *gin.Context)
	Approve(c *gin.Context)
	Reject(c *gin.Context)
	Cancel(c *gin.Context)
	Complete(c *gin.Context)
	Get(c *gin.Context)
}

type Handlers struct {
	Booking      BookingHTTP
	Availability AvailabilityHTTP
	Rebooking    RebookingHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings", h.Booking.List)
		api.GET("/bookings/:id", h.Booking.Get)
		api.PUT("/bookings/:id", h.Booking.Update)
		api.POST("/bookings/:id/confirm", h.Booking.Confirm)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
		api.POST("/bookings/:id/check-in", h.Booking.CheckIn)
		api.POST("/bookings/:id/check-out", h.Booking.CheckOut)
		api.POST("/bookings/:id/payments", h.Booking.RecordPayment)
	}
	if h.Availability != nil {
		api.GET("/units/:id/availability", h.Availability.Check)
		api.GET("/calendar", h.Availability.MonthOverview)
		api.GET("/calendar/day", h.Availability.DayView)
	}
	if h.Rebooking != nil {
		api.POST("/rebookings", h.Rebooking.Create)
		api.GET("/rebookings/:id", h.Rebooking.Get)
		api.PUT("/rebookings/:id", h.Rebooking.Update)
		api.POST("/rebookings/:id/approve", h.Rebooking.Approve)
		api.POST("/rebookings/:id/reject", h.Rebooking.Reject)
		api.POST("/rebookings/:id/cancel", h.Rebooking.Cancel)
		api.POST("/rebookings/:id/complete", h.Rebooking.Complete)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
