package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"flatbook/internal/infra/config"
	"flatbook/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Reschedule(c *gin.Context)
	Cancel(c *gin.Context)
	Get(c *gin.Context)
}

type ApartmentHTTP interface {
	Catalog(c *gin.Context)
	Detail(c *gin.Context)
}

type HostHTTP interface {
	ListApartments(c *gin.Context)
	CreateApartment(c *gin.Context)
	UpdateApartment(c *gin.Context)
	OpenApartment(c *gin.Context)
	CloseApartment(c *gin.Context)
	ListBookings(c *gin.Context)
}

type Handlers struct {
	Booking        BookingHTTP
	Apartment      ApartmentHTTP
	Host           HostHTTP
	Me             MeHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Idempotency-Key", "X-User-ID", "X-User-Name", "X-User-Roles"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Apartment != nil {
		api.GET("/apartments", h.Apartment.Catalog)
		api.GET("/apartments/:id", h.Apartment.Detail)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings/:id", h.Booking.Get)
		api.PUT("/bookings/:id", h.Booking.Reschedule)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
	}
	if h.Host != nil {
		hostGroup := api.Group("/host")
		hostGroup.GET("/apartments", h.Host.ListApartments)
		hostGroup.POST("/apartments", h.Host.CreateApartment)
		hostGroup.PUT("/apartments/:id", h.Host.UpdateApartment)
		hostGroup.POST("/apartments/:id/open", h.Host.OpenApartment)
		hostGroup.POST("/apartments/:id/close", h.Host.CloseApartment)
		hostGroup.GET("/bookings", h.Host.ListBookings)
	}
	if h.Me != nil {
		meGroup := api.Group("/me")
		meGroup.GET("/bookings", h.Me.ListBookings)
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
