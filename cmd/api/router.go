package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AfroSamurai-hub/OzzServe/internal/shared"
	"github.com/AfroSamurai-hub/OzzServe/internal/shared/middleware"
	"github.com/AfroSamurai-hub/OzzServe/pkg/container"
)

// NewRouter builds the full route table.
func NewRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())

	router.GET("/health", func(ctx *gin.Context) {
		if err := c.DB.Ping(ctx.Request.Context()); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": c.Config.App.Version,
		})
	})

	v1 := router.Group("/api/v1")

	// Public surface.
	v1.GET("/services", c.CatalogHandler.List)
	v1.POST("/webhooks/:provider", c.WebhookHandler.Handle)

	auth := middleware.AuthMiddleware(c.JWT, c.Config.IsProduction())

	// Booking surface.
	bookings := v1.Group("/bookings", auth)
	{
		bookings.POST("", middleware.RequireRole(shared.RoleUser), c.BookingHandler.Create)
		bookings.GET("", middleware.RequireRole(shared.RoleUser), c.BookingHandler.ListMine)
		bookings.GET("/claimed", middleware.RequireRole(shared.RoleProvider), c.BookingHandler.ListClaimed)
		bookings.GET("/:id", c.BookingHandler.Get)

		bookings.POST("/:id/pay", middleware.RequireRole(shared.RoleUser, shared.RoleAdmin), c.BookingHandler.Pay)
		bookings.POST("/:id/accept", middleware.RequireRole(shared.RoleProvider), c.BookingHandler.Accept)
		bookings.POST("/:id/travel", middleware.RequireRole(shared.RoleProvider), c.BookingHandler.Travel)
		bookings.POST("/:id/arrived", middleware.RequireRole(shared.RoleProvider), c.BookingHandler.Arrived)
		bookings.POST("/:id/start", middleware.RequireRole(shared.RoleProvider), c.BookingHandler.Start)
		bookings.POST("/:id/complete", middleware.RequireRole(shared.RoleProvider), c.BookingHandler.Complete)
		bookings.POST("/:id/provider-complete", middleware.RequireRole(shared.RoleProvider), c.BookingHandler.ProviderComplete)
		bookings.POST("/:id/confirm-complete", middleware.RequireRole(shared.RoleUser, shared.RoleAdmin), c.BookingHandler.ConfirmComplete)
		bookings.POST("/:id/cancel", middleware.RequireRole(shared.RoleUser, shared.RoleProvider), c.BookingHandler.Cancel)
		bookings.POST("/:id/provider_cancel", middleware.RequireRole(shared.RoleProvider), c.BookingHandler.ProviderCancel)
		bookings.POST("/:id/issue", middleware.RequireRole(shared.RoleUser), c.BookingHandler.Issue)
	}

	// Provider profile surface.
	providers := v1.Group("/providers", auth, middleware.RequireRole(shared.RoleProvider))
	{
		providers.POST("/me", c.ProviderHandler.Register)
		providers.GET("/me", c.ProviderHandler.Me)
		providers.PATCH("/me/online", c.ProviderHandler.SetOnline)
		providers.PUT("/me/location", c.ProviderHandler.UpdateLocation)
	}

	// Admin surface.
	admin := v1.Group("/admin", auth, middleware.RequireRole(shared.RoleAdmin))
	{
		admin.POST("/sweep", c.BookingHandler.Sweep)
		admin.POST("/bookings/:id/review", c.BookingHandler.ResolveReview)
	}

	return router
}
