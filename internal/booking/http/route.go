package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	// === Public Routes ===
	g.GET("/listings/:id/availability", h.Availability)

	// === Authenticated Routes ===
	group := g.Group("/bookings", authMiddleware)
	{
		group.POST("", h.Create)
		group.GET("/mine", h.Mine)
		group.GET("/hosting", h.Hosting)
		group.GET("/:id", h.Get)
		group.POST("/:id/status", h.UpdateStatus)
		group.POST("/:id/cancel", h.Cancel)
	}
}
