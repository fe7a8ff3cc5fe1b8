package routes

import (
	"net/http"
	"time"

	"clinicore/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterSchedulingRoutes registers all endpoints for the scheduling engine.
func RegisterSchedulingRoutes(r *gin.Engine, h *handlers.SchedulingHandler) {
	api := r.Group("/api/scheduling")
	{
		api.POST("/validate", h.ValidateBookingHandler)
		api.POST("/sessions", h.CreateSessionHandler)
		api.GET("/sessions/:id", h.GetSessionHandler)
		api.POST("/sessions/:id/transition", h.TransitionSessionHandler)
		api.GET("/sessions/:id/transitions", h.SessionTransitionsHandler)

		api.GET("/rooms/occupancy", h.RoomsOccupancyHandler)
		api.GET("/rooms/:id/occupancy", h.RoomOccupancyHandler)

		api.POST("/sweep/run", h.RunSweepHandler)
		api.GET("/sweep/report", h.SweepReportHandler)

		api.GET("/agenda", h.AgendaHandler)
	}
}

// RegisterHealthRoutes registers liveness endpoints.
func RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// CORSMiddleware returns the CORS policy for dashboard clients.
func CORSMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	})
}
