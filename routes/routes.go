package routes

import (
	"time"

	"tailortalk/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterChatRoutes registers the conversational endpoints.
func RegisterChatRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/v1/chat")
	{
		api.POST("/message", hb.SendMessageHandler)
		api.POST("/voice", hb.VoiceMessageHandler)
		api.GET("/session/:sessionID/history", hb.HistoryHandler)
		api.DELETE("/session/:sessionID", hb.DeleteSessionHandler)
		api.GET("/sessions", hb.ListSessionsHandler)
	}
}

// RegisterBookingRoutes registers the direct calendar endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/v1/booking")
	{
		bookingGroup.POST("/create", hb.CreateBookingHandler)
		bookingGroup.POST("/check-availability", hb.CheckAvailabilityHandler)
		bookingGroup.GET("/available-slots", hb.AvailableSlotsHandler)
		bookingGroup.POST("/suggest-alternatives", hb.SuggestAlternativesHandler)
		bookingGroup.GET("/upcoming-events", hb.UpcomingEventsHandler)
		bookingGroup.GET("/calendar-status", hb.CalendarStatusHandler)
	}
}

// RegisterHealthRoute registers the health-check and banner endpoints.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
	r.GET("/", handlers.BannerHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterChatRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterHealthRoute(r)
}
