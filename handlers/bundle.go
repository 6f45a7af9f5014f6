package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Chat endpoints
	SendMessageHandler   gin.HandlerFunc
	VoiceMessageHandler  gin.HandlerFunc
	HistoryHandler       gin.HandlerFunc
	DeleteSessionHandler gin.HandlerFunc
	ListSessionsHandler  gin.HandlerFunc

	// Calendar endpoints
	CreateBookingHandler       gin.HandlerFunc
	CheckAvailabilityHandler   gin.HandlerFunc
	AvailableSlotsHandler      gin.HandlerFunc
	SuggestAlternativesHandler gin.HandlerFunc
	UpcomingEventsHandler      gin.HandlerFunc
	CalendarStatusHandler      gin.HandlerFunc
}

// NewHandlerBundle assembles the bundle from the chat and calendar handlers.
func NewHandlerBundle(chat *ChatHandler, cal *CalendarHandler) *HandlerBundle {
	return &HandlerBundle{
		SendMessageHandler:   chat.SendMessageHandler,
		VoiceMessageHandler:  chat.VoiceMessageHandler,
		HistoryHandler:       chat.HistoryHandler,
		DeleteSessionHandler: chat.DeleteSessionHandler,
		ListSessionsHandler:  chat.ListSessionsHandler,

		CreateBookingHandler:       cal.CreateBookingHandler,
		CheckAvailabilityHandler:   cal.CheckAvailabilityHandler,
		AvailableSlotsHandler:      cal.AvailableSlotsHandler,
		SuggestAlternativesHandler: cal.SuggestAlternativesHandler,
		UpcomingEventsHandler:      cal.UpcomingEventsHandler,
		CalendarStatusHandler:      cal.CalendarStatusHandler,
	}
}
