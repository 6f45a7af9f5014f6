package models

// ChatRequest is the payload coming from the frontend into /api/v1/chat/message.
type ChatRequest struct {
	Message   string `json:"message" binding:"required"` // user's message (typed or transcribed)
	SessionID string `json:"session_id,omitempty"`       // omitted on the first turn
	UserID    string `json:"user_id,omitempty"`          // informational only
}

// ChatResponse is what the chat handler returns to the frontend.
type ChatResponse struct {
	Response            string       `json:"response"`              // natural-language reply
	SessionID           string       `json:"session_id"`            // allocated or echoed
	CurrentStep         Step         `json:"current_step"`          // state after this turn
	ExtractedData       BookingSlots `json:"extracted_data"`        // slots collected so far
	SuggestedNextAction string       `json:"suggested_next_action"` // hint for the UI
	Transcript          string       `json:"transcript,omitempty"`  // set for voice messages
}

// HistoryResponse is returned by the session history endpoint.
type HistoryResponse struct {
	SessionID           string         `json:"session_id"`
	CurrentStep         Step           `json:"current_step"`
	ConversationHistory []HistoryEntry `json:"conversation_history"`
	ExtractedData       BookingSlots   `json:"extracted_data"`
	ConfirmedBooking    bool           `json:"confirmed_booking"`
}

const (
	IntentBooking = "booking"
	IntentGeneral = "general"
)

// Extraction is what the slot extractor understood from one message.
type Extraction struct {
	Intent     string       `json:"intent"`
	Slots      BookingSlots `json:"extracted_data"`
	Confidence float64      `json:"confidence"`
}
