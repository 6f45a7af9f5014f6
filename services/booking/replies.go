package booking

import (
	"fmt"
	"strings"

	"tailortalk/models"
)

const (
	greetingReply      = "Hello! I'm your booking assistant. I can help you schedule appointments. What would you like to book?"
	fallbackReply      = "I'm here to help you book appointments. Could you tell me what you'd like to schedule?"
	apologyReply       = "I'm sorry, something went wrong on my side. Could you please repeat that?"
	invalidPickReply   = "I didn't understand which time you selected. Could you please specify the date and time you'd like?"
	declinedReply      = "No problem! Would you like to choose a different time or make changes to your booking?"
	calendarDownPrefix = "I couldn't reach the calendar to confirm that time, so I can't hold it for you. "

	defaultEventTitle       = "Appointment"
	defaultEventDescription = "Booked via chat assistant"
)

var nextActions = map[models.Step]string{
	models.StepGreeting:             "Tell me what you'd like to book",
	models.StepCollectingInfo:       "Provide the missing information",
	models.StepCheckingAvailability: "Waiting for availability check",
	models.StepConfirming:           "Confirm or modify the booking",
	models.StepCompleted:            "Booking completed",
}

// NextAction is the UI hint shown for a step.
func NextAction(step models.Step) string {
	if a, ok := nextActions[step]; ok {
		return a
	}
	return "Continue the conversation"
}

var affirmatives = []string{"yes", "confirm", "book", "ok"}

// IsAffirmative reports whether a confirmation prompt was accepted.
func IsAffirmative(message string) bool {
	text := strings.ToLower(message)
	for _, w := range affirmatives {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// joinNatural renders ["a"], ["a","b"] and ["a","b","c"] as "a", "a and b", "a, b and c".
func joinNatural(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

func missingReply(missing []string) string {
	if len(missing) > 3 {
		missing = missing[:3]
	}
	return fmt.Sprintf("I need a bit more information. Could you please provide %s?", joinNatural(missing))
}

func unresolvedReply(slots models.BookingSlots) string {
	return fmt.Sprintf("I couldn't work out which day you mean by %q. Could you give it as today, tomorrow, next Monday or a date like 2025-03-14?", slots.Date)
}

func availableReply(slots models.BookingSlots) string {
	return fmt.Sprintf("Great! I found that %s at %s is available. Shall I book this %s for you?", slots.Date, slots.Time, slots.Title)
}

func selectedReply(slots models.BookingSlots) string {
	return fmt.Sprintf("Perfect! I can book your %s on %s at %s. Shall I confirm this booking?", slots.Title, slots.Date, slots.Time)
}

func unavailableReply(slots models.BookingSlots, alternatives []models.TimeRange) string {
	if len(alternatives) == 0 {
		return fmt.Sprintf("Unfortunately, %s at %s is not available. Could you please suggest a different date and time?", slots.Date, slots.Time)
	}
	return fmt.Sprintf("Unfortunately, %s at %s is not available. Here are some alternative times I found:\n\n%s\n\nWhich time would you prefer, or would you like to suggest a different time?",
		slots.Date, slots.Time, FormatAlternatives(alternatives))
}

func takenReply(alternatives []models.TimeRange) string {
	reply := "I'm sorry, that time slot is no longer available. Let me find other options for you."
	if len(alternatives) > 0 {
		reply += fmt.Sprintf("\n\nHere are some other available times:\n\n%s\n\nWhich would you prefer?", FormatAlternatives(alternatives))
	}
	return reply
}

func bookedReply(slots models.BookingSlots) string {
	return fmt.Sprintf("Perfect! I've booked your %s for %s at %s. You should receive a calendar invitation shortly.", slots.Title, slots.Date, slots.Time)
}

func bookingFailedReply(reason string) string {
	if reason == "" {
		reason = "Unknown error"
	}
	return fmt.Sprintf("I'm sorry, there was an issue creating your booking: %s. Would you like to try again?", reason)
}
