package ai

import (
	"regexp"
	"strconv"
	"strings"

	"tailortalk/models"
)

var (
	bookingKeywords = []string{"book", "schedule", "appointment", "meeting", "reserve"}

	timePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,2}):(\d{2})\s*(am|pm)?`),
		regexp.MustCompile(`(\d{1,2})\s*(am|pm)`),
		regexp.MustCompile(`at\s+(\d{1,2})`),
	}
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`tomorrow`),
		regexp.MustCompile(`today`),
		regexp.MustCompile(`next\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`),
		regexp.MustCompile(`(\d{1,2})/(\d{1,2})`),
		regexp.MustCompile(`(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2})`),
	}
	durationPattern = regexp.MustCompile(`(\d+)\s*(hour|hours|minute|minutes|min)`)
)

const (
	generalConfidence = 0.1
	foundConfidence   = 0.6
	emptyConfidence   = 0.3
)

// hasBookingKeyword reports whether the lower-cased text mentions booking.
func hasBookingKeyword(lower string) bool {
	for _, kw := range bookingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

// FallbackExtract is the deterministic keyword and pattern extractor used
// when no LLM is configured or the LLM answer is unusable.
func FallbackExtract(message string) models.Extraction {
	lower := strings.ToLower(message)
	if !hasBookingKeyword(lower) {
		return models.Extraction{Intent: models.IntentGeneral, Confidence: generalConfidence}
	}

	var slots models.BookingSlots
	slots.Time = firstMatch(timePatterns, lower)
	slots.Date = firstMatch(datePatterns, lower)

	if m := durationPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			if strings.Contains(m[2], "hour") {
				n *= 60
			}
			slots.DurationMinutes = n
		}
	}

	switch {
	case strings.Contains(lower, "meeting"):
		slots.Title = "Meeting"
	case strings.Contains(lower, "appointment"):
		slots.Title = "Appointment"
	default:
		slots.Title = "Event"
	}

	confidence := emptyConfidence
	if !slots.IsEmpty() {
		confidence = foundConfidence
	}
	slots.Confidence = confidence
	return models.Extraction{Intent: models.IntentBooking, Slots: slots, Confidence: confidence}
}
