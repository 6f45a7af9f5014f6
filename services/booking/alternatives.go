package booking

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"tailortalk/models"
)

// MaxAlternatives is the number of substitute slots offered at once.
const MaxAlternatives = 3

var fallbackHours = []int{9, 11, 14, 16}

// FallbackAlternatives proposes slots without consulting the calendar: two
// same-day slots at 09/11/14/16 (skipping the requested hour), then 10:00 the
// next day.
func FallbackAlternatives(requested time.Time, durationMinutes int) []models.TimeRange {
	var out []models.TimeRange
	for _, hour := range fallbackHours {
		if hour == requested.Hour() {
			continue
		}
		start := time.Date(requested.Year(), requested.Month(), requested.Day(), hour, 0, 0, 0, requested.Location())
		out = append(out, models.RangeFor(start, durationMinutes))
		if len(out) >= 2 {
			break
		}
	}

	if len(out) < MaxAlternatives {
		next := requested.AddDate(0, 0, 1)
		start := time.Date(next.Year(), next.Month(), next.Day(), 10, 0, 0, 0, requested.Location())
		out = append(out, models.RangeFor(start, durationMinutes))
	}

	if len(out) > MaxAlternatives {
		out = out[:MaxAlternatives]
	}
	return out
}

var (
	bareSelection    = regexp.MustCompile(`^([123])\.?\s*$`)
	keywordSelection = regexp.MustCompile(`(option|choice|number)\s+([123])`)
	selectionHints   = []*regexp.Regexp{
		bareSelection,
		regexp.MustCompile(`i?'?ll take (the )?(first|second|third|1st|2nd|3rd)`),
		keywordSelection,
		regexp.MustCompile(`^(first|second|third|1st|2nd|3rd)$`),
	}
	ordinals = []struct {
		words []string
		n     int
	}{
		{[]string{"first", "1st"}, 1},
		{[]string{"second", "2nd"}, 2},
		{[]string{"third", "3rd"}, 3},
	}
)

// LooksLikeSelection reports whether the message picks one of the listed
// alternatives ("2", "option 1", "I'll take the first").
func LooksLikeSelection(message string) bool {
	text := strings.ToLower(strings.TrimSpace(message))
	for _, re := range selectionHints {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// ParseSelection returns the 1-based index the user picked, or 0 when the
// message names no option. The first matching form wins.
func ParseSelection(message string) int {
	text := strings.ToLower(strings.TrimSpace(message))

	if m := bareSelection.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	for _, o := range ordinals {
		for _, w := range o.words {
			if strings.Contains(text, w) {
				return o.n
			}
		}
	}
	if m := keywordSelection.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[2])
		return n
	}
	return 0
}

// SelectAlternative resolves the user's pick against the offered list.
func SelectAlternative(message string, offered []models.TimeRange) (models.TimeRange, bool) {
	n := ParseSelection(message)
	if n < 1 || n > len(offered) {
		return models.TimeRange{}, false
	}
	return offered[n-1], true
}

// FormatAlternatives renders a numbered list, e.g. "1. Monday, Jan 15 at 02:00 PM".
func FormatAlternatives(alternatives []models.TimeRange) string {
	if len(alternatives) == 0 {
		return "No alternative times found."
	}
	lines := make([]string, 0, len(alternatives))
	for i, alt := range alternatives {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, alt.Start.Format("Monday, Jan 02 at 03:04 PM")))
	}
	return strings.Join(lines, "\n")
}

// selectionSlots converts a chosen range back to the slot text the resolver reads.
func selectionSlots(r models.TimeRange) (date, clock string) {
	return r.Start.Format(isoDate), r.Start.Format("15:04")
}
