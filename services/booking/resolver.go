package booking

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHour = 9
	isoDate     = "2006-01-02"
)

var (
	resolverTimePattern = regexp.MustCompile(`(\d{1,2}):?(\d{2})?\s*(am|pm)?`)
	weekdays            = map[string]time.Weekday{
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
		"sunday":    time.Sunday,
	}
	weekdayOrder = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
)

// ResolveDateTime turns a natural-language date and optional time into an
// absolute timestamp in now's location. ok is false when the date cannot be
// understood; callers ask the user to clarify rather than fail.
func ResolveDateTime(dateText, timeText string, now time.Time) (time.Time, bool) {
	day, ok := resolveDate(dateText, now)
	if !ok {
		return time.Time{}, false
	}
	hour, minute := resolveClock(timeText)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location()), true
}

func resolveDate(dateText string, now time.Time) (time.Time, bool) {
	text := strings.ToLower(strings.TrimSpace(dateText))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch {
	case text == "":
		return time.Time{}, false
	case text == "today":
		return today, true
	case text == "tomorrow":
		return today.AddDate(0, 0, 1), true
	case strings.Contains(text, "next"):
		for _, name := range weekdayOrder {
			if strings.Contains(text, name) {
				ahead := (int(weekdays[name]) - int(today.Weekday()) + 7) % 7
				if ahead == 0 {
					ahead = 7
				}
				return today.AddDate(0, 0, ahead), true
			}
		}
		return time.Time{}, false
	}

	parsed, err := time.ParseInLocation(isoDate, strings.TrimSpace(dateText), now.Location())
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// resolveClock parses "H[:MM] [am|pm]"; anything else means 09:00.
func resolveClock(timeText string) (int, int) {
	text := strings.ToLower(strings.TrimSpace(timeText))
	if text == "" {
		return defaultHour, 0
	}
	m := resolverTimePattern.FindStringSubmatch(text)
	if m == nil {
		return defaultHour, 0
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return defaultHour, 0
	}
	minute := 0
	if m[2] != "" {
		if minute, err = strconv.Atoi(m[2]); err != nil {
			return defaultHour, 0
		}
	}

	switch m[3] {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}

	if hour > 23 || minute > 59 {
		return defaultHour, 0
	}
	return hour, minute
}
