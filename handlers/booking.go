package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"tailortalk/models"
	"tailortalk/services/calendar"
	"tailortalk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const humanReadableLayout = "Monday, January 02 at 03:04 PM"

// CalendarHandler exposes the calendar collaborator directly, outside of
// the conversation flow.
type CalendarHandler struct {
	Cal      calendar.Calendar
	Oracle   *calendar.Oracle
	Location *time.Location
}

func NewCalendarHandler(cal calendar.Calendar, oracle *calendar.Oracle, loc *time.Location) *CalendarHandler {
	return &CalendarHandler{Cal: cal, Oracle: oracle, Location: loc}
}

// CreateBookingRequest is the body of POST /booking/create.
type CreateBookingRequest struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	StartDatetime string `json:"start_datetime" binding:"required"`
	EndDatetime   string `json:"end_datetime" binding:"required"`
	Location      string `json:"location"`
	AttendeeEmail string `json:"attendee_email"`
}

type rangeRequest struct {
	StartDatetime string `json:"start_datetime" binding:"required"`
	EndDatetime   string `json:"end_datetime" binding:"required"`
}

type alternativesRequest struct {
	PreferredStart  string `json:"preferred_start" binding:"required"`
	DurationMinutes int    `json:"duration_minutes"`
	Count           int    `json:"count"`
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTimestamp accepts RFC 3339 or a local timestamp in loc.
func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func (h *CalendarHandler) parseRange(start, end string) (models.TimeRange, error) {
	s, err := parseTimestamp(start, h.Location)
	if err != nil {
		return models.TimeRange{}, err
	}
	e, err := parseTimestamp(end, h.Location)
	if err != nil {
		return models.TimeRange{}, err
	}
	return models.NewTimeRange(s, e)
}

// calendarError maps collaborator failures onto HTTP statuses.
func calendarError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, calendar.ErrUnavailable):
		utils.JSONError(c, http.StatusServiceUnavailable, "Calendar service not available", err.Error())
	case errors.Is(err, models.ErrInvalidRange):
		utils.JSONError(c, http.StatusBadRequest, "Invalid time range", err.Error())
	default:
		getLogger(c).Error(message, zap.Error(err))
		utils.JSONError(c, http.StatusBadGateway, message, err.Error())
	}
}

// CreateBookingHandler checks the slot and then creates the event.
func (h *CalendarHandler) CreateBookingHandler(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}
	r, err := h.parseRange(req.StartDatetime, req.EndDatetime)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid time range", err.Error())
		return
	}

	availability, err := h.Oracle.Check(c.Request.Context(), r)
	if err != nil {
		calendarError(c, "Error checking availability", err)
		return
	}
	if !availability.Available {
		c.JSON(http.StatusOK, gin.H{
			"success":       false,
			"message":       "Time slot is not available: " + availability.Message,
			"event_details": gin.H{"conflicts": availability.Conflicts},
		})
		return
	}

	result, err := h.Cal.CreateEvent(c.Request.Context(), models.EventRequest{
		Title:         req.Title,
		Description:   req.Description,
		Range:         r,
		Location:      req.Location,
		AttendeeEmail: req.AttendeeEmail,
	})
	if err != nil || !result.Success {
		reason := result.Error
		if reason == "" && err != nil {
			reason = err.Error()
		}
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Failed to create booking: " + reason})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"event_id":   result.EventID,
		"event_link": result.EventLink,
		"message":    "Booking created successfully!",
	})
}

// CheckAvailabilityHandler reports conflicts for one range.
func (h *CalendarHandler) CheckAvailabilityHandler(c *gin.Context) {
	var req rangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}
	r, err := h.parseRange(req.StartDatetime, req.EndDatetime)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid time range", err.Error())
		return
	}
	result, err := h.Oracle.Check(c.Request.Context(), r)
	if err != nil {
		calendarError(c, "Error checking availability", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"available":  result.Available,
		"message":    result.Message,
		"conflicts":  result.Conflicts,
		"start_time": r.Start.Format(time.RFC3339),
		"end_time":   r.End.Format(time.RFC3339),
	})
}

// AvailableSlotsHandler lists free slots between start_date and end_date.
func (h *CalendarHandler) AvailableSlotsHandler(c *gin.Context) {
	start, err := parseTimestamp(c.Query("start_date"), h.Location)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid start_date", err.Error())
		return
	}
	end, err := parseTimestamp(c.Query("end_date"), h.Location)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid end_date", err.Error())
		return
	}
	duration, err := strconv.Atoi(c.DefaultQuery("duration_minutes", strconv.Itoa(models.DefaultDurationMinutes)))
	if err != nil || duration <= 0 {
		utils.JSONError(c, http.StatusBadRequest, "Invalid duration_minutes", c.Query("duration_minutes"))
		return
	}

	slots, err := h.Oracle.FreeSlots(c.Request.Context(), models.TimeRange{Start: start, End: end},
		duration, h.Oracle.BusinessStart, h.Oracle.BusinessEnd, h.Oracle.WeekdaysOnly)
	if err != nil {
		calendarError(c, "Error getting available slots", err)
		return
	}

	formatted := make([]gin.H, 0, len(slots))
	for _, s := range slots {
		formatted = append(formatted, gin.H{
			"start":            s.Start.Format(time.RFC3339),
			"end":              s.End.Format(time.RFC3339),
			"duration_minutes": duration,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"available_slots":  formatted,
		"count":            len(formatted),
		"duration_minutes": duration,
		"search_range": gin.H{
			"start": start.Format(time.RFC3339),
			"end":   end.Format(time.RFC3339),
		},
	})
}

// SuggestAlternativesHandler proposes free slots near a preferred start.
func (h *CalendarHandler) SuggestAlternativesHandler(c *gin.Context) {
	var req alternativesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}
	preferred, err := parseTimestamp(req.PreferredStart, h.Location)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid preferred_start", err.Error())
		return
	}
	if req.DurationMinutes <= 0 {
		req.DurationMinutes = models.DefaultDurationMinutes
	}
	if req.Count <= 0 {
		req.Count = 3
	}

	alternatives, err := h.Oracle.SuggestAlternatives(c.Request.Context(), preferred, req.DurationMinutes, req.Count)
	if err != nil {
		calendarError(c, "Error suggesting alternatives", err)
		return
	}

	formatted := make([]gin.H, 0, len(alternatives))
	for _, alt := range alternatives {
		formatted = append(formatted, gin.H{
			"start":          alt.Start.Format(time.RFC3339),
			"end":            alt.End.Format(time.RFC3339),
			"human_readable": alt.Start.Format(humanReadableLayout),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"alternatives":     formatted,
		"count":            len(formatted),
		"original_request": preferred.Format(time.RFC3339),
		"message":          fmt.Sprintf("Found %d alternative time slots", len(formatted)),
	})
}

// UpcomingEventsHandler lists events in the next days_ahead days.
func (h *CalendarHandler) UpcomingEventsHandler(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days_ahead", "7"))
	if err != nil || days <= 0 {
		utils.JSONError(c, http.StatusBadRequest, "Invalid days_ahead", c.Query("days_ahead"))
		return
	}
	events, err := h.Oracle.Upcoming(c.Request.Context(), days)
	if err != nil {
		calendarError(c, "Error getting upcoming events", err)
		return
	}
	if events == nil {
		events = []models.CalendarEvent{}
	}
	c.JSON(http.StatusOK, gin.H{
		"events":     events,
		"count":      len(events),
		"days_ahead": days,
	})
}

// CalendarStatusHandler reports the backend and a live connection test.
func (h *CalendarHandler) CalendarStatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.Cal.Status(c.Request.Context()))
}
