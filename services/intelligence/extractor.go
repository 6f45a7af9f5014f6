package ai

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"tailortalk/models"
	"tailortalk/utils"

	"go.uber.org/zap"
)

const defaultLLMConfidence = 0.5

var errNoJSON = errors.New("no JSON object in model output")

// SlotExtractor turns one chat message into intent and booking slots. It
// never returns an error: any backend problem degrades to FallbackExtract.
type SlotExtractor struct {
	kind      BackendKind
	completer Completer
	caller    FunctionCaller
}

// NewSlotExtractor fixes the backend kind for the life of the process. A
// kind whose client is missing is downgraded to BackendNone.
func NewSlotExtractor(kind BackendKind, completer Completer, caller FunctionCaller) *SlotExtractor {
	logger := utils.GetLogger()
	switch {
	case kind == BackendCompletion && completer == nil,
		kind == BackendFunctionCalling && caller == nil:
		logger.Warn("LLM backend has no client, using pattern extraction", zap.String("backend", string(kind)))
		kind = BackendNone
	}
	logger.Info("Slot extractor ready", zap.String("backend", string(kind)))
	return &SlotExtractor{kind: kind, completer: completer, caller: caller}
}

func (x *SlotExtractor) Kind() BackendKind { return x.kind }

func (x *SlotExtractor) Extract(ctx context.Context, message string) models.Extraction {
	var (
		raw string
		err error
	)
	switch x.kind {
	case BackendCompletion:
		raw, err = x.completer.Complete(ctx, extractionPrompt, userPrompt(message))
	case BackendFunctionCalling:
		raw, err = x.caller.CallFunction(ctx, functionPrompt, userPrompt(message), bookingDetailsFunction)
	default:
		return FallbackExtract(message)
	}
	if err != nil {
		utils.GetLogger().Warn("LLM extraction failed, using pattern extraction",
			zap.String("backend", string(x.kind)), zap.Error(err))
		return FallbackExtract(message)
	}

	parsed, err := parseLLMOutput(raw)
	if err != nil {
		utils.GetLogger().Warn("Unusable LLM extraction, using pattern extraction",
			zap.String("backend", string(x.kind)), zap.Error(err))
		return FallbackExtract(message)
	}
	return parsed.extraction(message)
}

// flexNumber accepts 60, 60.0, "60" and null.
type flexNumber struct {
	value float64
	set   bool
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Free text such as "1 hour" is ignored rather than failing the parse.
		return nil
	}
	n.value, n.set = v, true
	return nil
}

type llmSlots struct {
	Title         *string    `json:"title"`
	Date          *string    `json:"date"`
	Time          *string    `json:"time"`
	Duration      flexNumber `json:"duration"`
	Description   *string    `json:"description"`
	Location      *string    `json:"location"`
	AttendeeEmail *string    `json:"attendee_email"`
	Confidence    flexNumber `json:"confidence"`
}

// parseLLMOutput decodes the span from the first '{' to the last '}'.
func parseLLMOutput(text string) (*llmSlots, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, errNoJSON
	}
	var out llmSlots
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func (l *llmSlots) extraction(message string) models.Extraction {
	slots := models.BookingSlots{
		Title:         deref(l.Title),
		Date:          deref(l.Date),
		Time:          deref(l.Time),
		Description:   deref(l.Description),
		Location:      deref(l.Location),
		AttendeeEmail: deref(l.AttendeeEmail),
	}
	if l.Duration.set && l.Duration.value > 0 {
		slots.DurationMinutes = int(math.Round(l.Duration.value))
	}

	confidence := defaultLLMConfidence
	if l.Confidence.set {
		confidence = math.Max(0, math.Min(1, l.Confidence.value))
	}
	slots.Confidence = confidence

	intent := models.IntentGeneral
	if slots.Title != "" || slots.Date != "" || slots.Time != "" || hasBookingKeyword(strings.ToLower(message)) {
		intent = models.IntentBooking
	}
	return models.Extraction{Intent: intent, Slots: slots, Confidence: confidence}
}
