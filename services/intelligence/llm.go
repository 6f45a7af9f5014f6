package ai

import (
	"context"
	"fmt"
	"strings"
)

// BackendKind selects how slots are extracted. It is decided once from
// configuration and never inferred per call.
type BackendKind string

const (
	BackendNone            BackendKind = "none"
	BackendCompletion      BackendKind = "completion"
	BackendFunctionCalling BackendKind = "function_calling"
)

func ParseBackendKind(s string) (BackendKind, error) {
	switch k := BackendKind(strings.ToLower(strings.TrimSpace(s))); k {
	case "", BackendNone:
		return BackendNone, nil
	case BackendCompletion, BackendFunctionCalling:
		return k, nil
	}
	return BackendNone, fmt.Errorf("unknown LLM backend %q", s)
}

// Completer returns free text for a system and user prompt.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// FunctionCaller forces the model to call spec and returns the call's
// arguments as a JSON object.
type FunctionCaller interface {
	CallFunction(ctx context.Context, system, user string, spec FunctionSpec) (string, error)
}

// Param types understood by every backend.
const (
	ParamString  = "string"
	ParamInteger = "integer"
	ParamNumber  = "number"
)

type FunctionParam struct {
	Name        string
	Type        string
	Description string
}

// FunctionSpec describes one tool the model may call.
type FunctionSpec struct {
	Name        string
	Description string
	Params      []FunctionParam
	Required    []string
}

// jsonSchema renders the parameters as a JSON schema object.
func (f FunctionSpec) jsonSchema() map[string]any {
	props := make(map[string]any, len(f.Params))
	for _, p := range f.Params {
		props[p.Name] = map[string]any{"type": p.Type, "description": p.Description}
	}
	schema := map[string]any{"type": "object", "properties": props}
	if len(f.Required) > 0 {
		schema["required"] = f.Required
	}
	return schema
}

const extractionPrompt = `You are an AI assistant that extracts booking information from user messages.
Extract the following information from the user's message:
- title: What they want to book (meeting, appointment, etc.)
- date: What date they want (in YYYY-MM-DD format if possible, or "today", "tomorrow", "next <weekday>")
- time: What time they want (in HH:MM format if possible)
- duration: How long the meeting should be (in minutes)
- description: Any additional details
- location: Where the meeting should be
- attendee_email: Email of other attendees

Return the information as a JSON object. If information is not provided, use null.

Example:
User: "Book a meeting with John tomorrow at 3 PM for 1 hour"
Response: {
    "title": "Meeting with John",
    "date": "tomorrow",
    "time": "15:00",
    "duration": 60,
    "description": null,
    "location": null,
    "attendee_email": null,
    "confidence": 0.8
}`

const functionPrompt = "You are a helpful booking assistant. Record whatever booking details the user's message contains by calling the provided function. Leave out anything the user did not say."

// bookingDetailsFunction is the single tool offered in function-calling mode.
var bookingDetailsFunction = FunctionSpec{
	Name:        "record_booking_details",
	Description: "Record the appointment details mentioned in the user's message",
	Params: []FunctionParam{
		{Name: "title", Type: ParamString, Description: "What the user wants to book, e.g. Meeting with John"},
		{Name: "date", Type: ParamString, Description: "Requested date as YYYY-MM-DD, today, tomorrow or next <weekday>"},
		{Name: "time", Type: ParamString, Description: "Requested start time as HH:MM"},
		{Name: "duration", Type: ParamInteger, Description: "Length in minutes"},
		{Name: "description", Type: ParamString, Description: "Additional details"},
		{Name: "location", Type: ParamString, Description: "Where the meeting happens"},
		{Name: "attendee_email", Type: ParamString, Description: "Email address of another attendee"},
		{Name: "confidence", Type: ParamNumber, Description: "How sure you are about the extraction, 0 to 1"},
	},
}

func userPrompt(message string) string {
	return "User message: " + message
}
