package booking

import "fmt"

const (
	CodeUnresolvedDateTime = "unresolvedDateTime"
	CodeInvalidSelection   = "invalidSelection"
	CodeIllegalTransition  = "illegalTransition"
	CodeInternal           = "internalError"
)

// BookingError carries a machine-readable code next to the message.
type BookingError struct {
	Code    string
	Message string
	Err     error
}

func (e *BookingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BookingError) Unwrap() error { return e.Err }

func NewUnresolvedDateTimeError(date, clock string) error {
	return &BookingError{
		Code:    CodeUnresolvedDateTime,
		Message: fmt.Sprintf("cannot resolve date %q time %q", date, clock),
	}
}

func NewInvalidSelectionError(msg string) error {
	return &BookingError{
		Code:    CodeInvalidSelection,
		Message: msg,
	}
}

func newTransitionError(from, to string) error {
	return &BookingError{
		Code:    CodeIllegalTransition,
		Message: fmt.Sprintf("%s -> %s", from, to),
	}
}

func newInternalError(recovered any) error {
	return &BookingError{
		Code:    CodeInternal,
		Message: fmt.Sprintf("recovered: %v", recovered),
	}
}
