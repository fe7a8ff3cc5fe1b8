package scheduling

import (
	"errors"
	"fmt"
)

// RejectionReason enumerates why a proposed booking is inadmissible. Callers
// map these to user-facing messages; the engine never leaks raw store errors
// as rejection text.
type RejectionReason string

const (
	ReasonInvalidTimeRange             RejectionReason = "InvalidTimeRange"
	ReasonInvalidParticipants          RejectionReason = "InvalidParticipants"
	ReasonRoomNotFound                 RejectionReason = "RoomNotFound"
	ReasonRoomInactive                 RejectionReason = "RoomInactive"
	ReasonPatientCapacityExceeded      RejectionReason = "PatientCapacityExceeded"
	ReasonProfessionalCapacityExceeded RejectionReason = "ProfessionalCapacityExceeded"
)

// ValidationError rejects a proposed booking with an enumerated reason.
// Always recoverable: the caller picks a different room or time.
type ValidationError struct {
	Reason  RejectionReason
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func NewValidationError(reason RejectionReason, msg string) error {
	return &ValidationError{Reason: reason, Message: msg}
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// TransitionError signals a state-machine guard violation or a lost
// optimistic-concurrency race. The caller must re-read current state before
// deciding whether to retry.
type TransitionError struct {
	Code    string
	Message string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewInvalidTransition(msg string) error {
	return &TransitionError{
		Code:    "invalidTransition",
		Message: msg,
	}
}

// IsInvalidTransition reports whether err is a TransitionError.
func IsInvalidTransition(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}

// ErrStoreContention is surfaced when the atomic apply keeps losing version
// races. Transient; callers retry on their own policy, the sweep retries on
// the next cadence tick.
var ErrStoreContention = errors.New("session store contention, retry")
