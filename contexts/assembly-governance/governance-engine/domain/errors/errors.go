package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput            = errors.New("invalid governance input")
	ErrOperationNotPermitted   = errors.New("operation not permitted in current meeting state")
	ErrProxyLimitExceeded      = errors.New("statutory proxy limit exceeded")
	ErrSelfDelegation          = errors.New("proxy giver and receiver must differ")
	ErrGiverAlreadyDelegated   = errors.New("giver unit already delegated to another receiver")
	ErrInvalidReceiverPhone    = errors.New("invalid receiver mobile phone number")
	ErrNoDecisions             = errors.New("meeting has no decisions")
	ErrMeetingAlreadyCompleted = errors.New("meeting is already completed")
	ErrMeetingNotCompleted     = errors.New("meeting is not completed")
	ErrVoterNotAttending       = errors.New("voting unit is not attending the meeting")
	ErrMeetingNotFound         = errors.New("meeting not found")
	ErrSiteNotFound            = errors.New("site not found")
	ErrUnitNotFound            = errors.New("unit not found")
	ErrDecisionNotFound        = errors.New("decision not found")
	ErrConflict                = errors.New("governance write conflict")
	ErrIdempotencyConflict     = errors.New("idempotency key conflict")
)

// LifecycleError reports an operation blocked by the meeting's state.
type LifecycleError struct {
	MeetingID string
	Operation string
	State     string
	Cause     error
}

func (e *LifecycleError) Error() string {
	message := fmt.Sprintf("meeting %s: operation %s not permitted in %s state", e.MeetingID, e.Operation, e.State)
	if e.Cause != nil {
		message += ": " + e.Cause.Error()
	}
	return message
}

func (e *LifecycleError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrOperationNotPermitted}
	}
	return []error{ErrOperationNotPermitted, e.Cause}
}

// ProxyLimitError reports which statutory axis a proxy request exceeded.
type ProxyLimitError struct {
	ReceiverKey       string
	CountExceeded     bool
	LandShareExceeded bool
	CountAfter        int
	MaxCount          int
	LandShareAfter    decimal.Decimal
	MaxLandShare      decimal.Decimal
}

func (e *ProxyLimitError) Error() string {
	parts := make([]string, 0, 2)
	if e.CountExceeded {
		parts = append(parts, fmt.Sprintf("proxy count limit exceeded: %d/%d (KMK 31)", e.CountAfter, e.MaxCount))
	}
	if e.LandShareExceeded {
		parts = append(parts, fmt.Sprintf("proxy land share limit exceeded: %s/%s (KMK 31)",
			e.LandShareAfter.StringFixed(2),
			e.MaxLandShare.StringFixed(2),
		))
	}
	if len(parts) == 0 {
		return ErrProxyLimitExceeded.Error()
	}
	return strings.Join(parts, "; ")
}

func (e *ProxyLimitError) Unwrap() error {
	return ErrProxyLimitExceeded
}
