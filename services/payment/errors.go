package payment

import (
	"errors"
	"fmt"
)

// ErrAccessDenied indicates the caller is not a party to the payment's
// underlying resource.
var ErrAccessDenied = errors.New("access denied")

// AlreadyPaidError indicates initiation was attempted on a settled booking.
type AlreadyPaidError struct {
	BookingID string
}

func (e AlreadyPaidError) Error() string {
	return fmt.Sprintf("booking %s is already paid", e.BookingID)
}

// UnknownCorrelationError indicates a callback referenced a correlation
// id no record carries. Expected under gateway retries; the handler
// absorbs it and still acknowledges the sender.
type UnknownCorrelationError struct {
	CorrelationID string
}

func (e UnknownCorrelationError) Error() string {
	return fmt.Sprintf("no record found for correlation id %s", e.CorrelationID)
}

// GatewayError wraps a failed gateway interaction. Retryable by the
// caller: it never partially mutates booking state.
type GatewayError struct {
	Op      string
	Timeout bool
	Err     error
}

func (e GatewayError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("gateway timeout during %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("gateway unavailable during %s: %v", e.Op, e.Err)
}

func (e GatewayError) Unwrap() error { return e.Err }
