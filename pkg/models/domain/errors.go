package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnauthenticated marks an unknown or expired access token. Callers route
// it to the identity-recovery flow rather than a hard failure.
var ErrUnauthenticated = errors.New("unknown access token")

// ErrNotFound marks a missing record behind a valid token.
var ErrNotFound = errors.New("not found")

// ValidationError is a bad input shape. Fatal for the request, never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PaymentError is a gateway-reported failure, terminal for the attempt. The
// user may start over with a new intent.
type PaymentError struct {
	MerchantReference string
	Reason            string
}

func (e *PaymentError) Error() string {
	if e.MerchantReference == "" {
		return fmt.Sprintf("payment: %s", e.Reason)
	}
	return fmt.Sprintf("payment %s: %s", e.MerchantReference, e.Reason)
}

// NetworkError wraps a transient transport failure. Eligible for limited
// retry on read-only calls only.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// TimeoutError means generation polling exceeded its maximum duration. The
// job itself is left untouched on the backend.
type TimeoutError struct {
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("generation not completed after %s", e.Elapsed)
}

// Retryable reports whether an error is transient from the caller's point of
// view. Validation, auth and gateway-terminal failures are not.
func Retryable(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
