package middlewares

import (
	"errors"
	"fmt"
	"time"
)

// TimeoutError represents a request that exceeded its deadline.
type TimeoutError struct {
	Duration time.Duration // The timeout that was exceeded
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %s", e.Duration)
}

// Timeout reports true so net-style checks (os.IsTimeout) recognize this
// error as a deadline failure.
func (e *TimeoutError) Timeout() bool {
	return true
}

// IsTimeoutError returns true if the error is a TimeoutError.
func IsTimeoutError(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// AsTimeoutError extracts the TimeoutError from an error if present.
func AsTimeoutError(err error) (*TimeoutError, bool) {
	var te *TimeoutError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
