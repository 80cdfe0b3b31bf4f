// internal/domain/commerce/errors.go
package commerce

import (
	"errors"
	"fmt"
)

// ValidationError reports bad local input, rejected before any network call
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ErrEmptyCart is returned when checkout begins on an empty cart
var ErrEmptyCart = &ValidationError{Reason: "cart is empty"}

// RemoteError reports a failure from the remote commerce service,
// carrying the server's reason verbatim
type RemoteError struct {
	StatusCode int
	Reason     string
	Retriable  bool
}

func (e *RemoteError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("remote service error (status %d): %s", e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("remote service error: %s", e.Reason)
}

// TimeoutError reports a remote call that exceeded its time bound.
// Treated like a RemoteError for rollback purposes, but always retriable.
type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out", e.Op)
}

// AuthExpiredError reports an authorization failure (401/403-equivalent).
// Never retried; always routed to the session guard.
type AuthExpiredError struct {
	Reason string
}

func (e *AuthExpiredError) Error() string {
	if e.Reason == "" {
		return "authorization expired"
	}
	return fmt.Sprintf("authorization expired: %s", e.Reason)
}

// ItemFailure identifies one failed item of a batch operation
type ItemFailure struct {
	ProductID string `json:"product_id"`
	Reason    string `json:"reason"`
}

// PartialBatchError reports a bulk operation where some items succeeded
// and some failed. The succeeded items stay committed.
type PartialBatchError struct {
	Succeeded int
	Failures  []ItemFailure
}

func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("%d items succeeded, %d failed", e.Succeeded, len(e.Failures))
}

// MutationError wraps a failed state store mutation with the operation
// and product it targeted. The underlying cause is preserved for errors.As.
type MutationError struct {
	Op        string
	ProductID string
	Err       error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.ProductID, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// IsAuthExpired reports whether err is, or wraps, an AuthExpiredError
func IsAuthExpired(err error) bool {
	var ae *AuthExpiredError
	return errors.As(err, &ae)
}

// IsRetriable reports whether the caller may retry the operation as-is
func IsRetriable(err error) bool {
	var te *TimeoutError
	if errors.As(err, &te) {
		return true
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Retriable
	}
	return false
}
