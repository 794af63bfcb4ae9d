package browser

import (
	"errors"
	"fmt"
)

// ErrNavigationTimeout indicates a page did not finish loading within
// the configured page-load timeout. Callers match it with errors.Is to
// record a timeout outcome for that URL and move on.
var ErrNavigationTimeout = errors.New("page navigation timed out")

// SessionError wraps a browser-channel failure confined to one URL.
// It distinguishes recoverable per-page trouble from session setup
// failure, which is returned directly from NewSession and is fatal.
type SessionError struct {
	// Op names the operation that failed, such as "navigate".
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	return fmt.Sprintf("browser %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is and errors.As.
func (e *SessionError) Unwrap() error {
	return e.Err
}
