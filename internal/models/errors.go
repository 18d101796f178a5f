package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the pipeline's fatal and partial-result paths.
var (
	// ErrEmptyVideo means the container probed to a duration of zero or less.
	ErrEmptyVideo = errors.New("video has no duration")

	// ErrDecode means the container or codec could not be read at all.
	// It is fatal and raised before any inference spend.
	ErrDecode = errors.New("video could not be decoded")

	// ErrDeadline marks a run that was cut short by the overall deadline.
	// Resolved frame results remain valid; the report degrades instead of
	// failing.
	ErrDeadline = errors.New("analysis deadline exceeded")
)

// IntakeError rejects a video before any processing starts.
type IntakeError struct {
	Path   string
	Reason string
}

func (e *IntakeError) Error() string {
	return fmt.Sprintf("video rejected: %s: %s", e.Path, e.Reason)
}

// TransientError marks an inference failure worth retrying: network
// errors, timeouts, rate-limit responses and 5xx-class failures.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient inference failure: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks an inference failure that retrying cannot fix:
// authentication, permanent quota exhaustion or a malformed request.
// When it happens on the very first call the whole run aborts.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent inference failure: " + e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsPermanent reports whether err is (or wraps) a PermanentError.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}
