// Package common provides shared constants, types, and utilities
// used across the Rig Panel application.
package common

import "errors"

// Sentinel errors for rig operations.
// These can be checked with errors.Is() for proper error handling.
var (
	// Rig server errors.
	ErrServerUnreachable = errors.New("rig server unreachable")
	ErrUnexpectedStatus  = errors.New("unexpected response from rig server")

	// Request parameter errors.
	ErrInvalidColor     = errors.New("invalid color")
	ErrUnknownStyle     = errors.New("unknown rgb style")
	ErrUnknownScene     = errors.New("unknown ambient scene")
	ErrInvalidEventType = errors.New("invalid lock event type")

	// Audio errors.
	ErrMuteQuery  = errors.New("failed to query mute state")
	ErrMuteToggle = errors.New("failed to toggle mute")

	// Host errors.
	ErrUnsupportedPlatform = errors.New("not supported on this platform")
	ErrAlreadyRunning      = errors.New("another instance is already running")

	// Configuration errors.
	ErrMissingServerURL = errors.New("rig server url is not configured")
	ErrConfigLoad       = errors.New("failed to load configuration")
	ErrConfigSave       = errors.New("failed to save configuration")

	// Credential errors.
	ErrCredentialsNotFound = errors.New("credentials not found")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
