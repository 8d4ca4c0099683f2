package guard

import "errors"

var (
	// ErrInvalidConfig indicates the authenticator configuration is invalid.
	ErrInvalidConfig = errors.New("guard: invalid configuration")

	// ErrNilAuthenticator indicates a nil authenticator was used.
	ErrNilAuthenticator = errors.New("guard: authenticator is nil")

	// ErrClosed indicates the authenticator's secrets have been destroyed.
	ErrClosed = errors.New("guard: authenticator is closed")

	// ErrTimeUnavailable indicates authoritative time could not be obtained.
	ErrTimeUnavailable = errors.New("guard: server time unavailable")

	// ErrSignatureUnavailable indicates a confirmation signature could not be derived.
	ErrSignatureUnavailable = errors.New("guard: confirmation signature unavailable")

	// ErrInvalidConfirmation indicates a zero or otherwise unusable confirmation.
	ErrInvalidConfirmation = errors.New("guard: invalid confirmation")

	// ErrEmptyResponse indicates the service returned neither a result nor an error.
	ErrEmptyResponse = errors.New("guard: empty response from service")

	// ErrRejected indicates the service declined to resolve a confirmation.
	ErrRejected = errors.New("guard: confirmation rejected by service")
)
