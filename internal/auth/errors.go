package auth

import "errors"

var (
	// ErrAuthenticationFailed is returned for bad directory credentials and
	// for any inner login-flow failure. The specific cause is wrapped so it
	// stays available for logging, but callers only see this error.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrInvalidState is returned when the SSO callback state does not match
	// the stored session state (possible CSRF or replay).
	ErrInvalidState = errors.New("invalid sso state")

	// ErrSsoProvider is returned for transport failures and non-2xx responses
	// from the SSO provider. No retry is attempted.
	ErrSsoProvider = errors.New("sso provider request failed")

	// ErrTokenNotFound is returned when no refresh token row matches the
	// presented value.
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrInvalidToken is returned when a refresh token exists but is expired.
	ErrInvalidToken = errors.New("refresh token is expired")

	// ErrRegistrationFailed is returned when the directory entry for a new
	// member could not be created.
	ErrRegistrationFailed = errors.New("registration failed")

	// ErrUserNotFound is returned when a character link targets an unknown user.
	ErrUserNotFound = errors.New("user not found")

	// ErrCharacterNotFound is returned when a character lookup yields no row.
	ErrCharacterNotFound = errors.New("character not found")
)
