package discord

import "errors"

var (
	// ErrInvalidConfig is returned when the client configuration is incomplete
	ErrInvalidConfig = errors.New("invalid discord client configuration")

	// ErrExchangeFailed is returned when the authorization code exchange fails
	ErrExchangeFailed = errors.New("authorization code exchange failed")

	// ErrUserFetchFailed is returned when the user lookup fails
	ErrUserFetchFailed = errors.New("failed to fetch discord user")

	// ErrUnauthorized is returned when Discord rejects the supplied token
	ErrUnauthorized = errors.New("unauthorized: discord token rejected")
)
