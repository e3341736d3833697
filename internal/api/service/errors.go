package service

import "errors"

// Service-level failures. Controllers map these onto HTTP status codes.
var (
	// ErrUsernameTaken is returned when the username (or email) is already
	// registered.
	ErrUsernameTaken = errors.New("username already registered")

	// ErrInvalidCredentials is returned for both an unknown username and a
	// wrong password, so responses leak nothing about which usernames exist.
	ErrInvalidCredentials = errors.New("incorrect username or password")

	// ErrMovementNotFound covers both absent movements and movements owned
	// by someone else.
	ErrMovementNotFound = errors.New("movement not found")

	// ErrInvalidDateRange is returned when start_date is after end_date.
	ErrInvalidDateRange = errors.New("start_date cannot be after end_date")
)
