// Package database defines the store-level error conditions shared by all
// repository implementations.
package database

import "errors"

var (
	// ErrLinkNotFound is returned when no link exists for the given identifier.
	ErrLinkNotFound = errors.New("link not found")
	// ErrUserNotFound is returned when no user exists for the given identifier or email.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when an attempt is made to register
	// a user with an email that is already taken.
	ErrUserExists = errors.New("user already exists")
)
