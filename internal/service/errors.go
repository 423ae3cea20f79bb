// Package service contains the domain services. They orchestrate transactions
// via the trx factory, apply business invariants, and for link reads consult
// the cache before the repository.
package service

import "errors"

var (
	// ErrLinkNotOwned is returned when a mutation is attempted by a user
	// that does not own the link.
	ErrLinkNotOwned = errors.New("link not owned by user")
	// ErrInvalidCredentials is returned when no user matches the given
	// email and password digest.
	ErrInvalidCredentials = errors.New("incorrect email or password")
)
