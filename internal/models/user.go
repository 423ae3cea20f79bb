package models

import "time"

// User represents a registered user. PasswordDigest holds the deterministic
// digest of the user's password, never the plaintext.
type User struct {
	ID             int64
	Name           string
	Email          string
	PasswordDigest string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserInfo is the public projection of a user, safe to return to callers.
type UserInfo struct {
	ID    int64
	Name  string
	Email string
}

func (u *User) Info() UserInfo {
	return UserInfo{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}
