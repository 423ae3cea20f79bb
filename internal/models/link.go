// Package models defines the entities of the shortlink service: links, their
// identifiers and users.
package models

import (
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// linkIDLength is the length of generated link identifiers.
const linkIDLength = 4

// LinkID is the opaque identifier of a shortened link. It is generated
// exclusively by NewLinkID and never supplied by clients at creation time.
// Its string form is used verbatim as the cache key.
type LinkID string

// NewLinkID generates a random link identifier.
func NewLinkID() (LinkID, error) {
	id, err := gonanoid.New(linkIDLength)
	if err != nil {
		return "", err
	}

	return LinkID(id), nil
}

func (id LinkID) String() string {
	return string(id)
}

// Link represents a shortened link owned by a user.
type Link struct {
	// ID is the short identifier the link is addressed by.
	ID LinkID
	// UserID is the identifier of the owning user. It is immutable after creation.
	UserID int64
	// RedirectURL is the target the link redirects to.
	RedirectURL string
	// Label is an optional human-readable name for the link.
	Label string
	// Views is the number of times the link has been viewed. It only increases.
	Views int64
	// CreatedAt is the timestamp indicating when the link was created.
	CreatedAt time.Time
	// LastView is the timestamp of the most recent view, nil until the first view.
	LastView *time.Time
}

// NewLink constructs a fresh link with a zero view count.
func NewLink(id LinkID, userID int64, redirectURL, label string) *Link {
	return &Link{
		ID:          id,
		UserID:      userID,
		RedirectURL: redirectURL,
		Label:       label,
		CreatedAt:   time.Now().UTC(),
	}
}
