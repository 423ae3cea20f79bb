// Package cache implements the Redis-backed link cache. The cache is never
// the system of record: entries are best-effort copies with a TTL, and absence
// of a key always means "fall back to the store".
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shortlink-service/shortlink/internal/models"
)

var (
	// ErrCacheMiss is returned when no entry exists for the given link id.
	ErrCacheMiss = errors.New("cache miss")
	// ErrCorruptEntry is returned when a cached value cannot be deserialized.
	// Callers treat it the same as a miss.
	ErrCorruptEntry = errors.New("corrupt cache entry")
)

type linkEntry struct {
	ID          string     `json:"id"`
	UserID      int64      `json:"user_id"`
	RedirectURL string     `json:"redirect_url"`
	Label       string     `json:"label"`
	Views       int64      `json:"views"`
	CreatedAt   time.Time  `json:"created_at"`
	LastView    *time.Time `json:"last_view,omitempty"`
}

func toLinkEntry(link *models.Link) linkEntry {
	return linkEntry{
		ID:          link.ID.String(),
		UserID:      link.UserID,
		RedirectURL: link.RedirectURL,
		Label:       link.Label,
		Views:       link.Views,
		CreatedAt:   link.CreatedAt,
		LastView:    link.LastView,
	}
}

func (e *linkEntry) ToLink() *models.Link {
	return &models.Link{
		ID:          models.LinkID(e.ID),
		UserID:      e.UserID,
		RedirectURL: e.RedirectURL,
		Label:       e.Label,
		Views:       e.Views,
		CreatedAt:   e.CreatedAt,
		LastView:    e.LastView,
	}
}

// LinkCache stores serialized links keyed by their identifier's string form.
type LinkCache struct {
	client *redis.Client
}

func NewLinkCache(client *redis.Client) *LinkCache {
	return &LinkCache{
		client: client,
	}
}

func (c *LinkCache) Get(ctx context.Context, id models.LinkID) (*models.Link, error) {
	const op = "cache.LinkCache.Get"

	payload, err := c.client.Get(ctx, id.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%s: %w", op, ErrCacheMiss)
		}

		return nil, fmt.Errorf("%s: failed to get cache entry: %w", op, err)
	}

	entry := new(linkEntry)
	if err := json.Unmarshal(payload, entry); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrCorruptEntry, err)
	}

	return entry.ToLink(), nil
}

func (c *LinkCache) Set(ctx context.Context, link *models.Link, ttl time.Duration) error {
	const op = "cache.LinkCache.Set"

	payload, err := json.Marshal(toLinkEntry(link))
	if err != nil {
		return fmt.Errorf("%s: failed to serialize link: %w", op, err)
	}

	if err := c.client.Set(ctx, link.ID.String(), payload, ttl).Err(); err != nil {
		return fmt.Errorf("%s: failed to set cache entry: %w", op, err)
	}

	return nil
}
