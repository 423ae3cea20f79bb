package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shortlink-service/shortlink/internal/cache"
	"github.com/shortlink-service/shortlink/internal/models"
	"github.com/shortlink-service/shortlink/pkg/trx"
)

const (
	// defaultCacheTTL bounds how long a cached link may serve reads before
	// it expires and the store is consulted again.
	defaultCacheTTL = time.Hour
	// cachePopulateTimeout bounds the detached cache-population write so it
	// cannot leak when Redis is slow. It is independent of the request context.
	cachePopulateTimeout = 5 * time.Second
)

// LinkRepository defines the persistence operations the link service needs.
// Every call accepts a trx.Context so the service controls atomicity boundaries.
type LinkRepository interface {
	NextLinkID(ctx context.Context, tc trx.Context) (models.LinkID, error)
	Save(ctx context.Context, link *models.Link, tc trx.Context) error
	FindByID(ctx context.Context, id models.LinkID, tc trx.Context) (*models.Link, error)
	IncrementViews(ctx context.Context, id models.LinkID, tc trx.Context) error
	Delete(ctx context.Context, id models.LinkID, tc trx.Context) error
}

// LinkCache is the read-side cache for links. It is never the system of record.
type LinkCache interface {
	Get(ctx context.Context, id models.LinkID) (*models.Link, error)
	Set(ctx context.Context, link *models.Link, ttl time.Duration) error
}

// LinkService manages the lifecycle of shortened links.
type LinkService struct {
	repo     LinkRepository
	factory  trx.Factory
	cache    LinkCache
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewLinkService(repo LinkRepository, factory trx.Factory, linkCache LinkCache, cacheTTL time.Duration, logger *slog.Logger) *LinkService {
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}

	return &LinkService{
		repo:     repo,
		factory:  factory,
		cache:    linkCache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// CreateLink allocates a fresh link id and persists the link with a zero view
// count in a single transaction. A failing write rolls the whole transaction
// back, leaving no partial link behind.
func (s *LinkService) CreateLink(ctx context.Context, userID int64, redirectURL, label string) (models.LinkID, error) {
	const op = "service.LinkService.CreateLink"

	var link *models.Link

	err := s.factory.Begin(ctx, func(tc trx.Context) error {
		id, err := s.repo.NextLinkID(ctx, tc)
		if err != nil {
			return err
		}

		link = models.NewLink(id, userID, redirectURL, label)

		return s.repo.Save(ctx, link, tc)
	})
	if err != nil {
		return "", fmt.Errorf("%s: failed to create link: %w", op, err)
	}

	return link.ID, nil
}

// ViewLink resolves a link for redirecting and records the view. The read is
// cache-aside: a cache hit serves immediately, a miss falls back to the store
// and schedules an asynchronous cache population. The view-count increment is
// always written to the store inside the surrounding transaction, so the value
// returned to the caller may be one view behind the authoritative count.
func (s *LinkService) ViewLink(ctx context.Context, id models.LinkID) (*models.Link, error) {
	const op = "service.LinkService.ViewLink"

	var link *models.Link

	err := s.factory.Begin(ctx, func(tc trx.Context) error {
		var err error

		link, err = s.getAndCacheLink(ctx, id, tc)
		if err != nil {
			return err
		}

		return s.repo.IncrementViews(ctx, id, tc)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to view link: %w", op, err)
	}

	return link, nil
}

// getAndCacheLink probes the cache first. Any cache failure, including a
// corrupt entry, degrades to a miss: the store is read inside the caller's
// transaction and the cache is repopulated off the critical path.
func (s *LinkService) getAndCacheLink(ctx context.Context, id models.LinkID, tc trx.Context) (*models.Link, error) {
	link, err := s.cache.Get(ctx, id)
	if err == nil {
		return link, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("link cache read failed, falling back to store",
			slog.String("link_id", id.String()), slog.Any("err", err))
	}

	link, err = s.repo.FindByID(ctx, id, tc)
	if err != nil {
		return nil, err
	}

	s.populateCache(link)

	return link, nil
}

// populateCache writes the link to the cache in a detached goroutine. The
// caller never waits on it and failures are logged, never propagated.
func (s *LinkService) populateCache(link *models.Link) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cachePopulateTimeout)
		defer cancel()

		if err := s.cache.Set(ctx, link, s.cacheTTL); err != nil {
			s.logger.Warn("link cache population failed",
				slog.String("link_id", link.ID.String()), slog.Any("err", err))
		}
	}()
}

// GetLinkViews returns the authoritative view count straight from the store.
// It deliberately bypasses the cache: callers of this operation do not
// tolerate cache staleness.
func (s *LinkService) GetLinkViews(ctx context.Context, id models.LinkID) (int64, error) {
	const op = "service.LinkService.GetLinkViews"

	link, err := s.repo.FindByID(ctx, id, trx.Empty())
	if err != nil {
		return 0, fmt.Errorf("%s: failed to get link views: %w", op, err)
	}

	return link.Views, nil
}

// DeleteLink removes a link after verifying ownership, all inside one
// transaction. The cache entry is not invalidated; it expires with its TTL.
func (s *LinkService) DeleteLink(ctx context.Context, id models.LinkID, userID int64) error {
	const op = "service.LinkService.DeleteLink"

	err := s.factory.Begin(ctx, func(tc trx.Context) error {
		link, err := s.repo.FindByID(ctx, id, tc)
		if err != nil {
			return err
		}

		if link.UserID != userID {
			return fmt.Errorf("%w: link %s, user %d", ErrLinkNotOwned, id, userID)
		}

		return s.repo.Delete(ctx, id, tc)
	})
	if err != nil {
		return fmt.Errorf("%s: failed to delete link: %w", op, err)
	}

	return nil
}
