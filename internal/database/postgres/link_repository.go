package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shortlink-service/shortlink/internal/database"
	"github.com/shortlink-service/shortlink/internal/models"
	"github.com/shortlink-service/shortlink/pkg/trx"
)

type linkRecord struct {
	ID          string     `db:"id"`
	UserID      int64      `db:"user_id"`
	RedirectURL string     `db:"redirect_url"`
	Label       string     `db:"label"`
	Views       int64      `db:"views"`
	CreatedAt   time.Time  `db:"created_at"`
	LastView    *time.Time `db:"last_view"`
}

func (r *linkRecord) ToLink() *models.Link {
	return &models.Link{
		ID:          models.LinkID(r.ID),
		UserID:      r.UserID,
		RedirectURL: r.RedirectURL,
		Label:       r.Label,
		Views:       r.Views,
		CreatedAt:   r.CreatedAt,
		LastView:    r.LastView,
	}
}

type LinkRepository struct {
	factory trx.Factory
}

func NewLinkRepository(factory trx.Factory) *LinkRepository {
	return &LinkRepository{
		factory: factory,
	}
}

// NextLinkID allocates a fresh link identifier. The transaction context is
// accepted for interface uniformity; generation itself does not touch the store.
func (r *LinkRepository) NextLinkID(ctx context.Context, tc trx.Context) (models.LinkID, error) {
	const op = "database.postgres.LinkRepository.NextLinkID"

	_ = tc

	id, err := models.NewLinkID()
	if err != nil {
		return "", fmt.Errorf("%s: failed to generate link id: %w", op, err)
	}

	return id, nil
}

func (r *LinkRepository) Save(ctx context.Context, link *models.Link, tc trx.Context) error {
	const op = "database.postgres.LinkRepository.Save"

	h, release, err := r.factory.ExtractOrCreate(ctx, tc)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO links(id, user_id, redirect_url, label, views, created_at, last_view)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	doErr := h.Do(func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			link.ID.String(), link.UserID, link.RedirectURL, link.Label,
			link.Views, link.CreatedAt, link.LastView)
		return err
	})
	if err := release(doErr); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if doErr != nil {
		return fmt.Errorf("%s: failed to save link record: %w", op, doErr)
	}

	return nil
}

func (r *LinkRepository) FindByID(ctx context.Context, id models.LinkID, tc trx.Context) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.FindByID"

	h, release, err := r.factory.ExtractOrCreate(ctx, tc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rec := new(linkRecord)
	query := `SELECT id, user_id, redirect_url, label, views, created_at, last_view
		FROM links
		WHERE id = $1`

	doErr := h.Do(func(tx *sqlx.Tx) error {
		return tx.GetContext(ctx, rec, query, id.String())
	})
	if err := release(doErr); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if doErr != nil {
		if errors.Is(doErr, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get link record: %w", op, doErr)
	}

	return rec.ToLink(), nil
}

// IncrementViews bumps the view count and the last-view timestamp in a single
// atomic statement, so concurrent increments are never lost.
func (r *LinkRepository) IncrementViews(ctx context.Context, id models.LinkID, tc trx.Context) error {
	const op = "database.postgres.LinkRepository.IncrementViews"

	h, release, err := r.factory.ExtractOrCreate(ctx, tc)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE links
		SET views = views + 1, last_view = now()
		WHERE id = $1`

	doErr := h.Do(func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, query, id.String())
		if err != nil {
			return err
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return database.ErrLinkNotFound
		}

		return nil
	})
	if err := release(doErr); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if doErr != nil {
		return fmt.Errorf("%s: failed to increment link views: %w", op, doErr)
	}

	return nil
}

func (r *LinkRepository) Delete(ctx context.Context, id models.LinkID, tc trx.Context) error {
	const op = "database.postgres.LinkRepository.Delete"

	h, release, err := r.factory.ExtractOrCreate(ctx, tc)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `DELETE FROM links WHERE id = $1`

	doErr := h.Do(func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, query, id.String())
		if err != nil {
			return err
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return database.ErrLinkNotFound
		}

		return nil
	})
	if err := release(doErr); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if doErr != nil {
		return fmt.Errorf("%s: failed to delete link record: %w", op, doErr)
	}

	return nil
}
