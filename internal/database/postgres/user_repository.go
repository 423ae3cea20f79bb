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

type userRecord struct {
	ID             int64     `db:"id"`
	Name           string    `db:"name"`
	Email          string    `db:"email"`
	PasswordDigest string    `db:"password_digest"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (r *userRecord) ToUser() *models.User {
	return &models.User{
		ID:             r.ID,
		Name:           r.Name,
		Email:          r.Email,
		PasswordDigest: r.PasswordDigest,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type UserRepository struct {
	factory trx.Factory
}

func NewUserRepository(factory trx.Factory) *UserRepository {
	return &UserRepository{
		factory: factory,
	}
}

func (r *UserRepository) Save(ctx context.Context, user *models.User, tc trx.Context) (int64, error) {
	const op = "database.postgres.UserRepository.Save"

	h, release, err := r.factory.ExtractOrCreate(ctx, tc)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var id int64
	query := `INSERT INTO users(name, email, password_digest)
		VALUES ($1, $2, $3)
		RETURNING id`

	doErr := h.Do(func(tx *sqlx.Tx) error {
		return tx.GetContext(ctx, &id, query, user.Name, user.Email, user.PasswordDigest)
	})
	if err := release(doErr); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if doErr != nil {
		if isUniqueViolationError(doErr) {
			return 0, fmt.Errorf("%s: %w", op, database.ErrUserExists)
		}

		return 0, fmt.Errorf("%s: failed to save user record: %w", op, doErr)
	}

	return id, nil
}

func (r *UserRepository) Update(ctx context.Context, user *models.User, tc trx.Context) error {
	const op = "database.postgres.UserRepository.Update"

	h, release, err := r.factory.ExtractOrCreate(ctx, tc)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE users
		SET name = $1, updated_at = now()
		WHERE id = $2`

	doErr := h.Do(func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, query, user.Name, user.ID)
		if err != nil {
			return err
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return database.ErrUserNotFound
		}

		return nil
	})
	if err := release(doErr); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if doErr != nil {
		return fmt.Errorf("%s: failed to update user record: %w", op, doErr)
	}

	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64, tc trx.Context) (*models.User, error) {
	const op = "database.postgres.UserRepository.FindByID"

	query := `SELECT id, name, email, password_digest, created_at, updated_at
		FROM users
		WHERE id = $1`

	return r.findOne(ctx, op, tc, query, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string, tc trx.Context) (*models.User, error) {
	const op = "database.postgres.UserRepository.FindByEmail"

	query := `SELECT id, name, email, password_digest, created_at, updated_at
		FROM users
		WHERE email = $1`

	return r.findOne(ctx, op, tc, query, email)
}

// FindByCredentials looks up a user by email and password digest. The digest
// comparison happens in the store, mirroring the login check.
func (r *UserRepository) FindByCredentials(ctx context.Context, email, passwordDigest string, tc trx.Context) (*models.User, error) {
	const op = "database.postgres.UserRepository.FindByCredentials"

	query := `SELECT id, name, email, password_digest, created_at, updated_at
		FROM users
		WHERE email = $1 AND password_digest = $2`

	return r.findOne(ctx, op, tc, query, email, passwordDigest)
}

func (r *UserRepository) findOne(ctx context.Context, op string, tc trx.Context, query string, args ...any) (*models.User, error) {
	h, release, err := r.factory.ExtractOrCreate(ctx, tc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rec := new(userRecord)

	doErr := h.Do(func(tx *sqlx.Tx) error {
		return tx.GetContext(ctx, rec, query, args...)
	})
	if err := release(doErr); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if doErr != nil {
		if errors.Is(doErr, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get user record: %w", op, doErr)
	}

	return rec.ToUser(), nil
}
