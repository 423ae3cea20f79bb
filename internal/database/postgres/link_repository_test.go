package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/shortlink-service/shortlink/internal/database"
	"github.com/shortlink-service/shortlink/internal/models"
	"github.com/shortlink-service/shortlink/pkg/trx"
)

var errUnknown = errors.New("unknown error")

var linkColumns = []string{"id", "user_id", "redirect_url", "label", "views", "created_at", "last_view"}

func setupLinkRepository(t testing.TB) (*LinkRepository, sqlmock.Sqlmock, trx.Factory) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}

	db := sqlx.NewDb(mockDB, "sqlmock")
	factory := trx.NewSqlxFactory(db)
	repo := NewLinkRepository(factory)

	t.Cleanup(func() {
		mockDB.Close()
		db.Close()
	})

	return repo, mock, factory
}

func TestLinkRepository_NextLinkID(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, _ := setupLinkRepository(t)

		id, err := repo.NextLinkID(context.TODO(), trx.Empty())

		assert.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9_-]{4}$`), id.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLinkRepository_Save(t *testing.T) {
	link := models.NewLink("abcd", 42, "https://example.com", "docs")

	t.Run("unknown error", func(t *testing.T) {
		repo, mock, _ := setupLinkRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO links`).
			WithArgs("abcd", int64(42), "https://example.com", "docs", int64(0), sqlmock.AnyArg(), nil).
			WillReturnError(errUnknown)
		mock.ExpectRollback()

		err := repo.Save(context.TODO(), link, trx.Empty())

		assert.Error(t, err)
		assert.ErrorIs(t, err, errUnknown)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock, _ := setupLinkRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO links`).
			WithArgs("abcd", int64(42), "https://example.com", "docs", int64(0), sqlmock.AnyArg(), nil).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Save(context.TODO(), link, trx.Empty())

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("joins active transaction", func(t *testing.T) {
		repo, mock, factory := setupLinkRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO links`).
			WithArgs("abcd", int64(42), "https://example.com", "docs", int64(0), sqlmock.AnyArg(), nil).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := factory.Begin(context.TODO(), func(tc trx.Context) error {
			return repo.Save(context.TODO(), link, tc)
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLinkRepository_FindByID(t *testing.T) {
	t.Run("link not found", func(t *testing.T) {
		repo, mock, _ := setupLinkRepository(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM links`).
			WithArgs("abcd").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		link, err := repo.FindByID(context.TODO(), "abcd", trx.Empty())

		assert.Error(t, err)
		assert.ErrorIs(t, err, database.ErrLinkNotFound)
		assert.Nil(t, link)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown error", func(t *testing.T) {
		repo, mock, _ := setupLinkRepository(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM links`).
			WithArgs("abcd").
			WillReturnError(errUnknown)
		mock.ExpectRollback()

		link, err := repo.FindByID(context.TODO(), "abcd", trx.Empty())

		assert.Error(t, err)
		assert.ErrorIs(t, err, errUnknown)
		assert.Nil(t, link)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock, _ := setupLinkRepository(t)

		now := time.Now().UTC()
		rows := sqlmock.NewRows(linkColumns).
			AddRow("abcd", int64(42), "https://example.com", "docs", int64(7), now, nil)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM links`).
			WithArgs("abcd").
			WillReturnRows(rows)
		mock.ExpectCommit()

		link, err := repo.FindByID(context.TODO(), "abcd", trx.Empty())

		assert.NoError(t, err)
		assert.NotNil(t, link)
		assert.Equal(t, models.LinkID("abcd"), link.ID)
		assert.Equal(t, int64(42), link.UserID)
		assert.Equal(t, "https://example.com", link.RedirectURL)
		assert.Equal(t, "docs", link.Label)
		assert.Equal(t, int64(7), link.Views)
		assert.Nil(t, link.LastView)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLinkRepository_IncrementViews(t *testing.T) {
	t.Run("link not found", func(t *testing.T) {
		repo, mock, _ := setupLinkRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE links`).
			WithArgs("abcd").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.IncrementViews(context.TODO(), "abcd", trx.Empty())

		assert.Error(t, err)
		assert.ErrorIs(t, err, database.ErrLinkNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown error", func(t *testing.T) {
		repo, mock, _ := setupLinkRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE links`).
			WithArgs("abcd").
			WillReturnError(errUnknown)
		mock.ExpectRollback()

		err := repo.IncrementViews(context.TODO(), "abcd", trx.Empty())

		assert.Error(t, err)
		assert.ErrorIs(t, err, errUnknown)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock, _ := setupLinkRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE links`).
			WithArgs("abcd").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.IncrementViews(context.TODO(), "abcd", trx.Empty())

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLinkRepository_Delete(t *testing.T) {
	t.Run("link not found", func(t *testing.T) {
		repo, mock, _ := setupLinkRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM links`).
			WithArgs("abcd").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Delete(context.TODO(), "abcd", trx.Empty())

		assert.Error(t, err)
		assert.ErrorIs(t, err, database.ErrLinkNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock, _ := setupLinkRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM links`).
			WithArgs("abcd").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Delete(context.TODO(), "abcd", trx.Empty())

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
