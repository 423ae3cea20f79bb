// Package postgres contains the PostgreSQL repositories. Every method accepts
// a trx.Context so callers control the atomicity boundary: calls made with an
// active context join that transaction, calls made with an empty context run in
// an ad-hoc transaction scoped to the single statement.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const uniqueViolationErrCode = "23505"

func isUniqueViolationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == uniqueViolationErrCode
}
