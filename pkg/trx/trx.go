// Package trx implements the transactional unit-of-work abstraction used by the
// persistence layer. A Context value is threaded through every repository call
// and marks whether the call joins an already active transaction or runs as a
// standalone statement. A Factory opens transactions, runs units of work against
// them and guarantees that each transaction settles exactly once: committed on
// success, rolled back on failure.
package trx

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
)

var (
	// ErrUnavailable is returned when the underlying store cannot open a transaction.
	ErrUnavailable = errors.New("transaction factory unavailable")
	// ErrTxSettled is returned when a handle is used after it has been committed or rolled back.
	ErrTxSettled = errors.New("transaction already settled")
)

// Context carries an optional active transaction through persistence calls.
// The zero value is the empty context: repository calls made with it operate
// in their own ad-hoc transactions.
type Context struct {
	handle *Handle
}

// Empty returns a context with no active transaction.
func Empty() Context {
	return Context{}
}

// Active returns a context that joins the transaction owned by h.
func Active(h *Handle) Context {
	return Context{handle: h}
}

// Handle returns the active transaction handle. Callers must branch on ok and
// handle the empty case explicitly.
func (c Context) Handle() (*Handle, bool) {
	return c.handle, c.handle != nil
}

// Handle wraps a single live transaction. A handle is reference-shared by all
// repository calls nested under one Begin, so access to the underlying
// transaction is serialized by a mutex. A handle settles at most once; any use
// after settling fails with ErrTxSettled.
type Handle struct {
	mu      sync.Mutex
	tx      *sqlx.Tx
	settled bool
}

func newHandle(tx *sqlx.Tx) *Handle {
	return &Handle{tx: tx}
}

// Do runs fn with exclusive access to the transaction.
func (h *Handle) Do(fn func(tx *sqlx.Tx) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.settled {
		return ErrTxSettled
	}

	return fn(h.tx)
}

func (h *Handle) commit() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.settled {
		return ErrTxSettled
	}
	h.settled = true

	return h.tx.Commit()
}

// rollback is idempotent: rolling back an already settled handle is a no-op,
// so every exit path of Begin may call it safely.
func (h *Handle) rollback() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.settled {
		return nil
	}
	h.settled = true

	return h.tx.Rollback()
}

// Release settles an ad-hoc transaction opened by ExtractOrCreate: it commits
// when the operation error is nil and rolls back otherwise. For a joined
// transaction it is a no-op, since the surrounding Begin owns the settle.
type Release func(opErr error) error

// Factory opens transactions and composes nested repository calls into one
// logical unit of work.
type Factory interface {
	// Begin opens a transaction, invokes work with a context wrapping it, and
	// commits on a nil result or rolls back and propagates the error unchanged.
	Begin(ctx context.Context, work func(tc Context) error) error

	// ExtractOrCreate returns the handle of an active transaction carried by tc,
	// or opens an ad-hoc transaction scoped to a single call when tc is empty.
	ExtractOrCreate(ctx context.Context, tc Context) (*Handle, Release, error)
}

// SqlxFactory is the production Factory over a sqlx connection pool.
type SqlxFactory struct {
	db *sqlx.DB
}

func NewSqlxFactory(db *sqlx.DB) *SqlxFactory {
	return &SqlxFactory{db: db}
}

func (f *SqlxFactory) open(ctx context.Context) (*Handle, error) {
	tx, err := f.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return newHandle(tx), nil
}

// Begin implements Factory. The transaction settles on every exit path,
// including panics raised by work, which are re-raised after rollback.
func (f *SqlxFactory) Begin(ctx context.Context, work func(tc Context) error) error {
	const op = "trx.SqlxFactory.Begin"

	h, err := f.open(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = h.rollback()
			panic(r)
		}
	}()

	if err := work(Active(h)); err != nil {
		if rbErr := h.rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("%s: failed to rollback transaction: %w", op, rbErr))
		}

		return err
	}

	if err := h.commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return nil
}

// ExtractOrCreate implements Factory.
func (f *SqlxFactory) ExtractOrCreate(ctx context.Context, tc Context) (*Handle, Release, error) {
	const op = "trx.SqlxFactory.ExtractOrCreate"

	if h, ok := tc.Handle(); ok {
		return h, func(error) error { return nil }, nil
	}

	h, err := f.open(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	release := func(opErr error) error {
		if opErr != nil {
			if err := h.rollback(); err != nil {
				return fmt.Errorf("%s: failed to rollback transaction: %w", op, err)
			}

			return nil
		}

		if err := h.commit(); err != nil {
			return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
		}

		return nil
	}

	return h, release, nil
}
