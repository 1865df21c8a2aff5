package store

import (
	"context"
	"errors"
	"time"

	"github.com/croftbay/accounts/internal/accounts/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Page selects a window of a listing. A Size of 0 means no limit.
type Page struct {
	Number int // zero-based
	Size   int
}

func (p Page) Offset() int {
	if p.Number <= 0 || p.Size <= 0 {
		return 0
	}
	return p.Number * p.Size
}

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. Sub-repositories keep concerns tidy and testable; the store
// is the only shared mutable state in the system and owns its own concurrency
// control.
type Store interface {
	Accounts() Accounts
	Authorities() Authorities

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back if fn returns an
	// error and committing otherwise. Lifecycle operations use this so each
	// read-modify-write lands on the store as one atomic update.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// GetByID returns an account by id, ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (domain.Account, error)

	// GetByLogin matches the login case-insensitively.
	GetByLogin(ctx context.Context, login string) (domain.Account, error)

	GetByEmail(ctx context.Context, email string) (domain.Account, error)

	// GetByActivationKey resolves a pending self-registration by its key.
	GetByActivationKey(ctx context.Context, key string) (domain.Account, error)

	// GetByResetKey resolves an outstanding password reset by its key.
	GetByResetKey(ctx context.Context, key string) (domain.Account, error)

	// ListByLoginNot returns accounts excluding the given login, in natural
	// (creation) order, windowed by page.
	ListByLoginNot(ctx context.Context, login string, page Page) ([]domain.Account, error)

	// ListUnactivatedCreatedBefore returns accounts that were never activated
	// and were created before the cutoff. Used by the stale-account sweep.
	ListUnactivatedCreatedBefore(ctx context.Context, cutoff time.Time) ([]domain.Account, error)

	// Create inserts a new account together with its authority set.
	Create(ctx context.Context, a domain.Account) error

	// Update overwrites the account row and replaces its authority set.
	Update(ctx context.Context, a domain.Account) error

	// Delete removes the account; authority links cascade.
	Delete(ctx context.Context, id string) error
}

type Authorities interface {
	// GetByName fetches an authority by name, ErrNotFound when absent.
	GetByName(ctx context.Context, name string) (domain.Authority, error)

	// ListAll returns all authorities in the system.
	ListAll(ctx context.Context) ([]domain.Authority, error)
}
