package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Validate() error
	Users() Users
	AuthTokens() AuthTokens
}

type mngr struct {
	db         *bun.DB
	users      Users
	authTokens AuthTokens
}

// NewRepositoryManager wires the repositories over a single DB handle.
// The handle is constructed once at startup and injected; nothing here
// re-opens connections mid-request.
func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:         db,
		users:      NewUsersRepository(db),
		authTokens: NewAuthTokensRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.authTokens == nil {
		return errors.New("repository authTokens should be initialized")
	}

	return nil
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) AuthTokens() AuthTokens {
	return m.authTokens
}
