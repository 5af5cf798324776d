package users

import (
	"context"
	"database/sql"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// AuthTokens is the persistence contract for session credentials.
type AuthTokens interface {
	Create(ctx context.Context, record *AuthToken) (*AuthToken, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *AuthToken) (*AuthToken, error)
	GetByToken(ctx context.Context, token string) (*AuthToken, error)
	DeleteByUser(ctx context.Context, userID int64) error
	DeleteByUserTx(ctx context.Context, tx bun.IDB, userID int64) error
}

type authTokensRepo struct {
	db *bun.DB
}

var _ AuthTokens = (*authTokensRepo)(nil)

// NewAuthTokensRepository builds the bun-backed AuthTokens repository.
func NewAuthTokensRepository(db *bun.DB) AuthTokens {
	return &authTokensRepo{db: db}
}

func (r *authTokensRepo) Create(ctx context.Context, record *AuthToken) (*AuthToken, error) {
	return r.CreateTx(ctx, r.db, record)
}

func (r *authTokensRepo) CreateTx(ctx context.Context, tx bun.IDB, record *AuthToken) (*AuthToken, error) {
	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist session token")
	}
	return record, nil
}

func (r *authTokensRepo) GetByToken(ctx context.Context, token string) (*AuthToken, error) {
	record := &AuthToken{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", token).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewRecordNotFound("token", token)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "session token lookup failed")
	}
	return record, nil
}

func (r *authTokensRepo) DeleteByUser(ctx context.Context, userID int64) error {
	return r.DeleteByUserTx(ctx, r.db, userID)
}

// DeleteByUserTx removes every session owned by userID. Ran in the same
// transaction as the owner delete so the cascade is atomic.
func (r *authTokensRepo) DeleteByUserTx(ctx context.Context, tx bun.IDB, userID int64) error {
	_, err := tx.NewDelete().
		Model((*AuthToken)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete session tokens")
	}
	return nil
}
