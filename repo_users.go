package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// ActivateAccountSQL consumes the activation token and flips the
// account active in a single statement so the two-field invariant is
// never observable half-applied.
var ActivateAccountSQL = `UPDATE "users" AS "usr"
SET
	"inactive" = FALSE,
	"activation_token" = NULL,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."id" = ?;`

var ResetLoginAttemptsSQL = `UPDATE "users" AS "usr"
SET
	"login_attempts" = 0,
	"login_attempt_at" = NULL
WHERE
	"usr"."id" = ?;`

// Users is the persistence contract for account records.
type Users interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetActiveByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*User, error)
	GetByActivationToken(ctx context.Context, token string) (*User, error)
	GetByActivationTokenTx(ctx context.Context, tx bun.IDB, token string) (*User, error)

	Create(ctx context.Context, record *User) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)
	Update(ctx context.Context, record *User, columns ...string) (*User, error)
	UpdateTx(ctx context.Context, tx bun.IDB, record *User, columns ...string) (*User, error)
	Delete(ctx context.Context, id int64) error
	DeleteTx(ctx context.Context, tx bun.IDB, id int64) error

	ActivateTx(ctx context.Context, tx bun.IDB, record *User) error
	ListActivePage(ctx context.Context, offset, limit int, excludeID int64) ([]*User, int, error)

	TrackAttemptedLogin(ctx context.Context, record *User) error
	TrackSuccessfulLogin(ctx context.Context, record *User) error
}

type usersRepo struct {
	db *bun.DB
}

var _ Users = (*usersRepo)(nil)

// NewUsersRepository builds the bun-backed Users repository.
func NewUsersRepository(db *bun.DB) Users {
	return &usersRepo{db: db}
}

func (r *usersRepo) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.getOne(ctx, r.db, "id", id)
}

func (r *usersRepo) GetActiveByID(ctx context.Context, id int64) (*User, error) {
	record := &User{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.inactive = ?", false).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapLookupError(err, "id", id)
	}
	return record, nil
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.GetByEmailTx(ctx, r.db, email)
}

func (r *usersRepo) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	return r.getOne(ctx, tx, "email", email)
}

func (r *usersRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.GetByUsernameTx(ctx, r.db, username)
}

func (r *usersRepo) GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*User, error) {
	return r.getOne(ctx, tx, "username", username)
}

func (r *usersRepo) GetByActivationToken(ctx context.Context, token string) (*User, error) {
	return r.GetByActivationTokenTx(ctx, r.db, token)
}

func (r *usersRepo) GetByActivationTokenTx(ctx context.Context, tx bun.IDB, token string) (*User, error) {
	return r.getOne(ctx, tx, "activation_token", token)
}

func (r *usersRepo) getOne(ctx context.Context, tx bun.IDB, column string, value any) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where(fmt.Sprintf("?TableAlias.%s = ?", column), value).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapLookupError(err, column, value)
	}
	return record, nil
}

func (r *usersRepo) Create(ctx context.Context, record *User) (*User, error) {
	return r.CreateTx(ctx, r.db, record)
}

func (r *usersRepo) CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	prepareUserDefaults(record)
	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, mapUniqueViolation(err, record)
	}
	return record, nil
}

func (r *usersRepo) Update(ctx context.Context, record *User, columns ...string) (*User, error) {
	return r.UpdateTx(ctx, r.db, record, columns...)
}

func (r *usersRepo) UpdateTx(ctx context.Context, tx bun.IDB, record *User, columns ...string) (*User, error) {
	record.UpdatedAt = time.Now()
	columns = append(columns, "updated_at")

	res, err := tx.NewUpdate().
		Model(record).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, mapUniqueViolation(err, record)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, NewRecordNotFound("id", record.ID)
	}
	return record, nil
}

func (r *usersRepo) Delete(ctx context.Context, id int64) error {
	return r.DeleteTx(ctx, r.db, id)
}

func (r *usersRepo) DeleteTx(ctx context.Context, tx bun.IDB, id int64) error {
	res, err := tx.NewDelete().
		Model((*User)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete user")
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return NewRecordNotFound("id", id)
	}
	return nil
}

func (r *usersRepo) ActivateTx(ctx context.Context, tx bun.IDB, record *User) error {
	if _, err := tx.NewRaw(ActivateAccountSQL, record.ID).Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to activate account")
	}
	record.Activate()
	return nil
}

func (r *usersRepo) ListActivePage(ctx context.Context, offset, limit int, excludeID int64) ([]*User, int, error) {
	var records []*User

	q := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.inactive = ?", false)

	if excludeID > 0 {
		q = q.Where("?TableAlias.id != ?", excludeID)
	}

	total, err := q.
		Order("usr.id ASC").
		Offset(offset).
		Limit(limit).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list users")
	}

	return records, total, nil
}

func (r *usersRepo) TrackAttemptedLogin(ctx context.Context, record *User) error {
	now := time.Now()
	record.LoginAttempts++
	record.LoginAttemptAt = &now

	_, err := r.db.NewUpdate().
		Model(record).
		Column("login_attempts", "login_attempt_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to track login attempt")
	}
	return nil
}

func (r *usersRepo) TrackSuccessfulLogin(ctx context.Context, record *User) error {
	if _, err := r.db.NewRaw(ResetLoginAttemptsSQL, record.ID).Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to reset login attempts")
	}
	record.LoginAttempts = 0
	record.LoginAttemptAt = nil
	return nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}
	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = now
	}
}

func wrapLookupError(err error, column string, value any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return NewRecordNotFound(column, value)
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "user lookup failed")
}
