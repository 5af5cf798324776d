package users

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// CreateSchema creates the tables backing the package models. Safe to
// run on every startup; existing tables are left alone.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*User)(nil),
		(*AuthToken)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create schema")
		}
	}

	if _, err := db.NewCreateIndex().
		Model((*AuthToken)(nil)).
		Index("idx_auth_tokens_user_id").
		Column("user_id").
		IfNotExists().
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create token index")
	}

	return nil
}
