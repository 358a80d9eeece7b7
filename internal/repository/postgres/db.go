package postgres

import (
	"context"
	"errors"
	"misikaMarket/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type txKey struct{}

// Transactor runs a function inside one database transaction. Repositories in
// this package pick the transaction up from the context.
type Transactor struct {
	DB *gorm.DB
}

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{DB: db}
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	return t.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// translateError maps driver errors onto the domain taxonomy.
func translateError(err error, resource string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewNotFoundError(resource)
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.NewDuplicateError(resource + " already exists")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return domain.NewDuplicateError(resource + " already exists")
		case "23503":
			return domain.NewValidationError("referenced " + resource + " does not exist")
		case "23514":
			return domain.NewBusinessError(resource + " violates a constraint")
		}
	}

	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}

	return domain.NewInternalError("database error", err)
}
