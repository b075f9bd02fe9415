package admin_repo

import (
	"context"
	"errors"

	"powerrush_backend/internal/repository"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	table           = "admin_credentials"
	colID           = "id"
	colPasswordHash = "password_hash"
	colUpdatedAt    = "updated_at"

	adminRowID = 1
)

type repo struct {
	dbc    *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewAdminRepository(dbc *pgxpool.Pool) repository.AdminRepository {
	return &repo{
		dbc:    dbc,
		getter: trmpgx.DefaultCtxGetter,
	}
}

// GetPasswordHash - bcrypt-хэш пароля администратора
func (r *repo) GetPasswordHash(ctx context.Context) (string, error) {
	sqlStr, args, err := sq.Select(colPasswordHash).
		From(table).
		Where(sq.Eq{colID: adminRowID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return "", err
	}

	var hash string
	err = r.getter.DefaultTrOrDB(ctx, r.dbc).QueryRow(ctx, sqlStr, args...).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", err
	}

	return hash, nil
}

// SetPasswordHash - сохраняет новый хэш пароля
func (r *repo) SetPasswordHash(ctx context.Context, hash string) error {
	sqlStr, args, err := sq.Insert(table).
		Columns(colID, colPasswordHash).
		Values(adminRowID, hash).
		Suffix("ON CONFLICT (" + colID + ") DO UPDATE SET " +
			colPasswordHash + " = EXCLUDED." + colPasswordHash + ", " +
			colUpdatedAt + " = now()").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.getter.DefaultTrOrDB(ctx, r.dbc).Exec(ctx, sqlStr, args...)
	return err
}
