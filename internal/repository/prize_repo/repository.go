package prize_repo

import (
	"context"

	"powerrush_backend/internal/model"
	"powerrush_backend/internal/repository"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	table         = "prize_history"
	colNumber     = "number"
	colAwardedAt  = "awarded_at"
	colWinnerName = "winner_name"
	colGameLogID  = "game_log_id"
)

type repo struct {
	dbc    *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewPrizeRepository(dbc *pgxpool.Pool) repository.PrizeRepository {
	return &repo{
		dbc:    dbc,
		getter: trmpgx.DefaultCtxGetter,
	}
}

// List - история выдачи номеров, последние выдачи первыми
func (r *repo) List(ctx context.Context) ([]model.PrizeHistoryEntry, error) {
	sqlStr, args, err := sq.Select(colNumber, colAwardedAt, colWinnerName, colGameLogID).
		From(table).
		OrderBy(colAwardedAt+" DESC", colNumber+" DESC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.getter.DefaultTrOrDB(ctx, r.dbc).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]model.PrizeHistoryEntry, 0)
	for rows.Next() {
		var e model.PrizeHistoryEntry
		if err := rows.Scan(&e.Number, &e.Timestamp, &e.WinnerName, &e.GameLogID); err != nil {
			return nil, err
		}
		history = append(history, e)
	}

	return history, rows.Err()
}

// Add - записывает выданный номер. Повтор номера отклоняется первичным ключом
func (r *repo) Add(ctx context.Context, e model.PrizeHistoryEntry) error {
	sqlStr, args, err := sq.Insert(table).
		Columns(colNumber, colAwardedAt, colWinnerName, colGameLogID).
		Values(e.Number, e.Timestamp, e.WinnerName, e.GameLogID).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.getter.DefaultTrOrDB(ctx, r.dbc).Exec(ctx, sqlStr, args...)
	return err
}

// ReplaceAll - заменяет историю целиком.
// Вызывать внутри транзакции, иначе читатель может увидеть пустую историю
func (r *repo) ReplaceAll(ctx context.Context, entries []model.PrizeHistoryEntry) error {
	conn := r.getter.DefaultTrOrDB(ctx, r.dbc)

	sqlStr, args, err := sq.Delete(table).PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return err
	}
	if _, err = conn.Exec(ctx, sqlStr, args...); err != nil {
		return err
	}

	if len(entries) == 0 {
		return nil
	}

	query := sq.Insert(table).
		Columns(colNumber, colAwardedAt, colWinnerName, colGameLogID).
		PlaceholderFormat(sq.Dollar)
	for _, e := range entries {
		query = query.Values(e.Number, e.Timestamp, e.WinnerName, e.GameLogID)
	}

	sqlStr, args, err = query.ToSql()
	if err != nil {
		return err
	}

	_, err = conn.Exec(ctx, sqlStr, args...)
	return err
}
