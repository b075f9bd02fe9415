package gamelog_repo

import (
	"context"

	"powerrush_backend/internal/model"
	"powerrush_backend/internal/repository"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	table              = "game_logs"
	colID              = "id"
	colPlayerName      = "player_name"
	colDeviceID        = "device_id"
	colResult          = "result"
	colPrizeNumber     = "prize_number"
	colBatteryLevel    = "battery_level"
	colDurationSeconds = "duration_seconds"
	colCreatedAt       = "created_at"
)

var columns = []string{
	colID, colPlayerName, colDeviceID, colResult, colPrizeNumber,
	colBatteryLevel, colDurationSeconds, colCreatedAt,
}

type repo struct {
	dbc    *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewGameLogRepository(dbc *pgxpool.Pool) repository.GameLogRepository {
	return &repo{
		dbc:    dbc,
		getter: trmpgx.DefaultCtxGetter,
	}
}

// Append - добавляет запись о раунде
func (r *repo) Append(ctx context.Context, e model.GameLogEntry) error {
	return r.AppendMany(ctx, []model.GameLogEntry{e})
}

// AppendMany - добавляет записи одним запросом, дубликаты по id пропускаются
func (r *repo) AppendMany(ctx context.Context, entries []model.GameLogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := sq.Insert(table).
		Columns(columns...).
		Suffix("ON CONFLICT (" + colID + ") DO NOTHING").
		PlaceholderFormat(sq.Dollar)
	for _, e := range entries {
		query = query.Values(
			e.ID, e.PlayerName, e.DeviceID, string(e.Result), e.PrizeNumber,
			e.BatteryLevel, e.DurationSeconds, e.Timestamp,
		)
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.getter.DefaultTrOrDB(ctx, r.dbc).Exec(ctx, sqlStr, args...)
	return err
}

// List - журнал раундов, новые первыми.
// При непустом deviceID возвращаются только раунды этого устройства
func (r *repo) List(ctx context.Context, deviceID string) ([]model.GameLogEntry, error) {
	query := sq.Select(columns...).
		From(table).
		OrderBy(colCreatedAt + " DESC").
		PlaceholderFormat(sq.Dollar)
	if deviceID != "" {
		query = query.Where(sq.Eq{colDeviceID: deviceID})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.getter.DefaultTrOrDB(ctx, r.dbc).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]model.GameLogEntry, 0)
	for rows.Next() {
		var (
			e      model.GameLogEntry
			result string
		)
		err := rows.Scan(
			&e.ID, &e.PlayerName, &e.DeviceID, &result, &e.PrizeNumber,
			&e.BatteryLevel, &e.DurationSeconds, &e.Timestamp,
		)
		if err != nil {
			return nil, err
		}
		e.Result = model.GameResult(result)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Clear - удаляет весь журнал
func (r *repo) Clear(ctx context.Context) error {
	sqlStr, args, err := sq.Delete(table).PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return err
	}

	_, err = r.getter.DefaultTrOrDB(ctx, r.dbc).Exec(ctx, sqlStr, args...)
	return err
}
