package settings_repo

import (
	"context"
	"errors"

	"powerrush_backend/internal/model"
	"powerrush_backend/internal/repository"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	table                  = "game_settings"
	colID                  = "id"
	colDuration            = "duration"
	colHoursEnabled        = "hours_enabled"
	colHoursStart          = "hours_start"
	colHoursEnd            = "hours_end"
	colDifficulty          = "difficulty"
	colAutoDifficulty      = "auto_difficulty"
	colAutoDifficultyMax   = "auto_difficulty_max"
	colTotalPrizes         = "total_prizes"
	colRemainingPrizes     = "remaining_prizes"
	colPrizeNumbersEnabled = "prize_numbers_enabled"
	colUniqueNames         = "unique_names"
	colMaxPlays            = "max_plays"
	colMaxWins             = "max_wins"
	colWhitelist           = "whitelist"
	colUpdatedAt           = "updated_at"

	// settingsRowID Настройки хранятся одной строкой
	settingsRowID = 1
)

var columns = []string{
	colDuration, colHoursEnabled, colHoursStart, colHoursEnd,
	colDifficulty, colAutoDifficulty, colAutoDifficultyMax,
	colTotalPrizes, colRemainingPrizes, colPrizeNumbersEnabled,
	colUniqueNames, colMaxPlays, colMaxWins, colWhitelist,
}

type repo struct {
	dbc    *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewSettingsRepository(dbc *pgxpool.Pool) repository.SettingsRepository {
	return &repo{
		dbc:    dbc,
		getter: trmpgx.DefaultCtxGetter,
	}
}

// Get - возвращает текущие настройки.
// Если строки еще нет, возвращает repository.ErrNotFound
func (r *repo) Get(ctx context.Context) (model.Settings, error) {
	return r.get(ctx, sq.Select(columns...))
}

// GetForUpdate - то же, что Get, но с блокировкой строки.
// Используется при выдаче приза, чтобы два выигрыша не получили один номер
func (r *repo) GetForUpdate(ctx context.Context) (model.Settings, error) {
	return r.get(ctx, sq.Select(columns...).Suffix("FOR UPDATE"))
}

func (r *repo) get(ctx context.Context, query sq.SelectBuilder) (model.Settings, error) {
	sqlStr, args, err := query.
		From(table).
		Where(sq.Eq{colID: settingsRowID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return model.Settings{}, err
	}

	var s model.Settings
	err = r.getter.DefaultTrOrDB(ctx, r.dbc).QueryRow(ctx, sqlStr, args...).Scan(
		&s.Duration,
		&s.OperatingHours.Enabled,
		&s.OperatingHours.Start,
		&s.OperatingHours.End,
		&s.DifficultyMultiplier,
		&s.AutoDifficultyEnabled,
		&s.AutoDifficultyMaxLimit,
		&s.TotalPrizes,
		&s.RemainingPrizes,
		&s.PrizeNumbersEnabled,
		&s.UniqueNames,
		&s.Rules.MaxPlaysPerDevice,
		&s.Rules.MaxWinsPerDevice,
		&s.Rules.WhitelistedDevices,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Settings{}, repository.ErrNotFound
		}
		return model.Settings{}, err
	}

	return s, nil
}

// Save - записывает настройки, создавая строку при первом сохранении
func (r *repo) Save(ctx context.Context, s model.Settings) error {
	names := s.UniqueNames
	if names == nil {
		names = []string{}
	}
	whitelist := s.Rules.WhitelistedDevices
	if whitelist == nil {
		whitelist = []string{}
	}

	query := sq.Insert(table).
		Columns(append([]string{colID}, columns...)...).
		Values(
			settingsRowID,
			s.Duration,
			s.OperatingHours.Enabled,
			s.OperatingHours.Start,
			s.OperatingHours.End,
			s.DifficultyMultiplier,
			s.AutoDifficultyEnabled,
			s.AutoDifficultyMaxLimit,
			s.TotalPrizes,
			s.RemainingPrizes,
			s.PrizeNumbersEnabled,
			names,
			s.Rules.MaxPlaysPerDevice,
			s.Rules.MaxWinsPerDevice,
			whitelist,
		).
		Suffix(upsertSuffix()).
		PlaceholderFormat(sq.Dollar)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.getter.DefaultTrOrDB(ctx, r.dbc).Exec(ctx, sqlStr, args...)
	return err
}

// upsertSuffix ON CONFLICT по id с обновлением всех колонок
func upsertSuffix() string {
	suffix := "ON CONFLICT (" + colID + ") DO UPDATE SET "
	for _, c := range columns {
		suffix += c + " = EXCLUDED." + c + ", "
	}
	return suffix + colUpdatedAt + " = now()"
}
