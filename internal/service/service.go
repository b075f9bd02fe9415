package service

import (
	"context"
	"errors"
	"io"
	"time"

	"powerrush_backend/internal/engine/difficulty"
	"powerrush_backend/internal/engine/round"
	"powerrush_backend/internal/model"
)

var (
	ErrInvalidSettings  = errors.New("invalid settings")
	ErrInvalidName      = errors.New("name is empty")
	ErrDuplicateName    = errors.New("name already exists")
	ErrNameNotFound     = errors.New("name not found")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordMismatch = errors.New("password confirmation does not match")
)

// GameService Раунды на устройствах игроков
type GameService interface {
	Start(ctx context.Context, deviceID string) (round.Snapshot, error)
	Tap(ctx context.Context, deviceID string) (round.TapResult, error)
	// Key Нажатие (down) или отпускание клавиши
	Key(ctx context.Context, deviceID string, down, repeat bool) (round.TapResult, error)
	Continue(ctx context.Context, deviceID string) (round.Snapshot, error)
	Retry(ctx context.Context, deviceID string) (round.Snapshot, error)
	State(ctx context.Context, deviceID string) round.Snapshot
	DeviceStats(ctx context.Context, deviceID string) (model.DeviceState, model.Eligibility, error)

	SweepSessions(idle time.Duration) int
	SyncPrizeGauge(ctx context.Context) error
	Shutdown()
}

// AdminService Настройки, призы и журнал для панели администратора
type AdminService interface {
	Init(ctx context.Context) error

	Settings(ctx context.Context) (model.Settings, error)
	UpdateSettings(ctx context.Context, s model.Settings) (model.Settings, error)
	Difficulty(ctx context.Context) (difficulty.Info, int, error)
	Import(ctx context.Context, s model.Settings, logs []model.GameLogEntry) (model.Settings, int, error)

	AddPrize(ctx context.Context, number int) (model.Settings, error)
	EditPrize(ctx context.Context, oldNumber, newNumber int) (model.Settings, error)
	RemovePrize(ctx context.Context, number int) (model.Settings, error)
	ResetPrizes(ctx context.Context, clearHistory bool) (model.Settings, error)
	SimulateDraw(ctx context.Context) (*int, model.Settings, error)

	Whitelist(ctx context.Context, deviceID string) (model.GameRules, error)
	Unwhitelist(ctx context.Context, deviceID string) (model.GameRules, error)
	AddName(ctx context.Context, name string) ([]string, error)
	RemoveName(ctx context.Context, name string) ([]string, error)

	Logs(ctx context.Context, filter model.LogFilter) ([]model.GameLogEntry, error)
	ClearLogs(ctx context.Context) error
	ExportLogs(ctx context.Context, filter model.LogFilter, w io.Writer) error
	Analytics(ctx context.Context) (model.Analytics, error)
	Device(ctx context.Context, deviceID string) (model.DeviceState, model.Eligibility, error)
}

// AuthService Пароль администратора и выдача токенов
type AuthService interface {
	Init(ctx context.Context) error
	Login(ctx context.Context, password string) (accessToken string, err error)
	ChangePassword(ctx context.Context, current, next, confirm string) error
}
