package repository

import (
	"context"
	"errors"
	"time"

	"powerrush_backend/internal/engine/round"
	"powerrush_backend/internal/model"
)

var ErrNotFound = errors.New("not found")

// SettingsRepository Единственная строка настроек игры.
// История призов и журнал хранятся отдельно и в Settings не заполняются.
type SettingsRepository interface {
	Get(ctx context.Context) (model.Settings, error)
	// GetForUpdate Блокирует строку до конца транзакции
	GetForUpdate(ctx context.Context) (model.Settings, error)
	Save(ctx context.Context, s model.Settings) error
}

type PrizeRepository interface {
	// List История выдачи, новые записи первыми
	List(ctx context.Context) ([]model.PrizeHistoryEntry, error)
	Add(ctx context.Context, e model.PrizeHistoryEntry) error
	ReplaceAll(ctx context.Context, entries []model.PrizeHistoryEntry) error
}

type GameLogRepository interface {
	Append(ctx context.Context, e model.GameLogEntry) error
	AppendMany(ctx context.Context, entries []model.GameLogEntry) error
	// List Журнал, новые записи первыми. Пустой deviceID - все устройства.
	List(ctx context.Context, deviceID string) ([]model.GameLogEntry, error)
	Clear(ctx context.Context) error
}

type AdminRepository interface {
	GetPasswordHash(ctx context.Context) (string, error)
	SetPasswordHash(ctx context.Context, hash string) error
}

// SessionRepository Раунды в памяти, по одному на устройство
type SessionRepository interface {
	GetOrCreate(deviceID string, create func() *round.Machine) *round.Machine
	Get(deviceID string) (*round.Machine, bool)
	// Sweep Останавливает и выгружает раунды, простаивающие дольше idle
	Sweep(idle time.Duration) int
	Len() int
	StopAll()
}
