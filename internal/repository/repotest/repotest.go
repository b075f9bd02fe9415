// Package repotest содержит реализации репозиториев в памяти для тестов сервисов.
package repotest

import (
	"context"
	"slices"
	"sync"

	"powerrush_backend/internal/model"
	"powerrush_backend/internal/repository"

	"github.com/avito-tech/go-transaction-manager/trm/v2"
)

// TxManager Выполняет функцию без транзакции
type TxManager struct{}

func (TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (TxManager) DoWithSettings(ctx context.Context, _ trm.Settings, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type Settings struct {
	mu       sync.Mutex
	settings *model.Settings
	Err      error
}

func NewSettings(s *model.Settings) *Settings {
	if s == nil {
		return &Settings{}
	}
	c := scalar(*s)
	return &Settings{settings: &c}
}

func (r *Settings) Get(_ context.Context) (model.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return model.Settings{}, r.Err
	}
	if r.settings == nil {
		return model.Settings{}, repository.ErrNotFound
	}
	return r.settings.Clone(), nil
}

func (r *Settings) GetForUpdate(ctx context.Context) (model.Settings, error) {
	return r.Get(ctx)
}

func (r *Settings) Save(_ context.Context, s model.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	c := scalar(s)
	r.settings = &c
	return nil
}

// Current Сохраненный снимок, nil - еще не сохранялся
func (r *Settings) Current() *model.Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		return nil
	}
	c := r.settings.Clone()
	return &c
}

// scalar Оставляет только то, что хранится в строке настроек
func scalar(s model.Settings) model.Settings {
	c := s.Clone()
	c.PrizeHistory = nil
	c.LegacyUsedNumbers = nil
	c.GameLog = nil
	return c
}

type Prizes struct {
	mu      sync.Mutex
	entries []model.PrizeHistoryEntry
}

func NewPrizes(entries ...model.PrizeHistoryEntry) *Prizes {
	return &Prizes{entries: entries}
}

func (r *Prizes) List(_ context.Context) ([]model.PrizeHistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.entries), nil
}

func (r *Prizes) Add(_ context.Context, e model.PrizeHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append([]model.PrizeHistoryEntry{e}, r.entries...)
	return nil
}

func (r *Prizes) ReplaceAll(_ context.Context, entries []model.PrizeHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = slices.Clone(entries)
	return nil
}

type GameLogs struct {
	mu      sync.Mutex
	entries []model.GameLogEntry // новые первыми
}

func NewGameLogs(entries ...model.GameLogEntry) *GameLogs {
	return &GameLogs{entries: entries}
}

func (r *GameLogs) Append(_ context.Context, e model.GameLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append([]model.GameLogEntry{e}, r.entries...)
	return nil
}

func (r *GameLogs) AppendMany(ctx context.Context, entries []model.GameLogEntry) error {
	for _, e := range entries {
		if err := r.Append(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *GameLogs) List(_ context.Context, deviceID string) ([]model.GameLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.GameLogEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if deviceID == "" || e.DeviceID == deviceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *GameLogs) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
	return nil
}

type Admin struct {
	mu   sync.Mutex
	hash string
}

func (r *Admin) GetPasswordHash(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hash == "" {
		return "", repository.ErrNotFound
	}
	return r.hash, nil
}

func (r *Admin) SetPasswordHash(_ context.Context, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hash = hash
	return nil
}

var (
	_ trm.Manager                   = TxManager{}
	_ repository.SettingsRepository = (*Settings)(nil)
	_ repository.PrizeRepository    = (*Prizes)(nil)
	_ repository.GameLogRepository  = (*GameLogs)(nil)
	_ repository.AdminRepository    = (*Admin)(nil)
)
