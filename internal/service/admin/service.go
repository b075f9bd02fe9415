package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"powerrush_backend/internal/config"
	"powerrush_backend/internal/engine/difficulty"
	"powerrush_backend/internal/engine/sampler"
	"powerrush_backend/internal/metrics"
	"powerrush_backend/internal/model"
	"powerrush_backend/internal/repository"
	"powerrush_backend/internal/service"

	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

type serv struct {
	settingsRepo repository.SettingsRepository
	prizeRepo    repository.PrizeRepository
	gameLogRepo  repository.GameLogRepository
	txManager    trm.Manager

	gameCfg config.GameConfig
	clock   clockwork.Clock
	src     sampler.Source
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewAdminService Сервис панели администратора
func NewAdminService(
	settingsRepo repository.SettingsRepository,
	prizeRepo repository.PrizeRepository,
	gameLogRepo repository.GameLogRepository,
	txManager trm.Manager,
	gameCfg config.GameConfig,
	clock clockwork.Clock,
	src sampler.Source,
	m *metrics.Metrics,
	logger *zap.Logger,
) service.AdminService {
	return &serv{
		settingsRepo: settingsRepo,
		prizeRepo:    prizeRepo,
		gameLogRepo:  gameLogRepo,
		txManager:    txManager,
		gameCfg:      gameCfg,
		clock:        clock,
		src:          src,
		metrics:      m,
		logger:       logger,
	}
}

// Init Записывает настройки по умолчанию, если их еще нет
func (s *serv) Init(ctx context.Context) error {
	_, err := s.settingsRepo.Get(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("load settings: %w", err)
	}

	defaults := s.gameCfg.DefaultSettings()
	if err := s.settingsRepo.Save(ctx, defaults); err != nil {
		return fmt.Errorf("save default settings: %w", err)
	}
	s.logger.Info("default settings stored",
		zap.Int("total_prizes", defaults.TotalPrizes),
		zap.Int("remaining_prizes", defaults.RemainingPrizes),
	)
	return nil
}

// Settings Настройки вместе с историей призов
func (s *serv) Settings(ctx context.Context) (model.Settings, error) {
	settings, err := s.load(ctx, s.settingsRepo.Get)
	if err != nil {
		return model.Settings{}, err
	}
	return settings, nil
}

// Difficulty Действующая сложность и оценка шанса выигрыша на текущий момент
func (s *serv) Difficulty(ctx context.Context) (difficulty.Info, int, error) {
	settings, err := s.load(ctx, s.settingsRepo.Get)
	if err != nil {
		return difficulty.Info{}, 0, err
	}
	now := s.now()
	return difficulty.Describe(settings, now), difficulty.WinProbability(settings, now), nil
}

// load Читает строку настроек и историю призов
func (s *serv) load(ctx context.Context, get func(context.Context) (model.Settings, error)) (model.Settings, error) {
	settings, err := get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		settings, err = s.gameCfg.DefaultSettings(), nil
	}
	if err != nil {
		return model.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	settings.PrizeHistory, err = s.prizeRepo.List(ctx)
	if err != nil {
		return model.Settings{}, fmt.Errorf("load prize history: %w", err)
	}
	return settings, nil
}

// mutate Меняет настройки в транзакции под блокировкой строки.
// withHistory - перезаписать и историю призов
func (s *serv) mutate(
	ctx context.Context,
	withHistory bool,
	fn func(cur model.Settings) (model.Settings, error),
) (model.Settings, error) {
	var out model.Settings
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		cur, err := s.load(txCtx, s.settingsRepo.GetForUpdate)
		if err != nil {
			return err
		}

		next, err := fn(cur)
		if err != nil {
			return err
		}

		if err := s.settingsRepo.Save(txCtx, next); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
		if withHistory {
			if err := s.prizeRepo.ReplaceAll(txCtx, next.PrizeHistory); err != nil {
				return fmt.Errorf("save prize history: %w", err)
			}
		}
		out = next
		return nil
	})
	if err != nil {
		return model.Settings{}, err
	}

	s.metrics.PrizesRemaining(out.RemainingPrizes)
	return out, nil
}

func (s *serv) now() time.Time {
	return s.clock.Now().In(s.gameCfg.Location())
}
