package game

import (
	"context"
	"errors"
	"time"

	"powerrush_backend/internal/config"
	"powerrush_backend/internal/engine/round"
	"powerrush_backend/internal/engine/sampler"
	"powerrush_backend/internal/metrics"
	"powerrush_backend/internal/model"
	"powerrush_backend/internal/repository"
	"powerrush_backend/internal/service"

	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// recordTimeout Сколько ждем БД при записи итога раунда
const recordTimeout = 5 * time.Second

type serv struct {
	settingsRepo repository.SettingsRepository
	prizeRepo    repository.PrizeRepository
	gameLogRepo  repository.GameLogRepository
	sessions     repository.SessionRepository
	txManager    trm.Manager

	gameCfg config.GameConfig
	clock   clockwork.Clock
	src     sampler.Source
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewGameService Хост раундов. clock задает время движка, src - случайность
// для розыгрыша призов и целей раунда.
func NewGameService(
	settingsRepo repository.SettingsRepository,
	prizeRepo repository.PrizeRepository,
	gameLogRepo repository.GameLogRepository,
	sessions repository.SessionRepository,
	txManager trm.Manager,
	gameCfg config.GameConfig,
	clock clockwork.Clock,
	src sampler.Source,
	m *metrics.Metrics,
	logger *zap.Logger,
) service.GameService {
	return &serv{
		settingsRepo: settingsRepo,
		prizeRepo:    prizeRepo,
		gameLogRepo:  gameLogRepo,
		sessions:     sessions,
		txManager:    txManager,
		gameCfg:      gameCfg,
		clock:        InLocation(clock, gameCfg.Location()),
		src:          src,
		metrics:      m,
		logger:       logger,
	}
}

// machine Раунд устройства, создается при первом обращении
func (s *serv) machine(deviceID string) *round.Machine {
	return s.sessions.GetOrCreate(deviceID, func() *round.Machine {
		return round.NewMachine(deviceID, s.clock, s.src, s)
	})
}

// settings Текущие настройки, до первого сохранения - значения по умолчанию
func (s *serv) settings(ctx context.Context) (model.Settings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return s.gameCfg.DefaultSettings(), nil
	}
	return settings, err
}

// SweepSessions Выгружает простаивающие раунды
func (s *serv) SweepSessions(idle time.Duration) int {
	removed := s.sessions.Sweep(idle)
	s.metrics.ActiveSessions(s.sessions.Len())
	if removed > 0 {
		s.logger.Debug("idle sessions evicted", zap.Int("count", removed))
	}
	return removed
}

// SyncPrizeGauge Обновляет метрику оставшихся призов из БД
func (s *serv) SyncPrizeGauge(ctx context.Context) error {
	settings, err := s.settings(ctx)
	if err != nil {
		return err
	}
	s.metrics.PrizesRemaining(settings.RemainingPrizes)
	return nil
}

// Shutdown Останавливает таймеры всех раундов
func (s *serv) Shutdown() {
	s.sessions.StopAll()
	s.metrics.ActiveSessions(0)
}
