package admin

import (
	"context"
	"fmt"

	"powerrush_backend/internal/engine/prize"
	"powerrush_backend/internal/model"
	"powerrush_backend/internal/service"

	"go.uber.org/zap"
)

const (
	minDuration = 5
	maxDuration = 120
	minAutoMax  = 30
	maxPercent  = 100
)

// UpdateSettings Сохраняет редактируемые настройки. История призов не меняется,
// но занятые номера должны остаться в пределах нового количества призов
func (s *serv) UpdateSettings(ctx context.Context, req model.Settings) (model.Settings, error) {
	if err := ValidateSettings(req); err != nil {
		return model.Settings{}, err
	}

	out, err := s.mutate(ctx, false, func(cur model.Settings) (model.Settings, error) {
		next := req.Clone()
		next.PrizeHistory = cur.PrizeHistory
		if err := prize.Validate(next); err != nil {
			return model.Settings{}, fmt.Errorf("%w: %w", service.ErrInvalidSettings, err)
		}
		return next, nil
	})
	if err != nil {
		return model.Settings{}, err
	}

	s.logger.Info("settings updated",
		zap.Int("duration", out.Duration),
		zap.Float64("difficulty", out.DifficultyMultiplier),
		zap.Bool("auto_difficulty", out.AutoDifficultyEnabled),
		zap.Int("total_prizes", out.TotalPrizes),
		zap.Int("remaining_prizes", out.RemainingPrizes),
	)
	return out, nil
}

// Import Заменяет настройки и историю снимком старого киоска, журнал дописывается
func (s *serv) Import(ctx context.Context, settings model.Settings, logs []model.GameLogEntry) (model.Settings, int, error) {
	if err := ValidateSettings(settings); err != nil {
		return model.Settings{}, 0, err
	}
	if err := prize.Validate(settings); err != nil {
		return model.Settings{}, 0, fmt.Errorf("%w: %w", service.ErrInvalidSettings, err)
	}

	var out model.Settings
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.settingsRepo.Save(txCtx, settings); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
		if err := s.prizeRepo.ReplaceAll(txCtx, settings.PrizeHistory); err != nil {
			return fmt.Errorf("save prize history: %w", err)
		}
		if err := s.gameLogRepo.AppendMany(txCtx, logs); err != nil {
			return fmt.Errorf("import game log: %w", err)
		}

		var err error
		out, err = s.load(txCtx, s.settingsRepo.Get)
		return err
	})
	if err != nil {
		return model.Settings{}, 0, err
	}

	s.metrics.PrizesRemaining(out.RemainingPrizes)
	s.logger.Info("legacy settings imported",
		zap.Int("prize_history", len(out.PrizeHistory)),
		zap.Int("game_logs", len(logs)),
	)
	return out, len(logs), nil
}

// ValidateSettings Проверка значений, которые администратор вводит вручную
func ValidateSettings(s model.Settings) error {
	switch {
	case s.Duration < minDuration || s.Duration > maxDuration:
		return fmt.Errorf("%w: duration must be between %d and %d seconds", service.ErrInvalidSettings, minDuration, maxDuration)
	case s.DifficultyMultiplier < 0 || s.DifficultyMultiplier > maxPercent:
		return fmt.Errorf("%w: difficulty must be between 0 and %d", service.ErrInvalidSettings, maxPercent)
	case s.AutoDifficultyMaxLimit < minAutoMax || s.AutoDifficultyMaxLimit > maxPercent:
		return fmt.Errorf("%w: auto difficulty limit must be between %d and %d", service.ErrInvalidSettings, minAutoMax, maxPercent)
	case s.TotalPrizes < 1:
		return fmt.Errorf("%w: total prizes must be at least 1", service.ErrInvalidSettings)
	case s.RemainingPrizes < 0 || s.RemainingPrizes > s.TotalPrizes:
		return fmt.Errorf("%w: remaining prizes must be between 0 and %d", service.ErrInvalidSettings, s.TotalPrizes)
	case s.Rules.MaxPlaysPerDevice < 1 || s.Rules.MaxWinsPerDevice < 1:
		return fmt.Errorf("%w: device limits must be at least 1", service.ErrInvalidSettings)
	}
	if _, _, err := s.OperatingHours.Window(); err != nil {
		return fmt.Errorf("%w: %w", service.ErrInvalidSettings, err)
	}
	return nil
}
