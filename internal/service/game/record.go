package game

import (
	"context"
	"errors"
	"fmt"

	"powerrush_backend/internal/engine/prize"
	"powerrush_backend/internal/engine/round"
	"powerrush_backend/internal/model"
	"powerrush_backend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Record Сохраняет итог раунда одной транзакцией.
// При выигрыше номер приза разыгрывается по заблокированной строке настроек,
// поэтому два одновременных выигрыша не получат один номер.
func (s *serv) Record(o round.Outcome) *int {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	entry := model.GameLogEntry{
		ID:              uuid.NewString(),
		PlayerName:      o.PlayerName,
		DeviceID:        o.DeviceID,
		Result:          o.Result,
		Timestamp:       o.FinishedAt,
		BatteryLevel:    o.BatteryLevel,
		DurationSeconds: o.DurationSeconds,
	}

	var (
		draw      model.PrizeDraw
		remaining = -1
	)
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		if o.Result == model.ResultWin {
			var err error
			draw, err = s.drawPrize(txCtx, entry, o)
			if err != nil {
				return err
			}
			entry.PrizeNumber = draw.Number
			remaining = draw.Settings.RemainingPrizes
		}

		if err := s.gameLogRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("append game log: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to record round",
			zap.String("device_id", o.DeviceID),
			zap.String("result", string(o.Result)),
			zap.Error(err),
		)
		return nil
	}

	s.metrics.RoundFinished(string(o.Result))
	if remaining >= 0 {
		s.metrics.PrizesRemaining(remaining)
	}
	if draw.Healed {
		s.metrics.PrizeCounterRepaired()
		s.logger.Warn("prize counter repaired: no free numbers left",
			zap.String("device_id", o.DeviceID),
		)
	}

	fields := []zap.Field{
		zap.String("device_id", o.DeviceID),
		zap.String("player_name", o.PlayerName),
		zap.String("result", string(o.Result)),
		zap.Int("required_clicks", o.RequiredClicks),
		zap.Int("taps", o.Taps),
		zap.Int("battery_level", o.BatteryLevel),
	}
	if entry.PrizeNumber != nil {
		fields = append(fields, zap.Int("prize_number", *entry.PrizeNumber))
	}
	s.logger.Info("round finished", fields...)

	return entry.PrizeNumber
}

// drawPrize Розыгрыш номера и сохранение пула внутри транзакции
func (s *serv) drawPrize(ctx context.Context, entry model.GameLogEntry, o round.Outcome) (model.PrizeDraw, error) {
	settings, err := s.settingsRepo.GetForUpdate(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		settings, err = s.gameCfg.DefaultSettings(), nil
	}
	if err != nil {
		return model.PrizeDraw{}, fmt.Errorf("lock settings: %w", err)
	}
	settings.PrizeHistory, err = s.prizeRepo.List(ctx)
	if err != nil {
		return model.PrizeDraw{}, fmt.Errorf("load prize history: %w", err)
	}

	draw := prize.Draw(settings, s.src, prize.Winner{Name: o.PlayerName, GameLogID: entry.ID}, o.FinishedAt)
	if draw.Number == nil && !draw.Healed {
		return draw, nil
	}

	if draw.Number != nil {
		if err := s.prizeRepo.Add(ctx, draw.Settings.PrizeHistory[0]); err != nil {
			return model.PrizeDraw{}, fmt.Errorf("save prize number: %w", err)
		}
	}
	if err := s.settingsRepo.Save(ctx, draw.Settings); err != nil {
		return model.PrizeDraw{}, fmt.Errorf("save settings: %w", err)
	}
	return draw, nil
}
