package admin

import (
	"context"

	"powerrush_backend/internal/engine/prize"
	"powerrush_backend/internal/model"

	"go.uber.org/zap"
)

// AddPrize Ручная запись выданного номера
func (s *serv) AddPrize(ctx context.Context, number int) (model.Settings, error) {
	out, err := s.mutate(ctx, true, func(cur model.Settings) (model.Settings, error) {
		return prize.Add(cur, number, s.now())
	})
	if err != nil {
		return model.Settings{}, err
	}
	s.logger.Info("prize number added", zap.Int("prize_number", number))
	return out, nil
}

// EditPrize Исправление номера в истории
func (s *serv) EditPrize(ctx context.Context, oldNumber, newNumber int) (model.Settings, error) {
	out, err := s.mutate(ctx, true, func(cur model.Settings) (model.Settings, error) {
		return prize.Edit(cur, oldNumber, newNumber, s.now())
	})
	if err != nil {
		return model.Settings{}, err
	}
	s.logger.Info("prize number edited",
		zap.Int("old_prize_number", oldNumber),
		zap.Int("prize_number", newNumber),
	)
	return out, nil
}

// RemovePrize Удаление номера, приз возвращается в пул
func (s *serv) RemovePrize(ctx context.Context, number int) (model.Settings, error) {
	out, err := s.mutate(ctx, true, func(cur model.Settings) (model.Settings, error) {
		return prize.Remove(cur, number, s.now())
	})
	if err != nil {
		return model.Settings{}, err
	}
	s.logger.Info("prize number removed", zap.Int("prize_number", number))
	return out, nil
}

// ResetPrizes Восстанавливает пул призов
func (s *serv) ResetPrizes(ctx context.Context, clearHistory bool) (model.Settings, error) {
	out, err := s.mutate(ctx, true, func(cur model.Settings) (model.Settings, error) {
		return prize.Reset(cur, clearHistory), nil
	})
	if err != nil {
		return model.Settings{}, err
	}
	s.logger.Info("prize pool reset",
		zap.Bool("clear_history", clearHistory),
		zap.Int("remaining_prizes", out.RemainingPrizes),
	)
	return out, nil
}

// SimulateDraw Тестовый розыгрыш из админки, номер записывается как выданный.
// Если счетчик пришлось исправить, номер не возвращается
func (s *serv) SimulateDraw(ctx context.Context) (*int, model.Settings, error) {
	var number *int
	out, err := s.mutate(ctx, true, func(cur model.Settings) (model.Settings, error) {
		now := s.now()
		draw := prize.Draw(cur, s.src, prize.Winner{
			Name:      prize.SimulationWinner,
			GameLogID: prize.SimulationLogID(now),
		}, now)
		if draw.Number == nil && !draw.Healed {
			return model.Settings{}, prize.ErrExhausted
		}
		number = draw.Number
		return draw.Settings, nil
	})
	if err != nil {
		return nil, model.Settings{}, err
	}

	if number == nil {
		s.metrics.PrizeCounterRepaired()
		s.logger.Warn("prize counter repaired during simulation")
		return nil, out, nil
	}
	s.logger.Info("prize draw simulated",
		zap.Int("prize_number", *number),
		zap.Int("remaining_prizes", out.RemainingPrizes),
	)
	return number, out, nil
}
