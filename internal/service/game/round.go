package game

import (
	"context"
	"fmt"

	"powerrush_backend/internal/engine/clickguard"
	"powerrush_backend/internal/engine/quota"
	"powerrush_backend/internal/engine/round"
	"powerrush_backend/internal/model"

	"go.uber.org/zap"
)

// Start Начинает раунд на устройстве: проверяет лимиты, часы работы и наличие призов
func (s *serv) Start(ctx context.Context, deviceID string) (round.Snapshot, error) {
	settings, err := s.settings(ctx)
	if err != nil {
		return round.Snapshot{}, fmt.Errorf("load settings: %w", err)
	}
	elig, err := s.eligibility(ctx, deviceID, settings.Rules)
	if err != nil {
		return round.Snapshot{}, err
	}

	m := s.machine(deviceID)
	snap, err := m.Start(settings, elig)
	s.metrics.ActiveSessions(s.sessions.Len())
	if err != nil {
		return snap, err
	}

	s.metrics.RoundStarted(snap.RequiredClicks)
	s.logger.Info("round started",
		zap.String("device_id", deviceID),
		zap.String("player_name", snap.PlayerName),
		zap.Int("required_clicks", snap.RequiredClicks),
		zap.Float64("difficulty", snap.Difficulty),
	)
	return snap, nil
}

// Tap Нажатие по экрану
func (s *serv) Tap(_ context.Context, deviceID string) (round.TapResult, error) {
	res, err := s.machine(deviceID).Tap()
	if err != nil {
		return res, err
	}
	s.observeClick(deviceID, res.Click)
	return res, nil
}

// Key Клавиатурный ввод. Отпускание только снимает признак удержания
func (s *serv) Key(_ context.Context, deviceID string, down, repeat bool) (round.TapResult, error) {
	m := s.machine(deviceID)
	if !down {
		return round.TapResult{Snapshot: m.KeyUp()}, nil
	}

	res, err := m.KeyDown(repeat)
	if err != nil {
		return res, err
	}
	s.observeClick(deviceID, res.Click)
	return res, nil
}

// Continue Возврат к инструкции после паузы на экране результата
func (s *serv) Continue(ctx context.Context, deviceID string) (round.Snapshot, error) {
	elig, err := s.currentEligibility(ctx, deviceID)
	if err != nil {
		return round.Snapshot{}, err
	}
	return s.machine(deviceID).Continue(elig)
}

// Retry Повторная проверка лимитов на экране блокировки
func (s *serv) Retry(ctx context.Context, deviceID string) (round.Snapshot, error) {
	elig, err := s.currentEligibility(ctx, deviceID)
	if err != nil {
		return round.Snapshot{}, err
	}
	return s.machine(deviceID).Retry(elig)
}

func (s *serv) State(_ context.Context, deviceID string) round.Snapshot {
	return s.machine(deviceID).Snapshot()
}

// DeviceStats Статистика устройства и допуск к игре
func (s *serv) DeviceStats(ctx context.Context, deviceID string) (model.DeviceState, model.Eligibility, error) {
	settings, err := s.settings(ctx)
	if err != nil {
		return model.DeviceState{}, model.Eligibility{}, fmt.Errorf("load settings: %w", err)
	}
	log, err := s.gameLogRepo.List(ctx, deviceID)
	if err != nil {
		return model.DeviceState{}, model.Eligibility{}, fmt.Errorf("load game log: %w", err)
	}
	return quota.Stats(deviceID, settings.Rules, log), quota.CanPlay(deviceID, settings.Rules, log), nil
}

func (s *serv) currentEligibility(ctx context.Context, deviceID string) (model.Eligibility, error) {
	settings, err := s.settings(ctx)
	if err != nil {
		return model.Eligibility{}, fmt.Errorf("load settings: %w", err)
	}
	return s.eligibility(ctx, deviceID, settings.Rules)
}

func (s *serv) eligibility(ctx context.Context, deviceID string, rules model.GameRules) (model.Eligibility, error) {
	log, err := s.gameLogRepo.List(ctx, deviceID)
	if err != nil {
		return model.Eligibility{}, fmt.Errorf("load game log: %w", err)
	}
	return quota.CanPlay(deviceID, rules, log), nil
}

func (s *serv) observeClick(deviceID string, click clickguard.Result) {
	s.metrics.Click(string(click.Verdict))

	switch click.Verdict {
	case clickguard.VerdictStreak, clickguard.VerdictRateExceed:
		if !click.Penalized() {
			return
		}
		s.logger.Info("click penalty",
			zap.String("device_id", deviceID),
			zap.String("verdict", string(click.Verdict)),
			zap.Int("tps", click.TPS),
			zap.Int64("penalty_ms", click.PenalizedUntil.Sub(s.clock.Now()).Milliseconds()),
		)
	}
}
