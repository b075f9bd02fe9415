package admin

import (
	"context"
	"fmt"
	"slices"

	"powerrush_backend/internal/engine/quota"
	"powerrush_backend/internal/model"
	"powerrush_backend/internal/service"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// Whitelist Снимает лимиты с устройства
func (s *serv) Whitelist(ctx context.Context, deviceID string) (model.GameRules, error) {
	out, err := s.mutate(ctx, false, func(cur model.Settings) (model.Settings, error) {
		rules, err := quota.Whitelist(cur.Rules, deviceID)
		if err != nil {
			return model.Settings{}, err
		}
		cur.Rules = rules
		return cur, nil
	})
	if err != nil {
		return model.GameRules{}, err
	}
	s.logger.Info("device whitelisted", zap.String("device_id", quota.NormalizeDeviceID(deviceID)))
	return out.Rules, nil
}

func (s *serv) Unwhitelist(ctx context.Context, deviceID string) (model.GameRules, error) {
	out, err := s.mutate(ctx, false, func(cur model.Settings) (model.Settings, error) {
		rules, err := quota.Unwhitelist(cur.Rules, deviceID)
		if err != nil {
			return model.Settings{}, err
		}
		cur.Rules = rules
		return cur, nil
	})
	if err != nil {
		return model.GameRules{}, err
	}
	s.logger.Info("device removed from whitelist", zap.String("device_id", quota.NormalizeDeviceID(deviceID)))
	return out.Rules, nil
}

// AddName Добавляет имя для генератора игроков. Имя приводится к slug
func (s *serv) AddName(ctx context.Context, name string) ([]string, error) {
	normalized := NormalizeName(name)
	if normalized == "" {
		return nil, service.ErrInvalidName
	}

	out, err := s.mutate(ctx, false, func(cur model.Settings) (model.Settings, error) {
		if slices.Contains(cur.UniqueNames, normalized) {
			return model.Settings{}, fmt.Errorf("%w: %s", service.ErrDuplicateName, normalized)
		}
		cur.UniqueNames = append(cur.UniqueNames, normalized)
		return cur, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("player name added", zap.String("name", normalized))
	return out.UniqueNames, nil
}

func (s *serv) RemoveName(ctx context.Context, name string) ([]string, error) {
	out, err := s.mutate(ctx, false, func(cur model.Settings) (model.Settings, error) {
		idx := slices.Index(cur.UniqueNames, name)
		if idx < 0 {
			idx = slices.Index(cur.UniqueNames, NormalizeName(name))
		}
		if idx < 0 {
			return model.Settings{}, fmt.Errorf("%w: %s", service.ErrNameNotFound, name)
		}
		cur.UniqueNames = slices.Delete(cur.UniqueNames, idx, idx+1)
		return cur, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("player name removed", zap.String("name", name))
	return out.UniqueNames, nil
}

// NormalizeName Имя в нижнем регистре без пробелов и спецсимволов
func NormalizeName(name string) string {
	return slug.Make(name)
}

// Device Статистика устройства для админки
func (s *serv) Device(ctx context.Context, deviceID string) (model.DeviceState, model.Eligibility, error) {
	settings, err := s.load(ctx, s.settingsRepo.Get)
	if err != nil {
		return model.DeviceState{}, model.Eligibility{}, err
	}
	log, err := s.gameLogRepo.List(ctx, deviceID)
	if err != nil {
		return model.DeviceState{}, model.Eligibility{}, fmt.Errorf("load game log: %w", err)
	}
	return quota.Stats(deviceID, settings.Rules, log), quota.CanPlay(deviceID, settings.Rules, log), nil
}
