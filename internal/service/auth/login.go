package auth

import (
	"context"
	"errors"
	"fmt"

	"powerrush_backend/internal/repository"
	"powerrush_backend/internal/service"
	"powerrush_backend/pkg/pass"
	"powerrush_backend/pkg/token"
)

// Init Сохраняет хэш пароля по умолчанию при первом запуске
func (s *serv) Init(ctx context.Context) error {
	_, err := s.adminRepo.GetPasswordHash(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("load admin password: %w", err)
	}

	hash, err := pass.HashPassword(s.gameCfg.DefaultAdminPassword())
	if err != nil {
		return fmt.Errorf("hash default password: %w", err)
	}
	if err := s.adminRepo.SetPasswordHash(ctx, hash); err != nil {
		return fmt.Errorf("save admin password: %w", err)
	}
	s.logger.Warn("default admin password stored, change it from the admin panel")
	return nil
}

// Login Проверяет пароль и выдает access токен
func (s *serv) Login(ctx context.Context, password string) (string, error) {
	// Получение хэша пароля из бд
	hash, err := s.adminRepo.GetPasswordHash(ctx)
	if err != nil {
		return "", fmt.Errorf("load admin password: %w", err)
	}

	// Верификация пароля
	if !pass.VerifyPassword(hash, password) {
		s.logger.Info("admin login rejected")
		return "", service.ErrInvalidPassword
	}

	// Создать access токен
	accessToken, err := token.GenerateAccessToken(
		s.clock.Now(),
		s.jwtConfig.AccessTokenSecretKey(),
		s.jwtConfig.AccessTokenDuration())
	if err != nil {
		return "", err
	}

	s.logger.Info("admin logged in")
	return accessToken, nil
}

// ChangePassword Смена пароля: текущий пароль, новый не короче 4 символов и подтверждение
func (s *serv) ChangePassword(ctx context.Context, current, next, confirm string) error {
	hash, err := s.adminRepo.GetPasswordHash(ctx)
	if err != nil {
		return fmt.Errorf("load admin password: %w", err)
	}
	if !pass.VerifyPassword(hash, current) {
		return service.ErrInvalidPassword
	}
	if len([]rune(next)) < minPasswordLength {
		return fmt.Errorf("%w: at least %d characters", service.ErrPasswordTooShort, minPasswordLength)
	}
	if next != confirm {
		return service.ErrPasswordMismatch
	}

	newHash, err := pass.HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.adminRepo.SetPasswordHash(ctx, newHash); err != nil {
		return fmt.Errorf("save admin password: %w", err)
	}

	s.logger.Info("admin password changed")
	return nil
}
