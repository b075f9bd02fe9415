package auth

import (
	"powerrush_backend/internal/config"
	"powerrush_backend/internal/repository"
	"powerrush_backend/internal/service"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// minPasswordLength Минимальная длина нового пароля администратора
const minPasswordLength = 4

type serv struct {
	adminRepo repository.AdminRepository
	jwtConfig config.JWTConfig
	gameCfg   config.GameConfig
	clock     clockwork.Clock
	logger    *zap.Logger
}

func NewAuthService(
	adminRepo repository.AdminRepository,
	jwtConfig config.JWTConfig,
	gameCfg config.GameConfig,
	clock clockwork.Clock,
	logger *zap.Logger,
) service.AuthService {
	return &serv{
		adminRepo: adminRepo,
		jwtConfig: jwtConfig,
		gameCfg:   gameCfg,
		clock:     clock,
		logger:    logger,
	}
}
