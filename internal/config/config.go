package config

import (
	"time"

	"powerrush_backend/internal/model"

	"github.com/joho/godotenv"
)

func Load(path string) error {
	err := godotenv.Load(path)
	if err != nil {
		return err
	}
	return nil
}

type HTTPConfig interface {
	Address() string
}

type PGConfig interface {
	DSN() string
	MaxConns() int32
	ConnectTimeout() time.Duration
}

type JWTConfig interface {
	AccessTokenSecretKey() []byte
	AccessTokenDuration() time.Duration
}

type LoggerConfig interface {
	Level() string
	Development() bool
}

type RateLimitConfig interface {
	RPS() float64
	Burst() int
}

type GameConfig interface {
	// Location Часовой пояс площадки, в нем считаются часы работы
	Location() *time.Location
	DefaultSettings() model.Settings
	DefaultAdminPassword() string
	// SessionIdleTTL Через сколько простоя сессия раунда выгружается из памяти
	SessionIdleTTL() time.Duration
	SweepInterval() time.Duration
}
