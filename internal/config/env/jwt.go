package env

import (
	"fmt"
	"os"
	"time"

	"powerrush_backend/internal/config"
)

const (
	accessTokenKeyEnvName      = "ACCESS_TOKEN"
	accessTokenDurationEnvName = "ACCESS_TOKEN_DURATION"

	// Смена оператора киоска
	defaultAccessTokenDuration = 12 * time.Hour
	minAccessTokenKeyLength    = 16
)

type jwtConfig struct {
	accessTokenSecretKey string
	accessTokenDuration  time.Duration
}

func NewJWTConfig() (config.JWTConfig, error) {
	accessToken := os.Getenv(accessTokenKeyEnvName)
	if len(accessToken) == 0 {
		return nil, fmt.Errorf("access token secret key not found")
	}
	if len(accessToken) < minAccessTokenKeyLength {
		return nil, fmt.Errorf("access token secret key must be at least %d bytes", minAccessTokenKeyLength)
	}

	accessTokenDuration, err := durationFromEnv(accessTokenDurationEnvName, defaultAccessTokenDuration)
	if err != nil {
		return nil, err
	}
	if accessTokenDuration <= 0 {
		return nil, fmt.Errorf("invalid %s: must be positive", accessTokenDurationEnvName)
	}

	return &jwtConfig{
		accessTokenSecretKey: accessToken,
		accessTokenDuration:  accessTokenDuration,
	}, nil
}

func (j *jwtConfig) AccessTokenSecretKey() []byte {
	return []byte(j.accessTokenSecretKey)
}

func (j *jwtConfig) AccessTokenDuration() time.Duration {
	return j.accessTokenDuration
}
