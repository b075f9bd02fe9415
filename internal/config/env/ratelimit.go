package env

import (
	"fmt"
	"os"
	"strconv"

	"powerrush_backend/internal/config"
)

const (
	rateLimitRPSEnvName   = "RATE_LIMIT_RPS"
	rateLimitBurstEnvName = "RATE_LIMIT_BURST"

	// С запасом выше человеческого темпа, клики режет clickguard
	defaultRateLimitRPS   = 40.0
	defaultRateLimitBurst = 80
)

type rateLimitConfig struct {
	rps   float64
	burst int
}

func NewRateLimitConfig() (config.RateLimitConfig, error) {
	cfg := &rateLimitConfig{rps: defaultRateLimitRPS, burst: defaultRateLimitBurst}

	if v := os.Getenv(rateLimitRPSEnvName); len(v) > 0 {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps <= 0 {
			return nil, fmt.Errorf("invalid %s: %q", rateLimitRPSEnvName, v)
		}
		cfg.rps = rps
	}
	if v := os.Getenv(rateLimitBurstEnvName); len(v) > 0 {
		burst, err := strconv.Atoi(v)
		if err != nil || burst <= 0 {
			return nil, fmt.Errorf("invalid %s: %q", rateLimitBurstEnvName, v)
		}
		cfg.burst = burst
	}
	return cfg, nil
}

func (cfg *rateLimitConfig) RPS() float64 {
	return cfg.rps
}

func (cfg *rateLimitConfig) Burst() int {
	return cfg.burst
}
