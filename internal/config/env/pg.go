package env

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"powerrush_backend/internal/config"
)

const (
	dsnName            = "PG_DSN"
	maxConnsEnvName    = "PG_MAX_CONNS"
	connTimeoutEnvName = "PG_CONNECT_TIMEOUT"
	defaultMaxConns    = 10
	defaultConnTimeout = 5 * time.Second
)

type pgConfig struct {
	dsn         string
	maxConns    int32
	connTimeout time.Duration
}

func NewPGConfig() (config.PGConfig, error) {
	dsn := os.Getenv(dsnName)
	if len(dsn) == 0 {
		return nil, errors.New("pg dsn not found")
	}

	cfg := &pgConfig{
		dsn:         dsn,
		maxConns:    defaultMaxConns,
		connTimeout: defaultConnTimeout,
	}

	if v := os.Getenv(maxConnsEnvName); len(v) > 0 {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid %s: %q", maxConnsEnvName, v)
		}
		cfg.maxConns = int32(n)
	}

	timeout, err := durationFromEnv(connTimeoutEnvName, defaultConnTimeout)
	if err != nil {
		return nil, err
	}
	cfg.connTimeout = timeout

	return cfg, nil
}

func (cfg *pgConfig) DSN() string {
	return cfg.dsn
}

func (cfg *pgConfig) MaxConns() int32 {
	return cfg.maxConns
}

func (cfg *pgConfig) ConnectTimeout() time.Duration {
	return cfg.connTimeout
}
