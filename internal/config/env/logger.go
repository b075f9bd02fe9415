package env

import (
	"os"
	"strconv"

	"powerrush_backend/internal/config"
)

const (
	logLevelEnvName = "LOG_LEVEL"
	logDevEnvName   = "LOG_DEV"

	defaultLogLevel = "info"
)

type loggerConfig struct {
	level string
	dev   bool
}

// NewLoggerConfig Уровень по умолчанию info, формат JSON
func NewLoggerConfig() (config.LoggerConfig, error) {
	level := os.Getenv(logLevelEnvName)
	if len(level) == 0 {
		level = defaultLogLevel
	}

	var dev bool
	if v := os.Getenv(logDevEnvName); len(v) > 0 {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, err
		}
		dev = parsed
	}

	return &loggerConfig{level: level, dev: dev}, nil
}

func (cfg *loggerConfig) Level() string {
	return cfg.level
}

func (cfg *loggerConfig) Development() bool {
	return cfg.dev
}
