package env

import (
	"errors"
	"fmt"
	"os"
	"time"

	"powerrush_backend/internal/config"
	"powerrush_backend/internal/model"

	"gopkg.in/yaml.v3"
)

const (
	gameTimezoneEnvName   = "GAME_TIMEZONE"
	gameConfigPathEnvName = "GAME_CONFIG_PATH"
	sessionIdleTTLEnvName = "SESSION_IDLE_TTL"
	sweepIntervalEnvName  = "SESSION_SWEEP_INTERVAL"

	defaultGameConfigPath = "config.yaml"
	defaultSessionIdleTTL = 10 * time.Minute
	defaultSweepInterval  = time.Minute
	defaultAdminPassword  = "admin123"
)

// gameYAML Раздел game в config.yaml. Отсутствующие ключи берутся из defaultGame.
type gameYAML struct {
	Game struct {
		Duration       *int `yaml:"duration"`
		OperatingHours *struct {
			Enabled *bool  `yaml:"enabled"`
			Start   string `yaml:"start"`
			End     string `yaml:"end"`
		} `yaml:"operating_hours"`
		Difficulty             *float64 `yaml:"difficulty"`
		AutoDifficulty         *bool    `yaml:"auto_difficulty"`
		AutoDifficultyMaxLimit *float64 `yaml:"auto_difficulty_max_limit"`
		TotalPrizes            *int     `yaml:"total_prizes"`
		RemainingPrizes        *int     `yaml:"remaining_prizes"`
		PrizeNumbersEnabled    *bool    `yaml:"prize_numbers_enabled"`
		UniqueNames            []string `yaml:"unique_names"`
		Rules                  *struct {
			MaxPlaysPerDevice  *int     `yaml:"max_plays_per_device"`
			MaxWinsPerDevice   *int     `yaml:"max_wins_per_device"`
			WhitelistedDevices []string `yaml:"whitelisted_devices"`
		} `yaml:"rules"`
	} `yaml:"game"`
	Admin struct {
		DefaultPassword string `yaml:"default_password"`
	} `yaml:"admin"`
}

type gameConfig struct {
	location       *time.Location
	defaults       model.Settings
	adminPassword  string
	sessionIdleTTL time.Duration
	sweepInterval  time.Duration
}

// DefaultGameSettings Настройки при первом запуске
func DefaultGameSettings() model.Settings {
	return model.Settings{
		Duration:               25,
		OperatingHours:         model.OperatingHours{Enabled: true, Start: "09:00", End: "21:00"},
		DifficultyMultiplier:   50,
		AutoDifficultyEnabled:  true,
		AutoDifficultyMaxLimit: 80,
		TotalPrizes:            100,
		RemainingPrizes:        75,
		PrizeNumbersEnabled:    true,
		UniqueNames:            []string{"kelinci", "buaya", "harimau", "singa", "elang"},
		Rules: model.GameRules{
			MaxPlaysPerDevice: 10,
			MaxWinsPerDevice:  3,
		},
	}
}

// NewGameConfig Читает переменные окружения и YAML с настройками по умолчанию.
// Отсутствие файла не ошибка.
func NewGameConfig() (config.GameConfig, error) {
	cfg := &gameConfig{
		location:       time.Local,
		defaults:       DefaultGameSettings(),
		adminPassword:  defaultAdminPassword,
		sessionIdleTTL: defaultSessionIdleTTL,
		sweepInterval:  defaultSweepInterval,
	}

	if tz := os.Getenv(gameTimezoneEnvName); len(tz) > 0 {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", gameTimezoneEnvName, err)
		}
		cfg.location = loc
	}

	var err error
	if cfg.sessionIdleTTL, err = durationFromEnv(sessionIdleTTLEnvName, defaultSessionIdleTTL); err != nil {
		return nil, err
	}
	if cfg.sweepInterval, err = durationFromEnv(sweepIntervalEnvName, defaultSweepInterval); err != nil {
		return nil, err
	}

	path := os.Getenv(gameConfigPathEnvName)
	if len(path) == 0 {
		path = defaultGameConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read game config: %w", err)
	}
	if err := cfg.applyYAML(data); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *gameConfig) applyYAML(data []byte) error {
	var raw gameYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse game config: %w", err)
	}

	g := raw.Game
	d := &cfg.defaults
	if g.Duration != nil {
		d.Duration = *g.Duration
	}
	if g.OperatingHours != nil {
		if g.OperatingHours.Enabled != nil {
			d.OperatingHours.Enabled = *g.OperatingHours.Enabled
		}
		if len(g.OperatingHours.Start) > 0 {
			d.OperatingHours.Start = g.OperatingHours.Start
		}
		if len(g.OperatingHours.End) > 0 {
			d.OperatingHours.End = g.OperatingHours.End
		}
		if _, _, err := d.OperatingHours.Window(); err != nil {
			return fmt.Errorf("game config operating hours: %w", err)
		}
	}
	if g.Difficulty != nil {
		d.DifficultyMultiplier = *g.Difficulty
	}
	if g.AutoDifficulty != nil {
		d.AutoDifficultyEnabled = *g.AutoDifficulty
	}
	if g.AutoDifficultyMaxLimit != nil {
		d.AutoDifficultyMaxLimit = *g.AutoDifficultyMaxLimit
	}
	if g.TotalPrizes != nil {
		d.TotalPrizes = *g.TotalPrizes
	}
	if g.RemainingPrizes != nil {
		d.RemainingPrizes = *g.RemainingPrizes
	}
	if g.PrizeNumbersEnabled != nil {
		d.PrizeNumbersEnabled = *g.PrizeNumbersEnabled
	}
	if g.UniqueNames != nil {
		d.UniqueNames = g.UniqueNames
	}
	if g.Rules != nil {
		if g.Rules.MaxPlaysPerDevice != nil {
			d.Rules.MaxPlaysPerDevice = *g.Rules.MaxPlaysPerDevice
		}
		if g.Rules.MaxWinsPerDevice != nil {
			d.Rules.MaxWinsPerDevice = *g.Rules.MaxWinsPerDevice
		}
		if g.Rules.WhitelistedDevices != nil {
			d.Rules.WhitelistedDevices = g.Rules.WhitelistedDevices
		}
	}
	if len(raw.Admin.DefaultPassword) > 0 {
		cfg.adminPassword = raw.Admin.DefaultPassword
	}
	return nil
}

func durationFromEnv(name string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if len(v) == 0 {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return d, nil
}

func (cfg *gameConfig) Location() *time.Location {
	return cfg.location
}

func (cfg *gameConfig) DefaultSettings() model.Settings {
	return cfg.defaults.Clone()
}

func (cfg *gameConfig) DefaultAdminPassword() string {
	return cfg.adminPassword
}

func (cfg *gameConfig) SessionIdleTTL() time.Duration {
	return cfg.sessionIdleTTL
}

func (cfg *gameConfig) SweepInterval() time.Duration {
	return cfg.sweepInterval
}
