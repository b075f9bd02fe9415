package admin

import (
	"encoding/json"
	"time"

	roundDTO "powerrush_backend/internal/api/dto/round"
)

type OperatingHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"` // HH:MM
	End     string `json:"end"`   // HH:MM
}

type GameRules struct {
	MaxPlaysPerDevice  int      `json:"max_plays_per_device"`
	MaxWinsPerDevice   int      `json:"max_wins_per_device"`
	WhitelistedDevices []string `json:"whitelisted_devices"`
}

type PrizeHistoryEntry struct {
	Number     int       `json:"number"`
	Timestamp  time.Time `json:"timestamp"`
	WinnerName string    `json:"winner_name"`
	GameLogID  string    `json:"game_log_id"`
}

type Settings struct {
	Duration               int                 `json:"duration"` // Длительность раунда, сек
	OperatingHours         OperatingHours      `json:"operating_hours"`
	DifficultyMultiplier   float64             `json:"difficulty_multiplier"` // 0-100
	AutoDifficultyEnabled  bool                `json:"auto_difficulty_enabled"`
	AutoDifficultyMaxLimit float64             `json:"auto_difficulty_max_limit"`
	TotalPrizes            int                 `json:"total_prizes"`
	RemainingPrizes        int                 `json:"remaining_prizes"`
	PrizeNumbersEnabled    bool                `json:"prize_numbers_enabled"`
	UniqueNames            []string            `json:"unique_names"`
	Rules                  GameRules           `json:"rules"`
	PrizeHistory           []PrizeHistoryEntry `json:"prize_history,omitempty"` // Только в ответе
}

type DifficultyResponse struct {
	Value          float64 `json:"value"`
	Mode           string  `json:"mode"`
	Delta          float64 `json:"delta"`
	Label          string  `json:"label"`
	WinProbability int     `json:"win_probability"` // Оценка шанса выигрыша, %
}

type PrizeNumberRequest struct {
	Number int `json:"number"`
}

type ResetPrizesRequest struct {
	ClearHistory bool `json:"clear_history"`
}

type SimulateResponse struct {
	PrizeNumber     *int `json:"prize_number"`
	RemainingPrizes int  `json:"remaining_prizes"`
}

type WhitelistRequest struct {
	DeviceID string `json:"device_id"`
}

type NameRequest struct {
	Name string `json:"name"`
}

type LogsResponse struct {
	Total int                `json:"total"`
	Logs  []roundDTO.GameLog `json:"logs"`
}

type HourActivity struct {
	Hour  int `json:"hour"`
	Games int `json:"games"`
	Wins  int `json:"wins"`
}

type DeviceActivity struct {
	DeviceID string `json:"device_id"`
	Games    int    `json:"games"`
	Wins     int    `json:"wins"`
}

type AnalyticsResponse struct {
	TotalGames        int              `json:"total_games"`
	TotalWins         int              `json:"total_wins"`
	TotalLosses       int              `json:"total_losses"`
	WinRate           int              `json:"win_rate"`
	UniqueDevices     int              `json:"unique_devices"`
	TodayGames        int              `json:"today_games"`
	TodayWins         int              `json:"today_wins"`
	PrizesDistributed int              `json:"prizes_distributed"`
	PrizesRemaining   int              `json:"prizes_remaining"`
	PrizesTotal       int              `json:"prizes_total"`
	PrizeNumbers      []int            `json:"prize_numbers"`
	HourlyActivity    []HourActivity   `json:"hourly_activity"`
	TopDevices        []DeviceActivity `json:"top_devices"`
}

// LegacySettings Экспорт настроек старого киоска (localStorage), поля в camelCase.
// Часы работы могли храниться числом, сложность - по шкале 1-10.
type LegacySettings struct {
	Duration               *int                  `json:"duration"`
	OperatingHours         *LegacyOperatingHours `json:"operatingHours"`
	OperatingHoursEnabled  *bool                 `json:"operatingHoursEnabled"`
	DifficultyMultiplier   *float64              `json:"difficultyMultiplier"`
	AutoDifficultyEnabled  *bool                 `json:"autoDifficultyEnabled"`
	AutoDifficultyMaxLimit *float64              `json:"autoDifficultyMaxLimit"`
	TotalPrizes            *int                  `json:"totalPrizes"`
	CurrentPrizes          *int                  `json:"currentPrizes"`
	PrizeNumbersEnabled    *bool                 `json:"prizeNumbersEnabled"`
	UsedPrizeNumbers       []int                 `json:"usedPrizeNumbers"`
	UsedPrizeHistory       []LegacyPrizeEntry    `json:"usedPrizeHistory"`
	UniqueNames            []string              `json:"uniqueNames"`
	GameRules              *LegacyGameRules      `json:"gameRules"`
	GameLogs               []LegacyGameLog       `json:"gameLogs"`
}

type LegacyOperatingHours struct {
	Start json.RawMessage `json:"start"` // "09:00" или 9
	End   json.RawMessage `json:"end"`
}

type LegacyPrizeEntry struct {
	Number     int       `json:"number"`
	Timestamp  time.Time `json:"timestamp"`
	PlayerName string    `json:"playerName"`
	GameLogID  string    `json:"gameLogId"`
}

type LegacyGameRules struct {
	MaxPlaysPerDevice  *int     `json:"maxPlaysPerDevice"`
	MaxWinsPerDevice   *int     `json:"maxWinsPerDevice"`
	WhitelistedDevices []string `json:"whitelistedDevices"`
}

type LegacyGameLog struct {
	ID           string    `json:"id"`
	PlayerName   string    `json:"playerName"`
	DeviceID     string    `json:"deviceId"`
	Result       string    `json:"result"`
	PrizeNumber  *int      `json:"prizeNumber"`
	Timestamp    time.Time `json:"timestamp"`
	BatteryLevel int       `json:"batteryLevel"`
	GameDuration int       `json:"gameDuration"`
}

type ImportResponse struct {
	Settings     Settings `json:"settings"`
	ImportedLogs int      `json:"imported_logs"`
}
