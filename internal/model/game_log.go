package model

import "time"

type GameResult string

const (
	ResultWin  GameResult = "win"
	ResultLoss GameResult = "loss"
)

// GameLogEntry Запись о завершенном раунде
type GameLogEntry struct {
	ID              string
	PlayerName      string
	DeviceID        string
	Result          GameResult
	PrizeNumber     *int
	Timestamp       time.Time
	BatteryLevel    int
	DurationSeconds int
}

// DeviceState Статистика устройства, вычисляется по журналу
type DeviceState struct {
	DeviceID      string
	TotalPlays    int
	TotalWins     int
	TotalLosses   int
	IsWhitelisted bool
	RecentGames   []GameLogEntry
}

// Eligibility Может ли устройство начать раунд
type Eligibility struct {
	CanPlay bool
	Reason  string
}

type ResultFilter string

const (
	ResultFilterAll    ResultFilter = "all"
	ResultFilterWins   ResultFilter = "wins"
	ResultFilterLosses ResultFilter = "losses"
)

type TimeFilter string

const (
	TimeFilterAll   TimeFilter = "all"
	TimeFilterToday TimeFilter = "today"
	TimeFilterWeek  TimeFilter = "week"
	TimeFilterMonth TimeFilter = "month"
)

// LogFilter Параметры выборки журнала в админке
type LogFilter struct {
	Result   ResultFilter
	Time     TimeFilter
	Search   string
	DeviceID string
}

// Analytics Сводка для админки
type Analytics struct {
	TotalGames        int
	TotalWins         int
	TotalLosses       int
	WinRate           int // проценты
	UniqueDevices     int
	TodayGames        int
	TodayWins         int
	PrizesDistributed int
	PrizesRemaining   int
	PrizesTotal       int
	PrizeNumbers      []int
	HourlyActivity    [24]HourActivity
	TopDevices        []DeviceActivity
}

type HourActivity struct {
	Hour  int
	Games int
	Wins  int
}

type DeviceActivity struct {
	DeviceID string
	Games    int
	Wins     int
}
