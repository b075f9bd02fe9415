package round

import "time"

type KeyRequest struct {
	Down   bool `json:"down"`   // true - keydown, false - keyup
	Repeat bool `json:"repeat"` // автоповтор удерживаемой клавиши
}

type StateResponse struct {
	State          string     `json:"state"`
	PlayerName     string     `json:"player_name,omitempty"`
	Countdown      int        `json:"countdown"`
	TimeLeft       int        `json:"time_left"`
	Taps           int        `json:"taps"`
	Battery        float64    `json:"battery"`     // Уровень заряда 0-100
	ContinueIn     int        `json:"continue_in"` // Секунд до разблокировки продолжения
	CanContinue    bool       `json:"can_continue"`
	Won            bool       `json:"won"`
	PrizeNumber    *int       `json:"prize_number,omitempty"`
	BlockReason    string     `json:"block_reason,omitempty"`
	PenalizedUntil *time.Time `json:"penalized_until,omitempty"`
	Spamming       bool       `json:"spamming"`
}

type TapResponse struct {
	Accepted       bool          `json:"accepted"`
	Verdict        string        `json:"verdict"`
	PenalizedUntil *time.Time    `json:"penalized_until,omitempty"`
	State          StateResponse `json:"state"`
}

type GameLog struct {
	ID              string    `json:"id"`
	PlayerName      string    `json:"player_name"`
	DeviceID        string    `json:"device_id"`
	Result          string    `json:"result"`
	PrizeNumber     *int      `json:"prize_number,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
	BatteryLevel    int       `json:"battery_level"`
	DurationSeconds int       `json:"duration_seconds"`
}

type DeviceStatsResponse struct {
	DeviceID      string    `json:"device_id"`
	TotalPlays    int       `json:"total_plays"`
	TotalWins     int       `json:"total_wins"`
	TotalLosses   int       `json:"total_losses"`
	IsWhitelisted bool      `json:"is_whitelisted"`
	CanPlay       bool      `json:"can_play"`
	Reason        string    `json:"reason,omitempty"`
	RecentGames   []GameLog `json:"recent_games"`
}

// ErrorResponse Ошибка действия вместе с текущим состоянием раунда
type ErrorResponse struct {
	Error string        `json:"error"`
	State StateResponse `json:"state"`
}
