package model

import "time"

// PrizeHistoryEntry Запись о выданном номере приза
type PrizeHistoryEntry struct {
	Number     int
	Timestamp  time.Time
	WinnerName string
	GameLogID  string
}

// PrizeDraw Результат розыгрыша номера. Number == nil - номер не выдан.
type PrizeDraw struct {
	Settings Settings
	Number   *int
	Healed   bool // счетчик оставшихся призов был исправлен
}
