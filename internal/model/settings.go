package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// OperatingHours Окно работы аттракциона в формате "HH:MM"
type OperatingHours struct {
	Enabled bool
	Start   string
	End     string
}

// GameRules Лимиты на устройство и белый список
type GameRules struct {
	MaxPlaysPerDevice  int
	MaxWinsPerDevice   int
	WhitelistedDevices []string
}

// Settings Снимок настроек игры.
// Движок получает его по значению и возвращает новый снимок, исходный не меняется.
type Settings struct {
	Duration               int // секунды
	OperatingHours         OperatingHours
	DifficultyMultiplier   float64 // 0-100
	AutoDifficultyEnabled  bool
	AutoDifficultyMaxLimit float64 // 0 - значение по умолчанию
	TotalPrizes            int
	RemainingPrizes        int
	PrizeNumbersEnabled    bool
	LegacyUsedNumbers      []int // плоский список без истории, из старых версий
	PrizeHistory           []PrizeHistoryEntry
	UniqueNames            []string
	Rules                  GameRules
	GameLog                []GameLogEntry
}

// Clone Глубокая копия снимка
func (s Settings) Clone() Settings {
	c := s
	c.LegacyUsedNumbers = append([]int(nil), s.LegacyUsedNumbers...)
	c.PrizeHistory = append([]PrizeHistoryEntry(nil), s.PrizeHistory...)
	c.UniqueNames = append([]string(nil), s.UniqueNames...)
	c.Rules.WhitelistedDevices = append([]string(nil), s.Rules.WhitelistedDevices...)
	c.GameLog = append([]GameLogEntry(nil), s.GameLog...)
	return c
}

// PrizeProgress Доля выданных призов (0 - все на месте, 1 - все выданы)
func (s Settings) PrizeProgress() float64 {
	if s.TotalPrizes <= 0 {
		return 1
	}
	return clamp01(float64(s.TotalPrizes-s.RemainingPrizes) / float64(s.TotalPrizes))
}

// RemainingRatio Доля оставшихся призов
func (s Settings) RemainingRatio() float64 {
	if s.TotalPrizes <= 0 {
		return 0
	}
	return clamp01(float64(s.RemainingPrizes) / float64(s.TotalPrizes))
}

// ParseClock Разбирает "HH:MM" в минуты от начала суток
func ParseClock(v string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(v), ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", v)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", v)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", v)
	}
	return h*60 + m, nil
}

// FormatHour Переводит числовой час старого формата в "HH:00"
func FormatHour(h int) string {
	return fmt.Sprintf("%02d:00", ((h%24)+24)%24)
}

// Window Границы окна в минутах
func (h OperatingHours) Window() (start, end int, err error) {
	start, err = ParseClock(h.Start)
	if err != nil {
		return 0, 0, err
	}
	end, err = ParseClock(h.End)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// Contains Попадает ли момент в окно (границы включительно, по минутам).
// Окно с концом раньше начала переходит через полночь.
func (h OperatingHours) Contains(t time.Time) bool {
	start, end, err := h.Window()
	if err != nil {
		return false
	}
	cur := t.Hour()*60 + t.Minute()
	if start <= end {
		return cur >= start && cur <= end
	}
	return cur >= start || cur <= end
}

// IsOpen Можно ли играть в данный момент с учетом флага Enabled
func (h OperatingHours) IsOpen(t time.Time) bool {
	if !h.Enabled {
		return true
	}
	return h.Contains(t)
}

// Progress Доля прошедшего времени окна, 0..1
func (h OperatingHours) Progress(t time.Time) float64 {
	start, end, err := h.Window()
	if err != nil {
		return 0
	}
	total := end - start
	if total < 0 {
		total += minutesPerDay
	}
	if total == 0 {
		return 1
	}
	elapsed := t.Hour()*60 + t.Minute() - start
	if elapsed < 0 {
		elapsed += minutesPerDay
	}
	return clamp01(float64(elapsed) / float64(total))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
