package difficulty

import (
	"math"
	"time"

	"powerrush_backend/internal/model"
)

type Mode string

const (
	ModeManual Mode = "manual"
	ModeAuto   Mode = "auto"
)

// Info Текущая сложность для отображения в админке
type Info struct {
	Value float64
	Mode  Mode
	Delta float64 // отклонение авто от базы, 0 если не больше 5 п.п.
	Label string
}

// Describe Возвращает сложность, режим и подпись
func Describe(s model.Settings, now time.Time) Info {
	if !s.AutoDifficultyEnabled {
		return Info{Value: s.DifficultyMultiplier, Mode: ModeManual, Label: Label(s.DifficultyMultiplier)}
	}
	auto := Auto(s, now)
	info := Info{Value: auto, Mode: ModeAuto, Label: Label(auto)}
	if diff := auto - s.DifficultyMultiplier; math.Abs(diff) > 5 {
		info.Delta = math.Round(diff)
	}
	return info
}

// Label Словесная оценка сложности
func Label(d float64) string {
	switch {
	case d <= 20:
		return "Very Easy"
	case d <= 40:
		return "Easy"
	case d <= 60:
		return "Medium"
	case d <= 80:
		return "Hard"
	default:
		return "Very Hard"
	}
}

// WinProbability Грубая оценка шанса выигрыша в процентах для превью настроек
func WinProbability(s model.Settings, now time.Time) int {
	if !s.OperatingHours.Enabled {
		return int(clamp(math.Round(100-s.DifficultyMultiplier), 0, 100))
	}

	var d float64
	if !s.OperatingHours.Contains(now) {
		d = 95
	} else {
		tp := s.OperatingHours.Progress(now)
		ratio := s.RemainingRatio()
		target := 1 - tp

		factor := 1.0
		if ratio > target+0.2 {
			factor = 0.5 + tp*0.5
		} else if ratio < target-0.2 {
			factor = 1.5 - tp*0.3
		}
		d = clamp((60-tp*40)*factor, 5, 95)
	}

	ratio := s.RemainingRatio()
	if ratio < 0.1 {
		d += 20
	} else if ratio < 0.3 {
		d += 10
	}
	d = clamp(d, 0, 100)
	return int(clamp(math.Round(100-d), 0, 100))
}
