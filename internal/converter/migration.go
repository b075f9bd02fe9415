package converter

import (
	"encoding/json"
	"strings"
	"time"

	dto "powerrush_backend/internal/api/dto/admin"
	"powerrush_backend/internal/engine/prize"
	"powerrush_backend/internal/model"
)

// legacyDifficultyScale Сложность не выше этого значения считается старой шкалой 1-10
const legacyDifficultyScale = 10

// MigrateSettings Приводит сохраненные старым киоском настройки к текущему виду.
// Отсутствующие поля берутся из defaults, журнал возвращается отдельно.
func MigrateSettings(l dto.LegacySettings, defaults model.Settings, now time.Time) (model.Settings, []model.GameLogEntry) {
	s := defaults.Clone()
	s.PrizeHistory = nil
	s.LegacyUsedNumbers = nil
	s.GameLog = nil

	if l.Duration != nil {
		s.Duration = *l.Duration
	}
	if l.OperatingHours != nil {
		if v, ok := legacyHour(l.OperatingHours.Start); ok {
			s.OperatingHours.Start = v
		}
		if v, ok := legacyHour(l.OperatingHours.End); ok {
			s.OperatingHours.End = v
		}
	}
	if l.OperatingHoursEnabled != nil {
		s.OperatingHours.Enabled = *l.OperatingHoursEnabled
	}
	if l.DifficultyMultiplier != nil {
		s.DifficultyMultiplier = MigrateDifficulty(*l.DifficultyMultiplier)
	}
	if l.AutoDifficultyEnabled != nil {
		s.AutoDifficultyEnabled = *l.AutoDifficultyEnabled
	}
	if l.AutoDifficultyMaxLimit != nil {
		s.AutoDifficultyMaxLimit = *l.AutoDifficultyMaxLimit
	}
	if l.TotalPrizes != nil {
		s.TotalPrizes = *l.TotalPrizes
	}
	if l.CurrentPrizes != nil {
		s.RemainingPrizes = *l.CurrentPrizes
	}
	if l.PrizeNumbersEnabled != nil {
		s.PrizeNumbersEnabled = *l.PrizeNumbersEnabled
	}
	if l.UniqueNames != nil {
		s.UniqueNames = append([]string(nil), l.UniqueNames...)
	}
	if l.GameRules != nil {
		if l.GameRules.MaxPlaysPerDevice != nil {
			s.Rules.MaxPlaysPerDevice = *l.GameRules.MaxPlaysPerDevice
		}
		if l.GameRules.MaxWinsPerDevice != nil {
			s.Rules.MaxWinsPerDevice = *l.GameRules.MaxWinsPerDevice
		}
		if l.GameRules.WhitelistedDevices != nil {
			s.Rules.WhitelistedDevices = append([]string(nil), l.GameRules.WhitelistedDevices...)
		}
	}

	// История призов: новая форма или плоский список номеров
	s.LegacyUsedNumbers = append([]int(nil), l.UsedPrizeNumbers...)
	if len(l.UsedPrizeHistory) > 0 {
		for _, e := range l.UsedPrizeHistory {
			s.PrizeHistory = append(s.PrizeHistory, model.PrizeHistoryEntry{
				Number:     e.Number,
				Timestamp:  e.Timestamp,
				WinnerName: e.PlayerName,
				GameLogID:  e.GameLogID,
			})
		}
	} else if len(l.UsedPrizeNumbers) > 0 {
		s.PrizeHistory = prize.HistoryFromLegacy(l.UsedPrizeNumbers, now)
	}

	logs := make([]model.GameLogEntry, 0, len(l.GameLogs))
	for _, e := range l.GameLogs {
		result := model.ResultLoss
		if e.Result == string(model.ResultWin) {
			result = model.ResultWin
		}
		logs = append(logs, model.GameLogEntry{
			ID:              e.ID,
			PlayerName:      e.PlayerName,
			DeviceID:        e.DeviceID,
			Result:          result,
			PrizeNumber:     e.PrizeNumber,
			Timestamp:       e.Timestamp,
			BatteryLevel:    e.BatteryLevel,
			DurationSeconds: e.GameDuration,
		})
	}

	return s, logs
}

// MigrateDifficulty Переводит шкалу 1-10 в проценты: (old-1)/9*100
func MigrateDifficulty(d float64) float64 {
	if d > 0 && d <= legacyDifficultyScale {
		return (d - 1) / 9 * 100
	}
	return d
}

// legacyHour Час работы мог быть числом (9) или строкой ("09:00")
func legacyHour(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	var h float64
	if err := json.Unmarshal(raw, &h); err == nil {
		return model.FormatHour(int(h)), true
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	v = strings.TrimSpace(v)
	if _, err := model.ParseClock(v); err != nil {
		return "", false
	}
	return v, true
}
