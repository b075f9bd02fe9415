package converter

import (
	dto "powerrush_backend/internal/api/dto/admin"
	"powerrush_backend/internal/engine/difficulty"
	"powerrush_backend/internal/model"
)

// ToSettingsModel Переносит редактируемые поля поверх текущего снимка.
// История призов и журнал меняются только отдельными операциями.
func ToSettingsModel(req dto.Settings, current model.Settings) model.Settings {
	s := current.Clone()
	s.Duration = req.Duration
	s.OperatingHours = model.OperatingHours{
		Enabled: req.OperatingHours.Enabled,
		Start:   req.OperatingHours.Start,
		End:     req.OperatingHours.End,
	}
	s.DifficultyMultiplier = req.DifficultyMultiplier
	s.AutoDifficultyEnabled = req.AutoDifficultyEnabled
	s.AutoDifficultyMaxLimit = req.AutoDifficultyMaxLimit
	s.TotalPrizes = req.TotalPrizes
	s.RemainingPrizes = req.RemainingPrizes
	s.PrizeNumbersEnabled = req.PrizeNumbersEnabled
	s.UniqueNames = append([]string(nil), req.UniqueNames...)
	s.Rules = model.GameRules{
		MaxPlaysPerDevice:  req.Rules.MaxPlaysPerDevice,
		MaxWinsPerDevice:   req.Rules.MaxWinsPerDevice,
		WhitelistedDevices: append([]string(nil), req.Rules.WhitelistedDevices...),
	}
	return s
}

func ToSettingsDTO(s model.Settings) dto.Settings {
	history := make([]dto.PrizeHistoryEntry, 0, len(s.PrizeHistory))
	for _, e := range s.PrizeHistory {
		history = append(history, dto.PrizeHistoryEntry{
			Number:     e.Number,
			Timestamp:  e.Timestamp,
			WinnerName: e.WinnerName,
			GameLogID:  e.GameLogID,
		})
	}
	return dto.Settings{
		Duration: s.Duration,
		OperatingHours: dto.OperatingHours{
			Enabled: s.OperatingHours.Enabled,
			Start:   s.OperatingHours.Start,
			End:     s.OperatingHours.End,
		},
		DifficultyMultiplier:   s.DifficultyMultiplier,
		AutoDifficultyEnabled:  s.AutoDifficultyEnabled,
		AutoDifficultyMaxLimit: s.AutoDifficultyMaxLimit,
		TotalPrizes:            s.TotalPrizes,
		RemainingPrizes:        s.RemainingPrizes,
		PrizeNumbersEnabled:    s.PrizeNumbersEnabled,
		UniqueNames:            nonNil(s.UniqueNames),
		Rules: dto.GameRules{
			MaxPlaysPerDevice:  s.Rules.MaxPlaysPerDevice,
			MaxWinsPerDevice:   s.Rules.MaxWinsPerDevice,
			WhitelistedDevices: nonNil(s.Rules.WhitelistedDevices),
		},
		PrizeHistory: history,
	}
}

func ToDifficultyResponse(info difficulty.Info, winProbability int) dto.DifficultyResponse {
	return dto.DifficultyResponse{
		Value:          info.Value,
		Mode:           string(info.Mode),
		Delta:          info.Delta,
		Label:          info.Label,
		WinProbability: winProbability,
	}
}

func ToAnalyticsResponse(a model.Analytics) dto.AnalyticsResponse {
	hourly := make([]dto.HourActivity, 0, len(a.HourlyActivity))
	for _, h := range a.HourlyActivity {
		hourly = append(hourly, dto.HourActivity{Hour: h.Hour, Games: h.Games, Wins: h.Wins})
	}
	top := make([]dto.DeviceActivity, 0, len(a.TopDevices))
	for _, d := range a.TopDevices {
		top = append(top, dto.DeviceActivity{DeviceID: d.DeviceID, Games: d.Games, Wins: d.Wins})
	}
	return dto.AnalyticsResponse{
		TotalGames:        a.TotalGames,
		TotalWins:         a.TotalWins,
		TotalLosses:       a.TotalLosses,
		WinRate:           a.WinRate,
		UniqueDevices:     a.UniqueDevices,
		TodayGames:        a.TodayGames,
		TodayWins:         a.TodayWins,
		PrizesDistributed: a.PrizesDistributed,
		PrizesRemaining:   a.PrizesRemaining,
		PrizesTotal:       a.PrizesTotal,
		PrizeNumbers:      nonNilInts(a.PrizeNumbers),
		HourlyActivity:    hourly,
		TopDevices:        top,
	}
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}
