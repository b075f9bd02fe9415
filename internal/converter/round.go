package converter

import (
	"time"

	dto "powerrush_backend/internal/api/dto/round"
	"powerrush_backend/internal/engine/round"
	"powerrush_backend/internal/model"
)

func ToStateResponse(s round.Snapshot) dto.StateResponse {
	return dto.StateResponse{
		State:          string(s.State),
		PlayerName:     s.PlayerName,
		Countdown:      s.Countdown,
		TimeLeft:       s.TimeLeft,
		Taps:           s.Taps,
		Battery:        s.Battery,
		ContinueIn:     s.ContinueIn,
		CanContinue:    s.CanContinue,
		Won:            s.Won,
		PrizeNumber:    s.PrizeNumber,
		BlockReason:    s.BlockReason,
		PenalizedUntil: optionalTime(s.PenalizedUntil, s.UpdatedAt),
		Spamming:       s.Spamming,
	}
}

func ToTapResponse(r round.TapResult) dto.TapResponse {
	verdict := string(r.Click.Verdict)
	if verdict == "" {
		verdict = "ignored"
	}
	return dto.TapResponse{
		Accepted:       r.Click.Accepted,
		Verdict:        verdict,
		PenalizedUntil: optionalTime(r.Click.PenalizedUntil, time.Time{}),
		State:          ToStateResponse(r.Snapshot),
	}
}

func ToGameLog(e model.GameLogEntry) dto.GameLog {
	return dto.GameLog{
		ID:              e.ID,
		PlayerName:      e.PlayerName,
		DeviceID:        e.DeviceID,
		Result:          string(e.Result),
		PrizeNumber:     e.PrizeNumber,
		Timestamp:       e.Timestamp,
		BatteryLevel:    e.BatteryLevel,
		DurationSeconds: e.DurationSeconds,
	}
}

func ToGameLogs(entries []model.GameLogEntry) []dto.GameLog {
	out := make([]dto.GameLog, 0, len(entries))
	for _, e := range entries {
		out = append(out, ToGameLog(e))
	}
	return out
}

func ToDeviceStatsResponse(st model.DeviceState, elig model.Eligibility) dto.DeviceStatsResponse {
	return dto.DeviceStatsResponse{
		DeviceID:      st.DeviceID,
		TotalPlays:    st.TotalPlays,
		TotalWins:     st.TotalWins,
		TotalLosses:   st.TotalLosses,
		IsWhitelisted: st.IsWhitelisted,
		CanPlay:       elig.CanPlay,
		Reason:        elig.Reason,
		RecentGames:   ToGameLogs(st.RecentGames),
	}
}

// optionalTime Время штрафа отдаем только если оно еще не прошло
func optionalTime(t, now time.Time) *time.Time {
	if t.IsZero() || (!now.IsZero() && !t.After(now)) {
		return nil
	}
	return &t
}
