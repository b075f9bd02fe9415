package admin

import (
	"cmp"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"powerrush_backend/internal/model"

	"go.uber.org/zap"
)

const topDevicesLimit = 10

var csvHeader = []string{
	"ID", "Player Name", "Device ID", "Result", "Prize Number", "Battery Level", "Duration (s)", "Timestamp",
}

// Logs Журнал с фильтрами, новые записи первыми
func (s *serv) Logs(ctx context.Context, filter model.LogFilter) ([]model.GameLogEntry, error) {
	log, err := s.gameLogRepo.List(ctx, filter.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("load game log: %w", err)
	}
	return FilterLogs(log, filter, s.now()), nil
}

// ClearLogs Очищает журнал. Лимиты устройств считаются по журналу и тоже обнуляются
func (s *serv) ClearLogs(ctx context.Context) error {
	if err := s.gameLogRepo.Clear(ctx); err != nil {
		return fmt.Errorf("clear game log: %w", err)
	}
	s.logger.Info("game log cleared")
	return nil
}

// ExportLogs Пишет отфильтрованный журнал в CSV
func (s *serv) ExportLogs(ctx context.Context, filter model.LogFilter, w io.Writer) error {
	log, err := s.Logs(ctx, filter)
	if err != nil {
		return err
	}
	return WriteCSV(w, log, s.gameCfg.Location())
}

// Analytics Сводка по журналу и пулу призов
func (s *serv) Analytics(ctx context.Context) (model.Analytics, error) {
	settings, err := s.load(ctx, s.settingsRepo.Get)
	if err != nil {
		return model.Analytics{}, err
	}
	log, err := s.gameLogRepo.List(ctx, "")
	if err != nil {
		return model.Analytics{}, fmt.Errorf("load game log: %w", err)
	}

	a := BuildAnalytics(log, settings, s.now())
	s.logger.Debug("analytics built", zap.Int("total_games", a.TotalGames))
	return a, nil
}

// FilterLogs Фильтр по результату, периоду, строке поиска и устройству.
// Период today - текущие календарные сутки, week - 7 дней, month - месяц назад от now
func FilterLogs(log []model.GameLogEntry, f model.LogFilter, now time.Time) []model.GameLogEntry {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]model.GameLogEntry, 0, len(log))
	for _, e := range log {
		switch f.Result {
		case model.ResultFilterWins:
			if e.Result != model.ResultWin {
				continue
			}
		case model.ResultFilterLosses:
			if e.Result != model.ResultLoss {
				continue
			}
		}

		if !inPeriod(e.Timestamp, f.Time, now) {
			continue
		}

		if search != "" &&
			!strings.Contains(strings.ToLower(e.PlayerName), search) &&
			!strings.Contains(strings.ToLower(e.DeviceID), search) &&
			!strings.Contains(string(e.Result), search) {
			continue
		}

		if f.DeviceID != "" && e.DeviceID != f.DeviceID {
			continue
		}
		out = append(out, e)
	}
	return out
}

func inPeriod(ts time.Time, period model.TimeFilter, now time.Time) bool {
	switch period {
	case model.TimeFilterToday:
		return sameDay(ts, now)
	case model.TimeFilterWeek:
		return !ts.Before(now.AddDate(0, 0, -7))
	case model.TimeFilterMonth:
		return !ts.Before(now.AddDate(0, -1, 0))
	}
	return true
}

func sameDay(ts, now time.Time) bool {
	y1, m1, d1 := ts.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// WriteCSV Журнал в CSV, время в часовом поясе площадки
func WriteCSV(w io.Writer, log []model.GameLogEntry, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range log {
		prizeNumber := ""
		if e.PrizeNumber != nil {
			prizeNumber = strconv.Itoa(*e.PrizeNumber)
		}
		record := []string{
			e.ID,
			e.PlayerName,
			e.DeviceID,
			string(e.Result),
			prizeNumber,
			strconv.Itoa(e.BatteryLevel),
			strconv.Itoa(e.DurationSeconds),
			e.Timestamp.In(loc).Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// BuildAnalytics Сводка для админки. Журнал ожидается от новых к старым,
// при равном числе игр устройства идут в порядке последней активности
func BuildAnalytics(log []model.GameLogEntry, s model.Settings, now time.Time) model.Analytics {
	a := model.Analytics{
		TotalGames:        len(log),
		PrizesDistributed: max(0, s.TotalPrizes-s.RemainingPrizes),
		PrizesRemaining:   s.RemainingPrizes,
		PrizesTotal:       s.TotalPrizes,
		PrizeNumbers:      make([]int, 0),
		TopDevices:        make([]model.DeviceActivity, 0),
	}
	for h := range a.HourlyActivity {
		a.HourlyActivity[h].Hour = h
	}

	devices := make(map[string]int)
	for _, e := range log {
		win := e.Result == model.ResultWin
		if win {
			a.TotalWins++
		} else {
			a.TotalLosses++
		}

		if sameDay(e.Timestamp, now) {
			a.TodayGames++
			if win {
				a.TodayWins++
			}
		}

		hour := e.Timestamp.In(now.Location()).Hour()
		a.HourlyActivity[hour].Games++
		if win {
			a.HourlyActivity[hour].Wins++
		}

		if e.PrizeNumber != nil {
			a.PrizeNumbers = append(a.PrizeNumbers, *e.PrizeNumber)
		}

		idx, ok := devices[e.DeviceID]
		if !ok {
			idx = len(a.TopDevices)
			devices[e.DeviceID] = idx
			a.TopDevices = append(a.TopDevices, model.DeviceActivity{DeviceID: e.DeviceID})
		}
		a.TopDevices[idx].Games++
		if win {
			a.TopDevices[idx].Wins++
		}
	}

	a.UniqueDevices = len(devices)
	if a.TotalGames > 0 {
		a.WinRate = int(math.Round(float64(a.TotalWins) / float64(a.TotalGames) * 100))
	}
	slices.Sort(a.PrizeNumbers)
	slices.SortStableFunc(a.TopDevices, func(x, y model.DeviceActivity) int {
		return cmp.Compare(y.Games, x.Games)
	})
	if len(a.TopDevices) > topDevicesLimit {
		a.TopDevices = a.TopDevices[:topDevicesLimit]
	}
	return a
}
