// Package prize ведет пул номеров призов: розыгрыш, ручные правки, восстановление счетчика.
package prize

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"powerrush_backend/internal/engine/sampler"
	"powerrush_backend/internal/model"
)

var (
	ErrOutOfRange = errors.New("prize number out of range")
	ErrDuplicate  = errors.New("prize number already used")
	ErrNotFound   = errors.New("prize number not found in history")
	ErrExhausted  = errors.New("no prize numbers available")
)

const (
	LegacyWinner     = "Legacy"
	ManualWinner     = "Admin (Manual)"
	SimulationWinner = "Admin (Simulasi)"

	legacyStep = time.Minute
)

// SimulationLogID Идентификатор тестового розыгрыша из админки
func SimulationLogID(now time.Time) string {
	return fmt.Sprintf("admin-sim-%d", now.UnixMilli())
}

// ManualLogID Идентификатор ручной записи
func ManualLogID(now time.Time) string {
	return fmt.Sprintf("admin-manual-%d", now.UnixMilli())
}

// Winner Кто и в каком раунде получает номер
type Winner struct {
	Name      string
	GameLogID string
}

// UsedNumbers Занятые номера: из истории, а если она пуста - из старого списка
func UsedNumbers(s model.Settings) []int {
	if len(s.PrizeHistory) > 0 {
		used := make([]int, 0, len(s.PrizeHistory))
		for _, e := range s.PrizeHistory {
			used = append(used, e.Number)
		}
		return used
	}
	return append([]int(nil), s.LegacyUsedNumbers...)
}

// Available Свободные номера по возрастанию
func Available(s model.Settings) []int {
	used := make(map[int]struct{}, len(s.PrizeHistory)+len(s.LegacyUsedNumbers))
	for _, n := range UsedNumbers(s) {
		used[n] = struct{}{}
	}
	free := make([]int, 0, max(0, s.TotalPrizes-len(used)))
	for n := 1; n <= s.TotalPrizes; n++ {
		if _, ok := used[n]; !ok {
			free = append(free, n)
		}
	}
	return free
}

// Draw Разыгрывает свободный номер. Входной снимок не меняется.
func Draw(s model.Settings, src sampler.Source, w Winner, now time.Time) model.PrizeDraw {
	// 1. Функция выключена или призы закончились
	if !s.PrizeNumbersEnabled || s.RemainingPrizes <= 0 {
		return model.PrizeDraw{Settings: s}
	}

	next := normalize(s.Clone(), now)

	// 2. Свободные номера
	free := Available(next)

	// 3. Счетчик расходится с пулом - чиним
	if len(free) == 0 {
		next.RemainingPrizes = 0
		return model.PrizeDraw{Settings: next, Healed: true}
	}

	// 4. Выбор и запись в историю
	number := free[sampler.Intn(src, len(free))]
	next.RemainingPrizes = max(0, next.RemainingPrizes-1)
	next.PrizeHistory = prepend(next.PrizeHistory, model.PrizeHistoryEntry{
		Number:     number,
		Timestamp:  now,
		WinnerName: w.Name,
		GameLogID:  w.GameLogID,
	})
	next.LegacyUsedNumbers = sortedNumbers(next.PrizeHistory)

	return model.PrizeDraw{Settings: next, Number: &number}
}

// Add Ручное добавление номера в историю
func Add(s model.Settings, number int, now time.Time) (model.Settings, error) {
	if err := checkRange(s, number); err != nil {
		return s, err
	}
	if slices.Contains(UsedNumbers(s), number) {
		return s, fmt.Errorf("%w: %d", ErrDuplicate, number)
	}

	next := normalize(s.Clone(), now)
	next.PrizeHistory = prepend(next.PrizeHistory, model.PrizeHistoryEntry{
		Number:     number,
		Timestamp:  now,
		WinnerName: ManualWinner,
		GameLogID:  ManualLogID(now),
	})
	next.RemainingPrizes = max(0, next.RemainingPrizes-1)
	next.LegacyUsedNumbers = sortedNumbers(next.PrizeHistory)
	return next, nil
}

// Edit Меняет номер в существующей записи
func Edit(s model.Settings, oldNumber, newNumber int, now time.Time) (model.Settings, error) {
	if err := checkRange(s, newNumber); err != nil {
		return s, err
	}

	next := normalize(s.Clone(), now)
	idx := slices.IndexFunc(next.PrizeHistory, func(e model.PrizeHistoryEntry) bool { return e.Number == oldNumber })
	if idx < 0 {
		return s, fmt.Errorf("%w: %d", ErrNotFound, oldNumber)
	}
	if newNumber == oldNumber {
		return next, nil
	}
	if slices.Contains(UsedNumbers(next), newNumber) {
		return s, fmt.Errorf("%w: %d", ErrDuplicate, newNumber)
	}

	next.PrizeHistory[idx].Number = newNumber
	next.LegacyUsedNumbers = sortedNumbers(next.PrizeHistory)
	return next, nil
}

// Remove Удаляет номер из истории и возвращает один приз в пул
func Remove(s model.Settings, number int, now time.Time) (model.Settings, error) {
	next := normalize(s.Clone(), now)
	idx := slices.IndexFunc(next.PrizeHistory, func(e model.PrizeHistoryEntry) bool { return e.Number == number })
	if idx < 0 {
		return s, fmt.Errorf("%w: %d", ErrNotFound, number)
	}

	next.PrizeHistory = slices.Delete(next.PrizeHistory, idx, idx+1)
	next.RemainingPrizes = min(next.TotalPrizes, next.RemainingPrizes+1)
	next.LegacyUsedNumbers = sortedNumbers(next.PrizeHistory)
	return next, nil
}

// Reset Восстанавливает пул полностью, историю чистит по запросу
func Reset(s model.Settings, clearHistory bool) model.Settings {
	next := s.Clone()
	next.RemainingPrizes = next.TotalPrizes
	if clearHistory {
		next.PrizeHistory = nil
		next.LegacyUsedNumbers = nil
	}
	return next
}

// Validate Проверяет, что занятые номера уникальны и лежат в [1, total]
func Validate(s model.Settings) error {
	seen := make(map[int]struct{})
	for _, n := range UsedNumbers(s) {
		if n < 1 || n > s.TotalPrizes {
			return fmt.Errorf("%w: %d", ErrOutOfRange, n)
		}
		if _, ok := seen[n]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicate, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

// HistoryFromLegacy Переводит плоский список номеров в историю.
// Время записей расставляется по минуте назад от now, последний номер - самый свежий.
func HistoryFromLegacy(numbers []int, now time.Time) []model.PrizeHistoryEntry {
	history := make([]model.PrizeHistoryEntry, 0, len(numbers))
	for i, n := range numbers {
		history = append(history, model.PrizeHistoryEntry{
			Number:     n,
			Timestamp:  now.Add(-time.Duration(len(numbers)-i) * legacyStep),
			WinnerName: LegacyWinner,
			GameLogID:  fmt.Sprintf("legacy-%d", n),
		})
	}
	return history
}

// normalize Переносит старый список в историю, чтобы правки не теряли занятые номера
func normalize(s model.Settings, now time.Time) model.Settings {
	if len(s.PrizeHistory) == 0 && len(s.LegacyUsedNumbers) > 0 {
		s.PrizeHistory = HistoryFromLegacy(s.LegacyUsedNumbers, now)
	}
	return s
}

func checkRange(s model.Settings, number int) error {
	if number < 1 || number > s.TotalPrizes {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrOutOfRange, number, s.TotalPrizes)
	}
	return nil
}

func prepend(history []model.PrizeHistoryEntry, e model.PrizeHistoryEntry) []model.PrizeHistoryEntry {
	return append([]model.PrizeHistoryEntry{e}, history...)
}

func sortedNumbers(history []model.PrizeHistoryEntry) []int {
	nums := make([]int, 0, len(history))
	for _, e := range history {
		nums = append(nums, e.Number)
	}
	slices.Sort(nums)
	return nums
}
