// Package quota проверяет лимиты игр и выигрышей на устройство.
package quota

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"powerrush_backend/internal/model"
)

var (
	ErrInvalidDeviceID    = errors.New("device id is empty")
	ErrAlreadyWhitelisted = errors.New("device already whitelisted")
	ErrNotWhitelisted     = errors.New("device is not whitelisted")
)

const recentGamesLimit = 5

// CanPlay Решение о допуске устройства к раунду.
// Результат зависит только от аргументов.
func CanPlay(deviceID string, rules model.GameRules, log []model.GameLogEntry) model.Eligibility {
	if IsWhitelisted(deviceID, rules) {
		return model.Eligibility{CanPlay: true}
	}

	plays, wins := 0, 0
	for _, e := range log {
		if e.DeviceID != deviceID {
			continue
		}
		plays++
		if e.Result == model.ResultWin {
			wins++
		}
	}

	if plays >= rules.MaxPlaysPerDevice {
		return model.Eligibility{
			Reason: fmt.Sprintf("device has reached the max plays limit (%d)", rules.MaxPlaysPerDevice),
		}
	}
	if wins >= rules.MaxWinsPerDevice {
		return model.Eligibility{
			Reason: fmt.Sprintf("device has reached the max wins limit (%d)", rules.MaxWinsPerDevice),
		}
	}
	return model.Eligibility{CanPlay: true}
}

// Stats Статистика устройства по журналу. Журнал ожидается от новых к старым.
func Stats(deviceID string, rules model.GameRules, log []model.GameLogEntry) model.DeviceState {
	st := model.DeviceState{
		DeviceID:      deviceID,
		IsWhitelisted: IsWhitelisted(deviceID, rules),
	}
	for _, e := range log {
		if e.DeviceID != deviceID {
			continue
		}
		st.TotalPlays++
		switch e.Result {
		case model.ResultWin:
			st.TotalWins++
		case model.ResultLoss:
			st.TotalLosses++
		}
		if len(st.RecentGames) < recentGamesLimit {
			st.RecentGames = append(st.RecentGames, e)
		}
	}
	return st
}

func IsWhitelisted(deviceID string, rules model.GameRules) bool {
	id := NormalizeDeviceID(deviceID)
	return slices.ContainsFunc(rules.WhitelistedDevices, func(w string) bool {
		return NormalizeDeviceID(w) == id
	})
}

// NormalizeDeviceID Приводит идентификатор к виду, в котором он хранится в белом списке
func NormalizeDeviceID(deviceID string) string {
	return strings.ToUpper(strings.TrimSpace(deviceID))
}

// Whitelist Добавляет устройство в белый список
func Whitelist(rules model.GameRules, deviceID string) (model.GameRules, error) {
	id := NormalizeDeviceID(deviceID)
	if id == "" {
		return rules, ErrInvalidDeviceID
	}
	if slices.Contains(rules.WhitelistedDevices, id) {
		return rules, fmt.Errorf("%w: %s", ErrAlreadyWhitelisted, id)
	}
	next := rules
	next.WhitelistedDevices = append(slices.Clone(rules.WhitelistedDevices), id)
	return next, nil
}

// Unwhitelist Убирает устройство из белого списка
func Unwhitelist(rules model.GameRules, deviceID string) (model.GameRules, error) {
	id := strings.TrimSpace(deviceID)
	idx := slices.Index(rules.WhitelistedDevices, id)
	if idx < 0 {
		idx = slices.Index(rules.WhitelistedDevices, NormalizeDeviceID(id))
	}
	if idx < 0 {
		return rules, fmt.Errorf("%w: %s", ErrNotWhitelisted, id)
	}
	next := rules
	next.WhitelistedDevices = slices.Delete(slices.Clone(rules.WhitelistedDevices), idx, idx+1)
	return next, nil
}
