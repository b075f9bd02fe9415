package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "powerrush_backend/internal/api/dto/admin"
	"powerrush_backend/internal/engine/difficulty"
	"powerrush_backend/internal/engine/prize"
	"powerrush_backend/internal/engine/quota"
	"powerrush_backend/internal/model"
	"powerrush_backend/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type gameConfig struct{}

func (gameConfig) Location() *time.Location { return time.UTC }
func (gameConfig) DefaultSettings() model.Settings {
	return model.Settings{Duration: 25, TotalPrizes: 100, RemainingPrizes: 75, Rules: model.GameRules{MaxPlaysPerDevice: 10, MaxWinsPerDevice: 3}}
}
func (gameConfig) DefaultAdminPassword() string  { return "admin123" }
func (gameConfig) SessionIdleTTL() time.Duration { return time.Minute }
func (gameConfig) SweepInterval() time.Duration  { return time.Minute }

// stubAdmin Хранит настройки в памяти и возвращает заданную ошибку
type stubAdmin struct {
	settings model.Settings
	logs     []model.GameLogEntry
	err      error

	lastFilter model.LogFilter
	imported   model.Settings
}

func (s *stubAdmin) Init(context.Context) error { return nil }
func (s *stubAdmin) Settings(context.Context) (model.Settings, error) {
	return s.settings, nil
}
func (s *stubAdmin) UpdateSettings(_ context.Context, next model.Settings) (model.Settings, error) {
	if s.err != nil {
		return model.Settings{}, s.err
	}
	s.settings = next
	return next, nil
}
func (s *stubAdmin) Difficulty(context.Context) (difficulty.Info, int, error) {
	return difficulty.Info{Value: 50, Mode: difficulty.ModeManual, Label: "Medium"}, 40, s.err
}
func (s *stubAdmin) Import(_ context.Context, next model.Settings, logs []model.GameLogEntry) (model.Settings, int, error) {
	s.imported = next
	return next, len(logs), s.err
}
func (s *stubAdmin) AddPrize(_ context.Context, number int) (model.Settings, error) {
	if s.err != nil {
		return model.Settings{}, s.err
	}
	s.settings.PrizeHistory = append(s.settings.PrizeHistory, model.PrizeHistoryEntry{Number: number, Timestamp: now})
	return s.settings, nil
}
func (s *stubAdmin) EditPrize(_ context.Context, oldNumber, newNumber int) (model.Settings, error) {
	if s.err != nil {
		return model.Settings{}, s.err
	}
	for i := range s.settings.PrizeHistory {
		if s.settings.PrizeHistory[i].Number == oldNumber {
			s.settings.PrizeHistory[i].Number = newNumber
		}
	}
	return s.settings, nil
}
func (s *stubAdmin) RemovePrize(context.Context, int) (model.Settings, error) {
	return s.settings, s.err
}
func (s *stubAdmin) ResetPrizes(_ context.Context, clearHistory bool) (model.Settings, error) {
	if clearHistory {
		s.settings.PrizeHistory = nil
	}
	return s.settings, s.err
}
func (s *stubAdmin) SimulateDraw(context.Context) (*int, model.Settings, error) {
	if s.err != nil {
		return nil, model.Settings{}, s.err
	}
	n := 7
	return &n, s.settings, nil
}
func (s *stubAdmin) Whitelist(_ context.Context, deviceID string) (model.GameRules, error) {
	s.settings.Rules.WhitelistedDevices = append(s.settings.Rules.WhitelistedDevices, deviceID)
	return s.settings.Rules, s.err
}
func (s *stubAdmin) Unwhitelist(context.Context, string) (model.GameRules, error) {
	return s.settings.Rules, s.err
}
func (s *stubAdmin) AddName(_ context.Context, name string) ([]string, error) {
	return append(s.settings.UniqueNames, name), s.err
}
func (s *stubAdmin) RemoveName(context.Context, string) ([]string, error) {
	return s.settings.UniqueNames, s.err
}
func (s *stubAdmin) Logs(_ context.Context, filter model.LogFilter) ([]model.GameLogEntry, error) {
	s.lastFilter = filter
	return s.logs, s.err
}
func (s *stubAdmin) ClearLogs(context.Context) error {
	s.logs = nil
	return s.err
}
func (s *stubAdmin) ExportLogs(_ context.Context, filter model.LogFilter, w io.Writer) error {
	s.lastFilter = filter
	if s.err != nil {
		return s.err
	}
	_, err := fmt.Fprint(w, "ID,Player Name\nlog-1,Singa-500\n")
	return err
}
func (s *stubAdmin) Analytics(context.Context) (model.Analytics, error) {
	return model.Analytics{TotalGames: len(s.logs)}, s.err
}
func (s *stubAdmin) Device(_ context.Context, deviceID string) (model.DeviceState, model.Eligibility, error) {
	return model.DeviceState{DeviceID: deviceID}, model.Eligibility{CanPlay: true}, s.err
}

var _ service.AdminService = (*stubAdmin)(nil)

func newRouter(serv *stubAdmin) chi.Router {
	h := NewHandler(HandlerDeps{
		Serv:    serv,
		GameCfg: gameConfig{},
		Clock:   clockwork.NewFakeClockAt(now),
		Logger:  zap.NewNop(),
	})

	r := chi.NewRouter()
	r.Get("/admin/settings", h.GetSettings)
	r.Put("/admin/settings", h.UpdateSettings)
	r.Post("/admin/settings/import", h.Import)
	r.Get("/admin/settings/difficulty", h.Difficulty)
	r.Post("/admin/prizes", h.AddPrize)
	r.Put("/admin/prizes/{number}", h.EditPrize)
	r.Delete("/admin/prizes/{number}", h.RemovePrize)
	r.Post("/admin/prizes/reset", h.ResetPrizes)
	r.Post("/admin/prizes/simulate", h.SimulateDraw)
	r.Post("/admin/whitelist", h.Whitelist)
	r.Delete("/admin/whitelist/{deviceID}", h.Unwhitelist)
	r.Post("/admin/names", h.AddName)
	r.Delete("/admin/names/{name}", h.RemoveName)
	r.Get("/admin/logs", h.Logs)
	r.Delete("/admin/logs", h.ClearLogs)
	r.Get("/admin/logs/export", h.ExportLogs)
	r.Get("/admin/analytics", h.Analytics)
	r.Get("/admin/devices/{deviceID}", h.Device)
	return r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, reader))
	return rec
}

func TestUpdateSettingsKeepsHistory(t *testing.T) {
	serv := &stubAdmin{settings: model.Settings{
		PrizeHistory: []model.PrizeHistoryEntry{{Number: 3, Timestamp: now}},
	}}

	body := `{
		"duration": 30,
		"operating_hours": {"enabled": false, "start": "09:00", "end": "21:00"},
		"difficulty_multiplier": 60,
		"auto_difficulty_enabled": false,
		"auto_difficulty_max_limit": 80,
		"total_prizes": 10,
		"remaining_prizes": 9,
		"prize_numbers_enabled": true,
		"unique_names": ["singa"],
		"rules": {"max_plays_per_device": 5, "max_wins_per_device": 1, "whitelisted_devices": []}
	}`
	rec := do(newRouter(serv), http.MethodPut, "/admin/settings", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var got dto.Settings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 30, got.Duration)
	assert.Equal(t, 9, got.RemainingPrizes)
	require.Len(t, got.PrizeHistory, 1)
	assert.Equal(t, 3, got.PrizeHistory[0].Number)
}

func TestUpdateSettingsInvalid(t *testing.T) {
	serv := &stubAdmin{err: fmt.Errorf("%w: duration must be between 5 and 120 seconds", service.ErrInvalidSettings)}

	rec := do(newRouter(serv), http.MethodPut, "/admin/settings", `{"duration": 1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "duration must be between")
}

func TestPrizeErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		method string
		target string
		body   string
		status int
	}{
		{name: "out of range", err: prize.ErrOutOfRange, method: http.MethodPost, target: "/admin/prizes", body: `{"number":500}`, status: http.StatusBadRequest},
		{name: "duplicate", err: prize.ErrDuplicate, method: http.MethodPost, target: "/admin/prizes", body: `{"number":1}`, status: http.StatusConflict},
		{name: "not found", err: prize.ErrNotFound, method: http.MethodDelete, target: "/admin/prizes/4", status: http.StatusNotFound},
		{name: "exhausted", err: prize.ErrExhausted, method: http.MethodPost, target: "/admin/prizes/simulate", status: http.StatusConflict},
		{name: "bad number", method: http.MethodDelete, target: "/admin/prizes/abc", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(newRouter(&stubAdmin{err: tt.err}), tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestEditPrize(t *testing.T) {
	serv := &stubAdmin{settings: model.Settings{
		PrizeHistory: []model.PrizeHistoryEntry{{Number: 3, Timestamp: now, WinnerName: "Singa-500"}},
	}}

	rec := do(newRouter(serv), http.MethodPut, "/admin/prizes/3", `{"number":8}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got dto.Settings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.PrizeHistory, 1)
	assert.Equal(t, 8, got.PrizeHistory[0].Number)
	assert.Equal(t, "Singa-500", got.PrizeHistory[0].WinnerName)
}

func TestSimulateDraw(t *testing.T) {
	rec := do(newRouter(&stubAdmin{settings: model.Settings{RemainingPrizes: 4}}), http.MethodPost, "/admin/prizes/simulate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"prize_number":7,"remaining_prizes":4}`, rec.Body.String())
}

func TestWhitelist(t *testing.T) {
	rec := do(newRouter(&stubAdmin{}), http.MethodPost, "/admin/whitelist", `{"device_id":"ABC"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got dto.GameRules
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{"ABC"}, got.WhitelistedDevices)

	rec = do(newRouter(&stubAdmin{err: quota.ErrNotWhitelisted}), http.MethodDelete, "/admin/whitelist/XYZ", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(newRouter(&stubAdmin{err: quota.ErrAlreadyWhitelisted}), http.MethodPost, "/admin/whitelist", `{"device_id":"ABC"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestNames(t *testing.T) {
	rec := do(newRouter(&stubAdmin{settings: model.Settings{UniqueNames: []string{"singa"}}}), http.MethodPost, "/admin/names", `{"name":"elang"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["singa","elang"]`, rec.Body.String())

	rec = do(newRouter(&stubAdmin{err: service.ErrDuplicateName}), http.MethodPost, "/admin/names", `{"name":"singa"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(newRouter(&stubAdmin{err: service.ErrNameNotFound}), http.MethodDelete, "/admin/names/harimau", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogsFilters(t *testing.T) {
	serv := &stubAdmin{logs: []model.GameLogEntry{
		{ID: "log-1", PlayerName: "Singa-500", DeviceID: "kiosk-1", Result: model.ResultWin, Timestamp: now},
	}}
	r := newRouter(serv)

	rec := do(r, http.MethodGet, "/admin/logs?result=wins&time=today&search=singa&device=kiosk-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.LogFilter{
		Result:   model.ResultFilterWins,
		Time:     model.TimeFilterToday,
		Search:   "singa",
		DeviceID: "kiosk-1",
	}, serv.lastFilter)

	var got dto.LogsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Total)
	assert.Equal(t, "log-1", got.Logs[0].ID)

	rec = do(r, http.MethodGet, "/admin/logs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.ResultFilterAll, serv.lastFilter.Result)
	assert.Equal(t, model.TimeFilterAll, serv.lastFilter.Time)

	rec = do(r, http.MethodGet, "/admin/logs?time=year", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportLogs(t *testing.T) {
	rec := do(newRouter(&stubAdmin{}), http.MethodGet, "/admin/logs/export?result=losses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "powerrush-logs.csv")
	assert.Contains(t, rec.Body.String(), "log-1,Singa-500")
}

func TestClearLogs(t *testing.T) {
	serv := &stubAdmin{logs: []model.GameLogEntry{{ID: "log-1"}}}
	rec := do(newRouter(serv), http.MethodDelete, "/admin/logs", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, serv.logs)
}

func TestImportUsesDefaults(t *testing.T) {
	serv := &stubAdmin{}
	body := `{"difficultyMultiplier": 5, "gameLogs": [{"id":"1","playerName":"Singa-500","deviceId":"d1","result":"win","timestamp":"2026-03-01T10:00:00Z","batteryLevel":100,"gameDuration":20}]}`

	rec := do(newRouter(serv), http.MethodPost, "/admin/settings/import", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var got dto.ImportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1, got.ImportedLogs)
	assert.Equal(t, 25, serv.imported.Duration)
	assert.Equal(t, 100, serv.imported.TotalPrizes)
}

func TestInternalErrorIsHidden(t *testing.T) {
	rec := do(newRouter(&stubAdmin{err: fmt.Errorf("load game log: %w", io.ErrUnexpectedEOF)}), http.MethodGet, "/admin/analytics", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "unexpected EOF")
}

func TestDevice(t *testing.T) {
	rec := do(newRouter(&stubAdmin{}), http.MethodGet, "/admin/devices/kiosk-9", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"device_id":"kiosk-9"`)
}
