package admin

import (
	"context"
	"testing"
	"time"

	"powerrush_backend/internal/engine/prize"
	"powerrush_backend/internal/engine/quota"
	"powerrush_backend/internal/engine/sampler"
	"powerrush_backend/internal/metrics"
	"powerrush_backend/internal/model"
	"powerrush_backend/internal/repository/repotest"
	"powerrush_backend/internal/service"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type gameConfig struct{}

func (gameConfig) Location() *time.Location        { return time.UTC }
func (gameConfig) DefaultSettings() model.Settings { return defaults() }
func (gameConfig) DefaultAdminPassword() string    { return "admin123" }
func (gameConfig) SessionIdleTTL() time.Duration   { return 10 * time.Minute }
func (gameConfig) SweepInterval() time.Duration    { return time.Minute }

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func defaults() model.Settings {
	return model.Settings{
		Duration:               25,
		OperatingHours:         model.OperatingHours{Enabled: true, Start: "09:00", End: "21:00"},
		DifficultyMultiplier:   50,
		AutoDifficultyEnabled:  true,
		AutoDifficultyMaxLimit: 80,
		TotalPrizes:            10,
		RemainingPrizes:        10,
		PrizeNumbersEnabled:    true,
		UniqueNames:            []string{"singa"},
		Rules:                  model.GameRules{MaxPlaysPerDevice: 10, MaxWinsPerDevice: 3},
	}
}

type fixture struct {
	serv     *serv
	settings *repotest.Settings
	prizes   *repotest.Prizes
	logs     *repotest.GameLogs
}

func newFixture(t *testing.T, stored *model.Settings, log ...model.GameLogEntry) *fixture {
	t.Helper()
	f := &fixture{
		settings: repotest.NewSettings(stored),
		prizes:   repotest.NewPrizes(),
		logs:     repotest.NewGameLogs(log...),
	}
	f.serv = NewAdminService(
		f.settings, f.prizes, f.logs, repotest.TxManager{}, gameConfig{},
		clockwork.NewFakeClockAt(now), &sampler.Sequence{Values: []float64{0}},
		metrics.New(), zap.NewNop(),
	).(*serv)
	return f
}

func stored() *model.Settings {
	s := defaults()
	return &s
}

func TestInitStoresDefaultsOnce(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.serv.Init(ctx))
	require.NotNil(t, f.settings.Current())
	assert.Equal(t, 10, f.settings.Current().RemainingPrizes)

	s := f.settings.Current()
	s.RemainingPrizes = 3
	require.NoError(t, f.settings.Save(ctx, *s))

	require.NoError(t, f.serv.Init(ctx))
	assert.Equal(t, 3, f.settings.Current().RemainingPrizes)
}

func TestUpdateSettingsValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(s *model.Settings)
	}{
		{"duration too short", func(s *model.Settings) { s.Duration = 4 }},
		{"duration too long", func(s *model.Settings) { s.Duration = 121 }},
		{"difficulty above 100", func(s *model.Settings) { s.DifficultyMultiplier = 101 }},
		{"auto limit below 30", func(s *model.Settings) { s.AutoDifficultyMaxLimit = 20 }},
		{"no prizes", func(s *model.Settings) { s.TotalPrizes = 0 }},
		{"remaining above total", func(s *model.Settings) { s.RemainingPrizes = 11 }},
		{"negative remaining", func(s *model.Settings) { s.RemainingPrizes = -1 }},
		{"zero max plays", func(s *model.Settings) { s.Rules.MaxPlaysPerDevice = 0 }},
		{"bad hours", func(s *model.Settings) { s.OperatingHours.Start = "25:00" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, stored())
			s := defaults()
			tt.modify(&s)

			_, err := f.serv.UpdateSettings(context.Background(), s)
			assert.ErrorIs(t, err, service.ErrInvalidSettings)
			assert.Equal(t, 25, f.settings.Current().Duration)
		})
	}
}

func TestUpdateSettingsKeepsHistory(t *testing.T) {
	f := newFixture(t, stored())
	ctx := context.Background()
	_, err := f.serv.AddPrize(ctx, 8)
	require.NoError(t, err)

	s := defaults()
	s.Duration = 30
	s.TotalPrizes = 9
	s.RemainingPrizes = 5
	out, err := f.serv.UpdateSettings(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 30, out.Duration)
	require.Len(t, out.PrizeHistory, 1)

	// Номер 8 вне нового диапазона
	s.TotalPrizes = 7
	_, err = f.serv.UpdateSettings(ctx, s)
	assert.ErrorIs(t, err, service.ErrInvalidSettings)
	assert.ErrorIs(t, err, prize.ErrOutOfRange)
}

func TestPrizeAddRemoveRoundTrip(t *testing.T) {
	f := newFixture(t, stored())
	ctx := context.Background()

	out, err := f.serv.AddPrize(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 9, out.RemainingPrizes)
	require.Len(t, out.PrizeHistory, 1)
	assert.Equal(t, prize.ManualWinner, out.PrizeHistory[0].WinnerName)

	_, err = f.serv.AddPrize(ctx, 4)
	assert.ErrorIs(t, err, prize.ErrDuplicate)

	out, err = f.serv.EditPrize(ctx, 4, 6)
	require.NoError(t, err)
	assert.Equal(t, 6, out.PrizeHistory[0].Number)

	out, err = f.serv.RemovePrize(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, 10, out.RemainingPrizes)
	assert.Empty(t, out.PrizeHistory)

	history, err := f.prizes.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestResetPrizes(t *testing.T) {
	f := newFixture(t, stored())
	ctx := context.Background()
	_, err := f.serv.AddPrize(ctx, 2)
	require.NoError(t, err)

	out, err := f.serv.ResetPrizes(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 10, out.RemainingPrizes)
	assert.Len(t, out.PrizeHistory, 1)

	out, err = f.serv.ResetPrizes(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, out.PrizeHistory)
}

func TestSimulateDraw(t *testing.T) {
	f := newFixture(t, stored())

	number, out, err := f.serv.SimulateDraw(context.Background())
	require.NoError(t, err)
	require.NotNil(t, number)
	assert.Equal(t, 1, *number)
	assert.Equal(t, 9, out.RemainingPrizes)
	require.Len(t, out.PrizeHistory, 1)
	assert.Equal(t, prize.SimulationWinner, out.PrizeHistory[0].WinnerName)
	assert.Equal(t, "admin-sim-1773144000000", out.PrizeHistory[0].GameLogID)
}

func TestSimulateDrawExhausted(t *testing.T) {
	s := defaults()
	s.RemainingPrizes = 0
	f := newFixture(t, &s)

	_, _, err := f.serv.SimulateDraw(context.Background())
	assert.ErrorIs(t, err, prize.ErrExhausted)
}

func TestWhitelist(t *testing.T) {
	f := newFixture(t, stored())
	ctx := context.Background()

	rules, err := f.serv.Whitelist(ctx, " dev-1 ")
	require.NoError(t, err)
	assert.Equal(t, []string{"DEV-1"}, rules.WhitelistedDevices)

	_, err = f.serv.Whitelist(ctx, "DEV-1")
	assert.ErrorIs(t, err, quota.ErrAlreadyWhitelisted)

	rules, err = f.serv.Unwhitelist(ctx, "dev-1")
	require.NoError(t, err)
	assert.Empty(t, rules.WhitelistedDevices)
}

func TestNames(t *testing.T) {
	f := newFixture(t, stored())
	ctx := context.Background()

	names, err := f.serv.AddName(ctx, "  Singa Raja ")
	require.NoError(t, err)
	assert.Equal(t, []string{"singa", "singa-raja"}, names)

	_, err = f.serv.AddName(ctx, "SINGA")
	assert.ErrorIs(t, err, service.ErrDuplicateName)

	_, err = f.serv.AddName(ctx, "   ")
	assert.ErrorIs(t, err, service.ErrInvalidName)

	names, err = f.serv.RemoveName(ctx, "singa")
	require.NoError(t, err)
	assert.Equal(t, []string{"singa-raja"}, names)

	_, err = f.serv.RemoveName(ctx, "buaya")
	assert.ErrorIs(t, err, service.ErrNameNotFound)
}

func TestImport(t *testing.T) {
	f := newFixture(t, stored())
	ctx := context.Background()

	s := defaults()
	s.RemainingPrizes = 8
	s.PrizeHistory = prize.HistoryFromLegacy([]int{3, 5}, now)
	logs := []model.GameLogEntry{{ID: "g1", DeviceID: "DEV-1", Result: model.ResultWin, Timestamp: now}}

	out, imported, err := f.serv.Import(ctx, s, logs)
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.Equal(t, 8, out.RemainingPrizes)
	assert.Len(t, out.PrizeHistory, 2)

	all, err := f.logs.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDevice(t *testing.T) {
	s := defaults()
	s.Rules.MaxWinsPerDevice = 1
	f := newFixture(t, &s,
		model.GameLogEntry{ID: "1", DeviceID: "DEV-1", Result: model.ResultWin, Timestamp: now},
	)

	st, elig, err := f.serv.Device(context.Background(), "DEV-1")
	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalWins)
	assert.False(t, elig.CanPlay)
	assert.Contains(t, elig.Reason, "max wins")
}

func TestClearLogs(t *testing.T) {
	f := newFixture(t, stored(), model.GameLogEntry{ID: "1", DeviceID: "DEV-1", Timestamp: now})
	ctx := context.Background()

	require.NoError(t, f.serv.ClearLogs(ctx))
	log, err := f.serv.Logs(ctx, model.LogFilter{})
	require.NoError(t, err)
	assert.Empty(t, log)
}
