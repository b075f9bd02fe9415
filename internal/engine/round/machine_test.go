package round

import (
	"context"
	"sync"
	"testing"
	"time"

	"powerrush_backend/internal/engine/sampler"
	"powerrush_backend/internal/model"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock interface {
	clockwork.Clock
	Advance(d time.Duration)
	BlockUntilContext(ctx context.Context, n int) error
}

type recorder struct {
	mu       sync.Mutex
	outcomes []Outcome
	prize    *int
}

func (r *recorder) Record(o Outcome) *int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
	if o.Result == model.ResultWin {
		return r.prize
	}
	return nil
}

func (r *recorder) last() (Outcome, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.outcomes) == 0 {
		return Outcome{}, 0
	}
	return r.outcomes[len(r.outcomes)-1], len(r.outcomes)
}

var (
	start    = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	eligible = model.Eligibility{CanPlay: true}
)

func gameSettings() model.Settings {
	return model.Settings{
		Duration:            5,
		TotalPrizes:         10,
		RemainingPrizes:     10,
		PrizeNumbersEnabled: true,
		UniqueNames:         []string{"singa"},
	}
}

// Имя: индекс 0 и номер 500; без всплеска; минимум треугольного распределения
func fixedSource() sampler.Source {
	return &sampler.Sequence{Values: []float64{0, 0.5, 0.5, 0}}
}

func newMachine(t *testing.T) (*Machine, fakeClock, *recorder) {
	t.Helper()
	fc := clockwork.NewFakeClockAt(start)
	prize := 7
	rec := &recorder{prize: &prize}
	m := NewMachine("DEV-1", fc, fixedSource(), rec)
	t.Cleanup(m.Stop)
	return m, fc, rec
}

func advance(t *testing.T, fc fakeClock) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	fc.Advance(time.Second)
}

func waitFor(t *testing.T, m *Machine, cond func(Snapshot) bool) {
	t.Helper()
	require.Eventually(t, func() bool { return cond(m.Snapshot()) }, 2*time.Second, time.Millisecond)
}

func toPlaying(t *testing.T, m *Machine, fc fakeClock) {
	t.Helper()
	_, err := m.Start(gameSettings(), eligible)
	require.NoError(t, err)
	for i := 0; i < CountdownSeconds; i++ {
		advance(t, fc)
	}
	waitFor(t, m, func(s Snapshot) bool { return s.State == StatePlaying })
}

func TestStartCountsDown(t *testing.T) {
	m, fc, _ := newMachine(t)

	snap, err := m.Start(gameSettings(), eligible)
	require.NoError(t, err)
	assert.Equal(t, StateCountdown, snap.State)
	assert.Equal(t, CountdownSeconds, snap.Countdown)
	assert.Equal(t, "Singa-500", snap.PlayerName)
	assert.Equal(t, 10, snap.RequiredClicks)

	advance(t, fc)
	waitFor(t, m, func(s Snapshot) bool { return s.Countdown == 2 })

	advance(t, fc)
	advance(t, fc)
	waitFor(t, m, func(s Snapshot) bool { return s.State == StatePlaying })
	assert.Equal(t, 5, m.Snapshot().TimeLeft)
}

func TestWinOnRequiredTaps(t *testing.T) {
	m, fc, rec := newMachine(t)
	toPlaying(t, m, fc)

	var res TapResult
	var err error
	for i := 0; i < 10; i++ {
		if i > 0 {
			fc.Advance(100 * time.Millisecond)
		}
		res, err = m.Tap()
		require.NoError(t, err)
		require.True(t, res.Click.Accepted, "tap %d", i)
		if i < 9 {
			require.Less(t, res.Snapshot.Battery, 99.01)
		}
	}

	snap := res.Snapshot
	assert.Equal(t, StateResult, snap.State)
	assert.True(t, snap.Won)
	assert.Equal(t, 100.0, snap.Battery)
	require.NotNil(t, snap.PrizeNumber)
	assert.Equal(t, 7, *snap.PrizeNumber)
	assert.False(t, snap.CanContinue)

	out, n := rec.last()
	require.Equal(t, 1, n)
	assert.Equal(t, model.ResultWin, out.Result)
	assert.Equal(t, 100, out.BatteryLevel)
	assert.Equal(t, 4, out.DurationSeconds)
	assert.Equal(t, "Singa-500", out.PlayerName)

	_, err = m.Tap()
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestLossOnTimeout(t *testing.T) {
	m, fc, rec := newMachine(t)
	toPlaying(t, m, fc)

	_, err := m.Tap()
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		advance(t, fc)
	}
	waitFor(t, m, func(s Snapshot) bool { return s.State == StateResult })

	snap := m.Snapshot()
	assert.False(t, snap.Won)
	assert.Nil(t, snap.PrizeNumber)
	assert.Equal(t, 0, snap.TimeLeft)

	out, n := rec.last()
	require.Equal(t, 1, n)
	assert.Equal(t, model.ResultLoss, out.Result)
	assert.Equal(t, 8, out.DurationSeconds)
	assert.Equal(t, int(Progress(1, 10, 0)+0.5), out.BatteryLevel)
}

func TestContinueAfterCooldown(t *testing.T) {
	m, fc, _ := newMachine(t)
	toPlaying(t, m, fc)
	for i := 0; i < 5; i++ {
		advance(t, fc)
	}
	waitFor(t, m, func(s Snapshot) bool { return s.State == StateResult })

	_, err := m.Continue(eligible)
	assert.ErrorIs(t, err, ErrCooldown)

	for i := 0; i < ContinueCooldownSeconds; i++ {
		advance(t, fc)
	}
	waitFor(t, m, func(s Snapshot) bool { return s.CanContinue })

	snap, err := m.Continue(eligible)
	require.NoError(t, err)
	assert.Equal(t, StateInstructions, snap.State)
	assert.Equal(t, 0, snap.Taps)
}

func TestContinueBlockedByQuota(t *testing.T) {
	m, fc, _ := newMachine(t)
	toPlaying(t, m, fc)
	for i := 0; i < 5+ContinueCooldownSeconds; i++ {
		advance(t, fc)
	}
	waitFor(t, m, func(s Snapshot) bool { return s.CanContinue })

	snap, err := m.Continue(model.Eligibility{Reason: "max plays"})
	require.NoError(t, err)
	assert.Equal(t, StateBlocked, snap.State)
	assert.Equal(t, "max plays", snap.BlockReason)

	_, err = m.Retry(model.Eligibility{Reason: "max plays"})
	assert.ErrorIs(t, err, ErrStillBlocked)

	snap, err = m.Retry(eligible)
	require.NoError(t, err)
	assert.Equal(t, StateInstructions, snap.State)
}

func TestStartGates(t *testing.T) {
	t.Run("not eligible", func(t *testing.T) {
		m, _, _ := newMachine(t)
		snap, err := m.Start(gameSettings(), model.Eligibility{Reason: "max wins"})
		assert.ErrorIs(t, err, ErrNotEligible)
		assert.Equal(t, StateBlocked, snap.State)
	})

	t.Run("no prizes", func(t *testing.T) {
		m, _, _ := newMachine(t)
		s := gameSettings()
		s.RemainingPrizes = 0
		snap, err := m.Start(s, eligible)
		assert.ErrorIs(t, err, ErrNoPrizes)
		assert.Equal(t, StateInstructions, snap.State)
	})

	t.Run("closed", func(t *testing.T) {
		m, _, _ := newMachine(t)
		s := gameSettings()
		s.OperatingHours = model.OperatingHours{Enabled: true, Start: "09:00", End: "10:00"}
		_, err := m.Start(s, eligible)
		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("already running", func(t *testing.T) {
		m, _, _ := newMachine(t)
		_, err := m.Start(gameSettings(), eligible)
		require.NoError(t, err)
		_, err = m.Start(gameSettings(), eligible)
		assert.ErrorIs(t, err, ErrWrongState)
	})
}

func TestTapOutsidePlaying(t *testing.T) {
	m, _, _ := newMachine(t)
	_, err := m.Tap()
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestHeldKeyIsRejected(t *testing.T) {
	m, fc, _ := newMachine(t)
	toPlaying(t, m, fc)

	res, err := m.KeyDown(false)
	require.NoError(t, err)
	assert.True(t, res.Click.Accepted)

	fc.Advance(200 * time.Millisecond)
	res, err = m.KeyDown(true)
	assert.ErrorIs(t, err, ErrInputRejected)
	assert.True(t, res.Snapshot.Spamming)
	assert.Equal(t, 1, res.Snapshot.Taps)

	snap := m.KeyUp()
	assert.False(t, snap.Spamming)

	res, err = m.KeyDown(false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Snapshot.Taps)
}

func TestAbortCancelsTimers(t *testing.T) {
	m, fc, rec := newMachine(t)
	_, err := m.Start(gameSettings(), eligible)
	require.NoError(t, err)

	m.Abort()
	fc.Advance(20 * time.Second)
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, StateInstructions, m.State())
	_, n := rec.last()
	assert.Equal(t, 0, n)
}

func TestStaleTimerIsIgnored(t *testing.T) {
	m, _, _ := newMachine(t)
	_, err := m.Start(gameSettings(), eligible)
	require.NoError(t, err)

	m.mu.Lock()
	stale := m.epoch
	m.mu.Unlock()

	m.Abort()

	called := false
	assert.False(t, m.fire(stale, func() { called = true }))
	assert.False(t, called)
	assert.Equal(t, StateInstructions, m.State())
}

// winAndStartAgain Выигрывает раунд и запускает следующий
func winAndStartAgain(t *testing.T, m *Machine, fc fakeClock) Snapshot {
	t.Helper()
	toPlaying(t, m, fc)
	for i := 0; i < 10; i++ {
		fc.Advance(100 * time.Millisecond)
		_, err := m.Tap()
		require.NoError(t, err)
	}
	require.Equal(t, StateResult, m.State())

	for i := 0; i < ContinueCooldownSeconds; i++ {
		advance(t, fc)
	}
	waitFor(t, m, func(s Snapshot) bool { return s.CanContinue })
	_, err := m.Continue(eligible)
	require.NoError(t, err)

	m.mu.Lock()
	m.src = &sampler.Sequence{Values: []float64{0, 0, 0.5, 0.5}}
	m.mu.Unlock()
	snap, err := m.Start(gameSettings(), eligible)
	require.NoError(t, err)
	return snap
}

func TestWinBoostsNextRound(t *testing.T) {
	m, fc, _ := newMachine(t)
	snap := winAndStartAgain(t, m, fc)
	assert.Equal(t, 30.0, snap.Difficulty)
}

func TestBatteryCurveIgnoresWinBoost(t *testing.T) {
	m, fc, _ := newMachine(t)
	snap := winAndStartAgain(t, m, fc)
	require.Equal(t, 30.0, snap.Difficulty)
	require.Greater(t, snap.RequiredClicks, 1)

	for i := 0; i < CountdownSeconds; i++ {
		advance(t, fc)
	}
	waitFor(t, m, func(s Snapshot) bool { return s.State == StatePlaying })

	fc.Advance(100 * time.Millisecond)
	res, err := m.Tap()
	require.NoError(t, err)
	require.True(t, res.Click.Accepted)

	// Кривая строится по сложности из настроек, без надбавки за недавний выигрыш
	assert.InDelta(t, Progress(1, snap.RequiredClicks, 0), res.Snapshot.Battery, 1e-9)
	assert.NotEqual(t, Progress(1, snap.RequiredClicks, snap.Difficulty), res.Snapshot.Battery)
}

func TestStopIfIdle(t *testing.T) {
	m, fc, _ := newMachine(t)
	_, err := m.Start(gameSettings(), eligible)
	require.NoError(t, err)

	// Идущий раунд не трогаем, таймеры продолжают работать
	assert.False(t, m.StopIfIdle(0))
	for i := 0; i < CountdownSeconds; i++ {
		advance(t, fc)
	}
	waitFor(t, m, func(s Snapshot) bool { return s.State == StatePlaying })
	assert.False(t, m.StopIfIdle(0))

	m.Abort()
	assert.False(t, m.StopIfIdle(time.Minute))

	fc.Advance(2 * time.Minute)
	assert.True(t, m.StopIfIdle(time.Minute))
	assert.Equal(t, StateInstructions, m.State())
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0.0, Progress(0, 10, 50))
	assert.Equal(t, 100.0, Progress(10, 10, 50))
	assert.Equal(t, 100.0, Progress(15, 10, 50))
	assert.InDelta(t, 59.39, Progress(5, 10, 0), 0.01)
	assert.Greater(t, Progress(5, 10, 0), Progress(5, 10, 100))
}

func TestPlayerName(t *testing.T) {
	names := []string{"singa", "elang"}
	assert.Equal(t, "Singa-1", PlayerName(names, &sampler.Sequence{Values: []float64{0, 0}}))
	assert.Equal(t, "Elang-999", PlayerName(names, &sampler.Sequence{Values: []float64{0.9, 0.9999}}))
	assert.Equal(t, "Player-001", PlayerName(nil, &sampler.Sequence{Values: []float64{0}}))
	assert.Equal(t, "Player-500", PlayerName(nil, &sampler.Sequence{Values: []float64{0.5}}))
}
