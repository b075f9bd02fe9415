package clickguard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func ms(n int) time.Time {
	return t0.Add(time.Duration(n) * time.Millisecond)
}

func TestFirstClickAccepted(t *testing.T) {
	g := New()
	res := g.Register(t0)
	assert.True(t, res.Accepted)
	assert.Equal(t, VerdictAccepted, res.Verdict)
	assert.False(t, res.Penalized())
}

func TestFastStreakPenalty(t *testing.T) {
	g := New()
	require.True(t, g.Register(ms(0)).Accepted)

	res := g.Register(ms(30))
	assert.False(t, res.Accepted)
	assert.Equal(t, VerdictTooFast, res.Verdict)
	assert.Equal(t, 1, g.Streak())

	res = g.Register(ms(40))
	assert.Equal(t, VerdictTooFast, res.Verdict)
	assert.Equal(t, 2, g.Streak())

	res = g.Register(ms(45))
	assert.False(t, res.Accepted)
	assert.Equal(t, VerdictStreak, res.Verdict)
	assert.Equal(t, 0, g.Streak())
	assert.GreaterOrEqual(t, res.PenalizedUntil.Sub(ms(45)), 3000*time.Millisecond)

	// Внутри штрафа все отклоняется
	assert.Equal(t, VerdictPenalized, g.Register(ms(2000)).Verdict)
	// После штрафа снова принимаем
	assert.True(t, g.Register(ms(3100)).Accepted)
}

func TestNormalClickResetsStreak(t *testing.T) {
	g := New()
	g.Register(ms(0))
	g.Register(ms(20))
	require.Equal(t, 1, g.Streak())

	assert.True(t, g.Register(ms(200)).Accepted)
	assert.Equal(t, 0, g.Streak())
}

func TestSoftGapPenalty(t *testing.T) {
	g := New()
	g.Register(ms(0))

	res := g.Register(ms(60))
	assert.False(t, res.Accepted)
	assert.Equal(t, VerdictSpamGap, res.Verdict)
	assert.Equal(t, ms(1560), res.PenalizedUntil)
	assert.True(t, g.InPenalty(ms(1000)))
	assert.False(t, g.InPenalty(ms(1560)))
}

func TestRateLimitCountsTriggeringClick(t *testing.T) {
	g := New()
	var last Result
	accepted := 0
	for i := 0; i < 13; i++ {
		last = g.Register(ms(i * 70))
		if last.Accepted {
			accepted++
		}
	}

	assert.Equal(t, 13, accepted)
	assert.Equal(t, VerdictRateExceed, last.Verdict)
	assert.Equal(t, 13, last.TPS)
	assert.Equal(t, ms(12*70+1500), last.PenalizedUntil)

	// Следующее нажатие попадает в штраф
	assert.Equal(t, VerdictPenalized, g.Register(ms(13*70)).Verdict)
}

func TestSteadyPaceIsNotPenalized(t *testing.T) {
	g := New()
	for i := 0; i < 50; i++ {
		res := g.Register(ms(i * 100))
		require.True(t, res.Accepted)
		require.False(t, res.Penalized(), "click %d", i)
	}
	// Границы окна включительно: 3900..4900
	assert.Equal(t, 11, g.TPS(ms(49*100)))
}

func TestReset(t *testing.T) {
	g := New()
	g.Register(ms(0))
	g.Register(ms(60))
	require.True(t, g.InPenalty(ms(100)))

	g.Reset()
	assert.False(t, g.InPenalty(ms(100)))
	assert.True(t, g.Register(ms(100)).Accepted)
}

func TestKeyGate(t *testing.T) {
	var k KeyGate

	assert.True(t, k.KeyDown(false))
	assert.False(t, k.KeyDown(true))
	assert.True(t, k.Spamming())

	k.KeyUp()
	assert.False(t, k.Spamming())
	assert.True(t, k.KeyDown(false))

	// Повторный keydown без keyup тоже автоповтор
	assert.False(t, k.KeyDown(false))
	assert.True(t, k.Spamming())
	k.KeyUp()
	assert.True(t, k.KeyDown(false))
}

func TestTPSWindowIsInclusive(t *testing.T) {
	g := New()
	require.True(t, g.Register(ms(0)).Accepted)
	require.True(t, g.Register(ms(500)).Accepted)

	assert.Equal(t, 2, g.TPS(ms(1000)))
	assert.Equal(t, 1, g.TPS(ms(1001)))
}
