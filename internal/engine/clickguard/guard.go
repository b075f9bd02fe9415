// Package clickguard отсекает нажатия, которые человек физически не может сделать.
package clickguard

import (
	"time"
)

const (
	// HardFloor Минимальный интервал, быстрее которого нажатие считается серией
	HardFloor = 50 * time.Millisecond
	// SoftGap Минимальный интервал между засчитанными нажатиями
	SoftGap = 67 * time.Millisecond

	// FastStreakLimit Сколько нажатий подряд быстрее HardFloor приводит к штрафу
	FastStreakLimit   = 3
	streakPenaltyStep = time.Second
	streakPenaltyMax  = 5 * time.Second

	softGapPenalty = 1500 * time.Millisecond

	// Окно измерения темпа
	windowSize    = 15
	rateWindow    = time.Second
	maxTPS        = 15
	rateThreshold = maxTPS * 80 / 100

	ratePenalty     = 1500 * time.Millisecond
	hardRatePenalty = 3000 * time.Millisecond
)

// Verdict Причина решения по нажатию
type Verdict string

const (
	VerdictAccepted   Verdict = "accepted"
	VerdictPenalized  Verdict = "penalized"   // внутри штрафного окна
	VerdictTooFast    Verdict = "too_fast"    // быстрее HardFloor
	VerdictStreak     Verdict = "fast_streak" // серия быстрых нажатий, назначен штраф
	VerdictSpamGap    Verdict = "spam_gap"    // быстрее SoftGap
	VerdictRateExceed Verdict = "rate_limit"  // засчитано, но темп слишком высокий
)

// Result Итог проверки нажатия
type Result struct {
	Accepted       bool
	Verdict        Verdict
	PenalizedUntil time.Time // нулевое значение - штрафа нет
	TPS            int
}

// Penalized Назначен ли этим нажатием штраф
func (r Result) Penalized() bool {
	return !r.PenalizedUntil.IsZero()
}

// Guard Состояние проверки нажатий в пределах одного раунда.
// Не потокобезопасен, владелец сериализует вызовы.
type Guard struct {
	lastClick  time.Time
	streak     int
	penaltyEnd time.Time
	window     []time.Time
}

func New() *Guard {
	return &Guard{window: make([]time.Time, 0, windowSize)}
}

// Register Проверяет нажатие в момент now
func (g *Guard) Register(now time.Time) Result {
	// 1. Активный штраф
	if now.Before(g.penaltyEnd) {
		return Result{Verdict: VerdictPenalized}
	}

	gap := now.Sub(g.lastClick)
	if g.lastClick.IsZero() {
		gap = time.Duration(1<<63 - 1)
	}

	// 2. Жесткий порог
	if gap < HardFloor {
		g.streak++
		if g.streak >= FastStreakLimit {
			penalty := min(streakPenaltyMax, streakPenaltyStep*time.Duration(g.streak))
			g.penaltyEnd = now.Add(penalty)
			g.streak = 0
			return Result{Verdict: VerdictStreak, PenalizedUntil: g.penaltyEnd}
		}
		return Result{Verdict: VerdictTooFast}
	}
	g.streak = 0

	// 3. Мягкий порог
	if gap < SoftGap {
		g.penaltyEnd = now.Add(softGapPenalty)
		return Result{Verdict: VerdictSpamGap, PenalizedUntil: g.penaltyEnd}
	}

	// 4. Нажатие засчитано, проверяем темп
	g.lastClick = now
	g.window = append(g.window, now)
	if len(g.window) > windowSize {
		g.window = g.window[len(g.window)-windowSize:]
	}

	tps := g.TPS(now)
	res := Result{Accepted: true, Verdict: VerdictAccepted, TPS: tps}
	if tps > rateThreshold {
		penalty := ratePenalty
		if tps > maxTPS {
			penalty = hardRatePenalty
		}
		g.penaltyEnd = now.Add(penalty)
		res.Verdict = VerdictRateExceed
		res.PenalizedUntil = g.penaltyEnd
	}
	return res
}

// TPS Число засчитанных нажатий за последнюю секунду
func (g *Guard) TPS(now time.Time) int {
	n := 0
	for _, ts := range g.window {
		if now.Sub(ts) <= rateWindow {
			n++
		}
	}
	return n
}

// Streak Текущая длина серии быстрых нажатий
func (g *Guard) Streak() int {
	return g.streak
}

// PenaltyEnd Момент окончания штрафа
func (g *Guard) PenaltyEnd() time.Time {
	return g.penaltyEnd
}

// InPenalty Действует ли штраф в момент now
func (g *Guard) InPenalty(now time.Time) bool {
	return now.Before(g.penaltyEnd)
}

// Reset Сбрасывает состояние к началу раунда
func (g *Guard) Reset() {
	g.lastClick = time.Time{}
	g.streak = 0
	g.penaltyEnd = time.Time{}
	g.window = g.window[:0]
}
