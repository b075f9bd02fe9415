// Package difficulty переводит процент сложности в требуемое число нажатий за раунд.
package difficulty

import (
	"math"
	"time"

	"powerrush_backend/internal/engine/sampler"
	"powerrush_backend/internal/model"
)

const (
	// MinAutoDifficulty Нижняя граница авто-сложности
	MinAutoDifficulty = 30.0
	// DefaultAutoMaxLimit Верхняя граница авто-сложности, если в настройках 0
	DefaultAutoMaxLimit = 80.0

	// WinCooldown Окно после выигрыша, в котором раунд усложняется
	WinCooldown = 30 * time.Second
	// WinCooldownBoost Прибавка к сложности внутри окна
	WinCooldownBoost = 30.0
	// WinCooldownCap Потолок сложности с учетом прибавки
	WinCooldownCap = 95.0

	// Кривая темпа нажатий
	rateLow  = 2.0
	capTPS   = 15.0
	rateHigh = 12.0 // min(12, capTPS)
	gamma    = 1.3

	// Разброс вокруг центра: широкий на низкой сложности, узкий на высокой
	spreadEasy = 0.25
	spreadHard = 0.08

	spikeChance = 0.05
	luckySpike  = 0.9
	hardSpike   = 1.1

	// Коэффициенты авто-регулировки
	scheduleAdjustment = 25.0
	urgencyWeight      = 40.0
)

// Spike Случайный множитель границ
type Spike string

const (
	SpikeNone  Spike = "none"
	SpikeLucky Spike = "lucky"
	SpikeHard  Spike = "hard"
)

// Plan Детерминированная часть расчета для заданной сложности и длительности
type Plan struct {
	Difficulty float64
	TargetRate float64 // нажатий в секунду
	Center     float64 // n*
	Spread     float64 // η
	Min        int     // nMin
	Max        int     // nMax
	Low        int     // nLow до всплеска
	High       int     // nHigh до всплеска
}

// Outcome Итог расчета цели раунда
type Outcome struct {
	Plan
	Spike    Spike
	Low      int // границы после всплеска
	High     int
	Required int
}

// NewPlan Считает кривую для сложности d (0-100) и длительности в секундах
func NewPlan(d float64, duration int) Plan {
	d = clamp(d, 0, 100)
	x := d / 100
	dur := float64(duration)

	rTarget := rateLow + (rateHigh-rateLow)*math.Pow(x, gamma)
	center := rTarget * dur
	eta := lerp(spreadEasy, spreadHard, x)

	nMin := int(math.Ceil(rateLow * dur))
	nMax := int(math.Floor(rateHigh * dur))

	return Plan{
		Difficulty: d,
		TargetRate: rTarget,
		Center:     center,
		Spread:     eta,
		Min:        nMin,
		Max:        nMax,
		Low:        clampInt(int(math.Ceil(center*(1-eta))), nMin, nMax),
		High:       clampInt(int(math.Ceil(center*(1+eta))), nMin, nMax),
	}
}

// Effective Сложность раунда без учета анти-спама: ручная или авто
func Effective(s model.Settings, now time.Time) float64 {
	if !s.AutoDifficultyEnabled {
		return clamp(s.DifficultyMultiplier, 0, 100)
	}
	return Auto(s, now)
}

// Auto Авто-сложность по расписанию и расходу призов.
// Результат округлен и лежит в [MinAutoDifficulty, maxLimit].
func Auto(s model.Settings, now time.Time) float64 {
	maxLimit := s.AutoDifficultyMaxLimit
	if maxLimit <= 0 {
		maxLimit = DefaultAutoMaxLimit
	}
	minLimit := MinAutoDifficulty
	if maxLimit < minLimit {
		maxLimit = minLimit
	}

	prizeProgress := s.PrizeProgress()
	d := s.DifficultyMultiplier

	switch {
	case s.OperatingHours.Enabled && s.OperatingHours.Contains(now):
		timeProgress := s.OperatingHours.Progress(now)

		// Призы уходят медленнее времени - облегчаем, быстрее - усложняем
		deviation := prizeProgress - timeProgress
		d = clamp(d+deviation*scheduleAdjustment, minLimit, maxLimit)

		// Конец смены, а призов осталось много
		if timeProgress > 0.8 && prizeProgress < 0.6 {
			urgency := (timeProgress - 0.8) / 0.2
			behind := 0.6 - prizeProgress
			d = math.Max(minLimit, d-urgency*behind*urgencyWeight)
		}
	case s.OperatingHours.Enabled:
		if prizeProgress > 0.7 {
			d = math.Min(maxLimit, d+15)
		} else if prizeProgress < 0.3 {
			d = math.Max(minLimit, d-10)
		}
	default:
		ratio := s.RemainingRatio()
		switch {
		case ratio > 0.7:
			d = math.Max(minLimit, d-15)
		case ratio > 0.4:
			d = math.Min(maxLimit, d+(0.7-ratio)*20)
		case ratio > 0.15:
			d = math.Min(maxLimit, d+(0.4-ratio)*40)
		default:
			d = math.Min(maxLimit, d+25)
		}
		if prizeProgress > 0.8 {
			d = math.Min(maxLimit, d+10)
		}
	}

	return math.Round(clamp(d, minLimit, maxLimit))
}

// RoundDifficulty Сложность с учетом анти-спама выигрышей.
// Нулевой lastWin означает, что выигрышей не было.
func RoundDifficulty(s model.Settings, lastWin, now time.Time) float64 {
	d := Effective(s, now)
	if !lastWin.IsZero() && now.Sub(lastWin) < WinCooldown {
		d = math.Min(WinCooldownCap, d+WinCooldownBoost)
	}
	return d
}

// Compute Полный расчет цели раунда. Из источника берется ровно два числа:
// сначала для всплеска, затем для треугольного распределения.
func Compute(s model.Settings, lastWin, now time.Time, src sampler.Source) Outcome {
	plan := NewPlan(RoundDifficulty(s, lastWin, now), s.Duration)
	out := Outcome{Plan: plan, Spike: SpikeNone, Low: plan.Low, High: plan.High}

	u := src.Float64()
	mult := 1.0
	switch {
	case u < spikeChance:
		out.Spike, mult = SpikeLucky, luckySpike
	case u < 2*spikeChance:
		out.Spike, mult = SpikeHard, hardSpike
	}
	if out.Spike != SpikeNone {
		out.Low = clampInt(int(math.Ceil(float64(plan.Low)*mult)), plan.Min, plan.Max)
		out.High = clampInt(int(math.Ceil(float64(plan.High)*mult)), plan.Min, plan.Max)
	}

	v := sampler.Triangular(src, float64(out.Low), plan.Center, float64(out.High))
	out.Required = clampInt(int(math.Round(v)), plan.Min, plan.Max)
	if out.Required < 1 {
		out.Required = 1
	}
	return out
}

// RequiredClicks Требуемое число нажатий, не меньше 1
func RequiredClicks(s model.Settings, lastWin, now time.Time, src sampler.Source) int {
	return Compute(s, lastWin, now, src).Required
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
