// Package sampler содержит источник случайных чисел и треугольное распределение.
package sampler

import (
	"math"
	"math/rand/v2"
	"sync"
)

// Source Источник равномерных чисел в [0, 1).
// В тестах подменяется детерминированной реализацией.
type Source interface {
	Float64() float64
}

// New Источник на PCG с фиксированным зерном
func New(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewRandom Источник со случайным зерном, безопасный для конкурентного доступа
func NewRandom() Source {
	return Locked(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

type lockedSource struct {
	mu  sync.Mutex
	src Source
}

// Locked Оборачивает источник мьютексом
func Locked(src Source) Source {
	return &lockedSource{src: src}
}

func (l *lockedSource) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

// Triangular Значение из треугольного распределения [min, mode, max].
// mode прижимается к границам, при вырожденном интервале возвращается min.
func Triangular(src Source, min, mode, max float64) float64 {
	if max < min {
		min, max = max, min
	}
	if max-min == 0 {
		return min
	}
	mode = math.Max(min, math.Min(max, mode))

	u := src.Float64()
	c := (mode - min) / (max - min)
	if u < c {
		return min + math.Sqrt(u*(max-min)*(mode-min))
	}
	return max - math.Sqrt((1-u)*(max-min)*(max-mode))
}

// Intn Равномерное целое в [0, n)
func Intn(src Source, n int) int {
	if n <= 0 {
		return 0
	}
	i := int(src.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Sequence Детерминированный источник, возвращающий значения по кругу
type Sequence struct {
	Values []float64
	pos    int
}

func (s *Sequence) Float64() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.pos%len(s.Values)]
	s.pos++
	return v
}
