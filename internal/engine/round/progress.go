package round

import "math"

// Progress Уровень "батареи" 0-100 по кривой ease-out.
// Чем выше сложность, тем сильнее замедление в конце.
func Progress(taps, required int, difficulty float64) float64 {
	if required <= 0 {
		return 100
	}
	linear := math.Min(1, float64(taps)/float64(required))
	exp := 1.3 + difficulty/100
	return math.Min(100, (1-math.Pow(1-linear, exp))*100)
}
