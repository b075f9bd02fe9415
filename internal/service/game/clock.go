package game

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// zonedClock Часы, отдающие время в часовом поясе площадки.
// Часы работы и автосложность считаются по местному времени.
type zonedClock struct {
	clockwork.Clock
	loc *time.Location
}

// InLocation Оборачивает clock так, что Now возвращает время в loc
func InLocation(clock clockwork.Clock, loc *time.Location) clockwork.Clock {
	if loc == nil {
		return clock
	}
	return zonedClock{Clock: clock, loc: loc}
}

func (c zonedClock) Now() time.Time {
	return c.Clock.Now().In(c.loc)
}
