package aggregator

import "time"

// SetClock replaces the time source of the aggregator.
func (a *Aggregator) SetClock(now func() time.Time) {
	a.now = now
}
