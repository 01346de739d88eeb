package scene

import "time"

// Clock reports seconds elapsed since it was created.
type Clock struct {
	start time.Time
	now   func() time.Time
}

func NewClock() *Clock {
	return &Clock{start: time.Now(), now: time.Now}
}

func (c *Clock) Elapsed() float64 {
	return c.now().Sub(c.start).Seconds()
}
