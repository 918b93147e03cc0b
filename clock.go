package kartfx

import (
	"time"
)

// TickClock turns wall-clock deltas into whole fixed-length ticks.
type TickClock struct {
	Time time.Time
	Dt   time.Duration

	step     time.Duration
	maxTicks int
	pending  time.Duration
	ticks    uint64
}

func NewTickClock(cfg Config) *TickClock {
	return &TickClock{
		Time:     time.Now(),
		step:     cfg.TickDuration(),
		maxTicks: cfg.MaxCatchUpTicks,
	}
}

// Advance adds dt and returns how many ticks are now due. At most the
// configured catch-up limit is returned; the excess time is dropped.
func (c *TickClock) Advance(dt time.Duration) int {
	if dt < 0 {
		dt = 0
	}
	c.Dt = dt
	c.Time = c.Time.Add(dt)
	c.pending += dt

	n := int(c.pending / c.step)
	c.pending -= time.Duration(n) * c.step
	if c.maxTicks > 0 && n > c.maxTicks {
		n = c.maxTicks
		c.pending = 0
	}
	c.ticks += uint64(n)
	return n
}

// Now advances by the time elapsed since the last call.
func (c *TickClock) Now() int {
	now := time.Now()
	return c.Advance(now.Sub(c.Time))
}

// Ticks returns the total number of ticks handed out.
func (c *TickClock) Ticks() uint64 { return c.ticks }

// Alpha is the fraction of a tick accumulated but not yet run.
func (c *TickClock) Alpha() float32 {
	return float32(c.pending) / float32(c.step)
}
