package state

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Clock is a logical clock that names finalised actions for one widget.
type Clock struct {
	site    string
	counter uint64
}

// NewClock creates a clock with a random site id.
func NewClock() *Clock {
	return &Clock{site: uuid.NewString()}
}

// Site returns the id shared by every action this clock names.
func (c *Clock) Site() string {
	return c.site
}

// Tick increments the clock and returns the new value.
func (c *Clock) Tick() uint64 {
	return atomic.AddUint64(&c.counter, 1)
}

// NextID returns "action-<site>-<n>" for the next tick.
func (c *Clock) NextID() string {
	return fmt.Sprintf("action-%s-%d", c.site, c.Tick())
}
