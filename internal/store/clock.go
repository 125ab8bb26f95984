package store

import (
	"sync"
	"time"

	"support-chat-backend/internal/model"
)

// Clock hands out strictly increasing timestamps so that two records
// created in the same instant never tie.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

func (c *Clock) Next() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC()
	if !t.After(c.last) {
		t = c.last.Add(time.Nanosecond)
	}
	c.last = t
	return t.Format(model.TimeLayout)
}
