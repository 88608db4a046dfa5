package infrastructure

import (
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/domain"
)

// logicalClock hands out strictly increasing millisecond timestamps and
// request IDs, even when the wall clock stalls or steps backwards.
type logicalClock struct {
	now func() time.Time

	mu     sync.Mutex
	last   int64
	lastID snowflake.ID
}

func newLogicalClock(now func() time.Time) *logicalClock {
	if now == nil {
		now = time.Now
	}
	return &logicalClock{now: now}
}

// tick returns the next timestamp and a request ID derived from it.
func (c *logicalClock) tick() (int64, domain.RequestID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now()
	millis := max(t.UnixMilli(), c.last+1)
	c.last = millis

	id := max(snowflake.New(time.UnixMilli(millis)), c.lastID+1)
	c.lastID = id

	return millis, domain.RequestID(id)
}

// observe advances the clock past a timestamp loaded from storage.
func (c *logicalClock) observe(millis int64, id domain.RequestID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.last = max(c.last, millis)
	c.lastID = max(c.lastID, snowflake.ID(id))
}

// current returns the latest time the clock has seen.
func (c *logicalClock) current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return max(c.now().UnixMilli(), c.last)
}
