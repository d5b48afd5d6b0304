package index

import "sync"

// Cache holds at most one complete Snapshot. Readers always see either the
// previous snapshot or the next one, never a partial list.
//
// Scans take a ticket before reading the content root. SetFrom keeps a
// snapshot only when nothing with a later ticket has been stored or
// invalidated since, so a slow scan never replaces a newer result.
type Cache struct {
	mu    sync.RWMutex
	snap  *Snapshot
	next  uint64
	floor uint64
}

func NewCache() *Cache {
	return &Cache{}
}

func (c *Cache) Get() (*Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap, c.snap != nil
}

// Ticket orders a scan against every other write to the cache.
func (c *Cache) Ticket() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	return c.next
}

// SetFrom stores s built under ticket and reports whether it was kept.
func (c *Cache) SetFrom(s *Snapshot, ticket uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ticket <= c.floor {
		return false
	}
	c.snap, c.floor = s, ticket
	return true
}

// Set stores s unconditionally; scans still in flight lose to it.
func (c *Cache) Set(s *Snapshot) {
	c.mu.Lock()
	c.next++
	c.snap, c.floor = s, c.next
	c.mu.Unlock()
}

// Invalidate drops the whole snapshot; the next Get misses and scans
// started before the call are not stored.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.floor = c.next
	c.mu.Unlock()
}
