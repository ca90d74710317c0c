// Package metrics counts dispatch outcomes per plugin so failures and
// traffic are attributable to a specific owner.
package metrics

import (
	"sort"
	"sync"
)

// DispatchStats holds the counters for one plugin.
type DispatchStats struct {
	Resolved uint64 `json:"resolved"`
	Failures uint64 `json:"failures"`
}

// Collector accumulates dispatch counters. Safe for concurrent use.
type Collector struct {
	mu       sync.RWMutex
	byPlugin map[string]DispatchStats
	misses   uint64
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		byPlugin: make(map[string]DispatchStats),
	}
}

// RecordResolved counts a successful resolution for owner.
func (c *Collector) RecordResolved(owner string) {
	c.mu.Lock()
	s := c.byPlugin[owner]
	s.Resolved++
	c.byPlugin[owner] = s
	c.mu.Unlock()
}

// RecordFailure counts a handler failure attributed to owner.
func (c *Collector) RecordFailure(owner string) {
	c.mu.Lock()
	s := c.byPlugin[owner]
	s.Failures++
	c.byPlugin[owner] = s
	c.mu.Unlock()
}

// RecordMiss counts a dispatch that matched no route. Misses have no
// owner by definition.
func (c *Collector) RecordMiss() {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
}

// Misses returns the total miss count.
func (c *Collector) Misses() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.misses
}

// Snapshot returns a copy of all per-plugin counters.
func (c *Collector) Snapshot() map[string]DispatchStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]DispatchStats, len(c.byPlugin))
	for owner, s := range c.byPlugin {
		out[owner] = s
	}
	return out
}

// Owners returns the plugins with recorded traffic, sorted.
func (c *Collector) Owners() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	owners := make([]string, 0, len(c.byPlugin))
	for owner := range c.byPlugin {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	return owners
}

// Reset zeroes every counter.
func (c *Collector) Reset() {
	c.mu.Lock()
	c.byPlugin = make(map[string]DispatchStats)
	c.misses = 0
	c.mu.Unlock()
}
