package log

import "sync"

// Collector keeps events in memory.
// It is safe for concurrent use.
type Collector struct {
	mu     sync.Mutex
	events []Event
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Log records the event.
func (c *Collector) Log(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

// Events returns a copy of the recorded events.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Matching returns the recorded events the predicate keeps.
func (c *Collector) Matching(keep Predicate) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Event
	for _, e := range c.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many recorded events carry the code.
func (c *Collector) Count(code Code) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e.Code == code {
			n++
		}
	}
	return n
}

// Reset drops all recorded events.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}

// Compile-time interface satisfaction check.
var _ Logger = (*Collector)(nil)
