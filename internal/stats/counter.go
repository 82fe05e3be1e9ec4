package stats

import (
	"fmt"
	"slices"
	"sync"
)

// RequestCounter tracks how many requests were served per client address.
// A single instance is shared by the ingress middleware and the reporter.
type RequestCounter struct {
	mu       sync.Mutex
	counts   map[string]uint64
	poisoned bool
}

func NewRequestCounter() *RequestCounter {
	return &RequestCounter{
		counts: make(map[string]uint64),
	}
}

// withLock runs fn while holding the lock. A panic inside fn poisons the
// counter before it propagates to the caller.
func (c *RequestCounter) withLock(fn func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.poisoned {
		return ErrPoisoned
	}

	defer func() {
		if r := recover(); r != nil {
			c.poisoned = true
			panic(r)
		}
	}()

	fn()
	return nil
}

// Increment adds one visit for the given address
func (c *RequestCounter) Increment(ip string) error {
	return c.withLock(func() {
		c.counts[ip]++
	})
}

// Count returns the number of visits recorded for ip
func (c *RequestCounter) Count(ip string) (uint64, error) {
	var n uint64
	err := c.withLock(func() {
		n = c.counts[ip]
	})
	return n, err
}

// Len returns the number of distinct addresses seen so far
func (c *RequestCounter) Len() (int, error) {
	var n int
	err := c.withLock(func() {
		n = len(c.counts)
	})
	return n, err
}

// Total returns the sum of all recorded visits
func (c *RequestCounter) Total() (uint64, error) {
	var total uint64
	err := c.withLock(func() {
		for _, n := range c.counts {
			total += n
		}
	})
	return total, err
}

// Snapshot copies the counts under the lock and sorts the copy by count,
// highest first. Order between equal counts is unspecified.
func (c *RequestCounter) Snapshot() ([]IPCount, error) {
	var entries []IPCount
	err := c.withLock(func() {
		entries = make([]IPCount, 0, len(c.counts))
		for ip, n := range c.counts {
			entries = append(entries, IPCount{IP: ip, Count: n})
		}
	})
	if err != nil {
		return nil, err
	}

	// Sorting happens outside the critical section; reports are rare
	// compared to increments.
	slices.SortStableFunc(entries, func(a, b IPCount) int {
		switch {
		case a.Count > b.Count:
			return -1
		case a.Count < b.Count:
			return 1
		}
		return 0
	})

	return entries, nil
}

// FormatReport renders the current snapshot as a report
func (c *RequestCounter) FormatReport() (string, error) {
	entries, err := c.Snapshot()
	if err != nil {
		return "", fmt.Errorf("snapshot request counts: %w", err)
	}
	return FormatReport(entries), nil
}
