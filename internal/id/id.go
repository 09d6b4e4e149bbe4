// Package id generates identifiers for cards and review sessions.
package id

import (
	"fmt"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Clock hands out card ids: Unix milliseconds, forced strictly increasing.
//
// Ids stay timestamp-shaped so backups from older versions (which used the raw
// creation time) remain valid, but two cards created within the same
// millisecond no longer collide.
type Clock struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewClock creates a clock reading the wall time.
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// NewClockAt creates a clock reading from now. Used by tests.
func NewClockAt(now func() time.Time) *Clock {
	return &Clock{now: now}
}

// Next returns the next card id.
func (c *Clock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	ms := c.now().UnixMilli()
	if ms <= c.last {
		ms = c.last + 1
	}
	c.last = ms
	return ms
}

// Observe advances the clock past an id that already exists, so ids loaded
// from storage are never handed out again.
func (c *Clock) Observe(existing int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing > c.last {
		c.last = existing
	}
}

// Generate creates a prefixed unique ID using NanoID
// Format: prefix-nanoid (e.g., "rev-V1StGXR8_Z5jdHi6B-myT").
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
