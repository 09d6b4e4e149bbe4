package id

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock_SameTickStillIncreases(t *testing.T) {
	frozen := time.UnixMilli(1_700_000_000_000)
	c := NewClockAt(func() time.Time { return frozen })

	first := c.Next()
	second := c.Next()
	third := c.Next()

	assert.Equal(t, int64(1_700_000_000_000), first)
	assert.Equal(t, first+1, second)
	assert.Equal(t, second+1, third)
}

func TestClock_FollowsWallTime(t *testing.T) {
	now := time.UnixMilli(1000)
	c := NewClockAt(func() time.Time { return now })

	assert.Equal(t, int64(1000), c.Next())
	now = time.UnixMilli(5000)
	assert.Equal(t, int64(5000), c.Next())
}

func TestClock_ObserveSkipsExisting(t *testing.T) {
	c := NewClockAt(func() time.Time { return time.UnixMilli(10) })
	c.Observe(500)
	c.Observe(200) // lower ids never move the clock back

	assert.Equal(t, int64(501), c.Next())
}

func TestClock_ConcurrentUnique(t *testing.T) {
	c := NewClockAt(func() time.Time { return time.UnixMilli(42) })

	var mu sync.Mutex
	seen := make(map[int64]bool)
	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			v := c.Next()
			mu.Lock()
			defer mu.Unlock()
			assert.False(t, seen[v], "duplicate id %d", v)
			seen[v] = true
		})
	}
	wg.Wait()
	assert.Len(t, seen, 50)
}

func TestGenerate_Format(t *testing.T) {
	got, err := Generate("rev")
	require.NoError(t, err)

	prefix, rest, ok := strings.Cut(got, "-")
	require.True(t, ok)
	assert.Equal(t, "rev", prefix)
	assert.Len(t, rest, 21)
}

func TestMustGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	for range 200 {
		v := MustGenerate("rev")
		assert.False(t, ids[v])
		ids[v] = true
	}
}
