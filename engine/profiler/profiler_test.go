package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when told to.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestProfiler(interval time.Duration) (*Profiler, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	return NewProfiler(WithClock(clock.now), WithInterval(interval), WithQuiet(true)), clock
}

func TestTickReportsAfterInterval(t *testing.T) {
	t.Parallel()

	// Arrange
	p, clock := newTestProfiler(time.Second)

	// Act
	var reported []bool
	for range 59 {
		clock.advance(16 * time.Millisecond)
		reported = append(reported, p.Tick())
	}
	clock.advance(time.Second - 59*16*time.Millisecond)
	last := p.Tick()

	// Assert
	assert.NotContains(t, reported, true)
	require.True(t, last)
	stats := p.Stats()
	assert.InDelta(t, 60, stats.FPS, 1e-9)
	assert.Equal(t, 56*time.Millisecond, stats.SlowestFrame)
	assert.Positive(t, stats.HeapMB)
	assert.Positive(t, stats.SysMB)
}

func TestTickResetsBetweenIntervals(t *testing.T) {
	t.Parallel()

	p, clock := newTestProfiler(500 * time.Millisecond)

	clock.advance(400 * time.Millisecond)
	assert.False(t, p.Tick())
	clock.advance(100 * time.Millisecond)
	require.True(t, p.Tick())
	assert.InDelta(t, 4, p.Stats().FPS, 1e-9)
	assert.Equal(t, 400*time.Millisecond, p.Stats().SlowestFrame)

	clock.advance(250 * time.Millisecond)
	assert.False(t, p.Tick())
	clock.advance(250 * time.Millisecond)
	require.True(t, p.Tick())
	assert.InDelta(t, 4, p.Stats().FPS, 1e-9)
	assert.Equal(t, 250*time.Millisecond, p.Stats().SlowestFrame)
}

func TestStatsZeroBeforeFirstReport(t *testing.T) {
	t.Parallel()

	p, _ := newTestProfiler(time.Second)

	assert.False(t, p.Tick())
	assert.Equal(t, Stats{}, p.Stats())
}

func TestOptionsIgnoreInvalid(t *testing.T) {
	t.Parallel()

	p := NewProfiler(WithInterval(-time.Second), WithClock(nil))

	assert.Equal(t, time.Second, p.updateInterval)
	require.NotNil(t, p.now)
}
