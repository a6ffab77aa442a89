package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/models"
)

func TestSnapshotCache_GetSet(t *testing.T) {
	c := New(time.Minute)
	snap := &models.AnalyticsSnapshot{AvailableCategories: []string{"Home"}}

	_, ok := c.Get("k")
	require.False(t, ok, "empty cache should miss")

	c.Set("k", snap)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Same(t, snap, got)
	assert.Equal(t, 1, c.Len())
}

func TestSnapshotCache_Expiry(t *testing.T) {
	c := New(10 * time.Millisecond)
	c.Set("k", &models.AnalyticsSnapshot{})

	_, ok := c.Get("k")
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok = c.Get("k")
	assert.False(t, ok, "expired entry must not be served")
	assert.Equal(t, 1, c.Len(), "expired entries linger until Sweep")

	removed := c.Sweep()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 0, c.Len())
}

func TestSnapshotCache_SweepKeepsLiveEntries(t *testing.T) {
	c := New(time.Minute)
	c.Set("live", &models.AnalyticsSnapshot{})

	removed := c.Sweep()
	assert.Equal(t, 0, removed)

	_, ok := c.Get("live")
	assert.True(t, ok)
}

func TestSnapshotCache_Clear(t *testing.T) {
	c := New(time.Minute)
	c.Set("a", &models.AnalyticsSnapshot{})
	c.Set("b", &models.AnalyticsSnapshot{})
	require.Equal(t, 2, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestSnapshotCache_SetOverwrites(t *testing.T) {
	c := New(time.Minute)
	first := &models.AnalyticsSnapshot{}
	second := &models.AnalyticsSnapshot{}

	c.Set("k", first)
	c.Set("k", second)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, c.Len())
}
