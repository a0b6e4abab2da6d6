package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allowed(rl *KeyedRateLimiter, key string, n int) int {
	passed := 0
	for range n {
		if rl.Allow(key) {
			passed++
		}
	}
	return passed
}

func TestAllow_Burst(t *testing.T) {
	tests := []struct {
		name  string
		burst int
		calls int
		want  int
	}{
		{"within burst", 3, 3, 3},
		{"beyond burst", 2, 5, 2},
		{"zero burst treated as one", 0, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(0.01, tt.burst)
			t.Cleanup(rl.Stop)

			assert.Equal(t, tt.want, allowed(rl, "203.0.113.7", tt.calls))
		})
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	rl := New(0.01, 1)
	t.Cleanup(rl.Stop)

	require.True(t, rl.Allow("user-a"))
	assert.False(t, rl.Allow("user-a"))
	assert.True(t, rl.Allow("user-b"))
	assert.Equal(t, 2, rl.Len())
}

func TestWait_RefillsOverTime(t *testing.T) {
	rl := New(20, 1)
	t.Cleanup(rl.Stop)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, rl.Wait(ctx, "user-a"))

	start := time.Now()
	require.NoError(t, rl.Wait(ctx, "user-a"))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestWait_HonorsContext(t *testing.T) {
	rl := New(0.01, 1)
	t.Cleanup(rl.Stop)

	require.True(t, rl.Allow("user-a"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.Error(t, rl.Wait(ctx, "user-a"))
}

func TestEvict_DropsIdleKeys(t *testing.T) {
	rl := NewWithTTL(0.01, 1, time.Hour)
	t.Cleanup(rl.Stop)

	rl.Allow("198.51.100.1")
	rl.Allow("198.51.100.2")
	require.Equal(t, 2, rl.Len())

	rl.evict(time.Now().Add(time.Minute))
	assert.Zero(t, rl.Len())

	// A forgotten key starts over with a full bucket.
	assert.True(t, rl.Allow("198.51.100.1"))
}

func TestPerMinute(t *testing.T) {
	rl := PerMinute(60, 2)
	t.Cleanup(rl.Stop)

	assert.Equal(t, 2, allowed(rl, "203.0.113.7", 3))
}

func TestStop_Idempotent(t *testing.T) {
	rl := New(1, 1)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}
