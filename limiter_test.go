package rishiwrites

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToggleLimiterBlocksAfterMax(t *testing.T) {
	limiter := NewToggleLimiter(2, 200*time.Millisecond)
	defer limiter.Stop()
	ip := "203.0.113.10"

	assert.True(t, limiter.Allow(ip), "first toggle")
	assert.True(t, limiter.Allow(ip), "second toggle")
	assert.False(t, limiter.Allow(ip), "third toggle should be blocked")
}

func TestToggleLimiterResetsAfterWindow(t *testing.T) {
	limiter := NewToggleLimiter(1, 150*time.Millisecond)
	defer limiter.Stop()
	ip := "203.0.113.20"

	assert.True(t, limiter.Allow(ip))
	assert.False(t, limiter.Allow(ip))

	time.Sleep(200 * time.Millisecond)
	assert.True(t, limiter.Allow(ip), "toggle after the window should be allowed")
}

func TestToggleLimiterIsPerIP(t *testing.T) {
	limiter := NewToggleLimiter(1, 200*time.Millisecond)
	defer limiter.Stop()

	assert.True(t, limiter.Allow("203.0.113.30"))
	assert.True(t, limiter.Allow("203.0.113.31"), "second ip is limited independently")
	assert.False(t, limiter.Allow("203.0.113.30"))
}

func TestToggleLimiterZeroDisables(t *testing.T) {
	limiter := NewToggleLimiter(0, time.Minute)
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		assert.True(t, limiter.Allow("203.0.113.40"))
	}
}

func TestToggleLimiterPrunesIdleAddresses(t *testing.T) {
	limiter := NewToggleLimiter(5, 50*time.Millisecond)
	defer limiter.Stop()

	limiter.Allow("203.0.113.50")
	assert.Equal(t, 1, limiter.Tracked())
	assert.Eventually(t, func() bool { return limiter.Tracked() == 0 }, time.Second, 10*time.Millisecond)
}

func TestToggleLimiterStopTwice(t *testing.T) {
	limiter := NewToggleLimiter(1, time.Minute)
	limiter.Stop()
	assert.NotPanics(t, limiter.Stop)
}
