package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllowsWithinBudget(t *testing.T) {
	limiter := NewRequestRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.NoError(t, limiter.Allow("10.0.0.1"))
	}
	assert.Error(t, limiter.Allow("10.0.0.1"))
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewRequestRateLimiter(1, time.Minute)

	require.NoError(t, limiter.Allow("10.0.0.1"))
	require.Error(t, limiter.Allow("10.0.0.1"))
	assert.NoError(t, limiter.Allow("10.0.0.2"))
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	limiter := NewRequestRateLimiter(1, 20*time.Millisecond)

	require.NoError(t, limiter.Allow("10.0.0.1"))
	require.Error(t, limiter.Allow("10.0.0.1"))

	time.Sleep(30 * time.Millisecond)
	assert.NoError(t, limiter.Allow("10.0.0.1"))
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "players:search:lebron", SearchCacheKey("lebron"))
	assert.Equal(t, "prediction:237:2024", PredictionCacheKey(237, "2024"))
	assert.Equal(t, "schedule:2025-01-15", ScheduleCacheKey("2025-01-15"))
}
