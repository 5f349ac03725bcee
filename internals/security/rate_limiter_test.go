package security

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllowsUpToMax(t *testing.T) {
	db := newTestDB(t)
	limiter := NewRateLimiter(db, 3, time.Minute)

	for i := 1; i <= 3; i++ {
		res, err := limiter.Check("10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "call %d should be allowed", i)
		assert.Equal(t, 3-i, res.Remaining)
	}

	res, err := limiter.Check("10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.True(t, res.ResetAt.After(time.Now()))
}

func TestRateLimiterKeysByIdentifier(t *testing.T) {
	db := newTestDB(t)
	limiter := NewRateLimiter(db, 1, time.Minute)

	res, err := limiter.Check("10.0.0.1")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = limiter.Check("10.0.0.1")
	require.NoError(t, err)
	require.False(t, res.Allowed)

	// A different identifier has its own untouched bucket
	res, err = limiter.Check("10.0.0.2")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	db := newTestDB(t)
	limiter := NewRateLimiter(db, 1, 150*time.Millisecond)

	res, err := limiter.Check("10.0.0.1")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = limiter.Check("10.0.0.1")
	require.NoError(t, err)
	require.False(t, res.Allowed)

	time.Sleep(200 * time.Millisecond)

	res, err = limiter.Check("10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed, "a fresh window should start after the old one elapses")
}

// Max+5 simultaneous calls from one identifier must never yield more than
// max allowed results.
func TestRateLimiterConcurrent(t *testing.T) {
	db := newTestDB(t)
	const max = 5
	limiter := NewRateLimiter(db, max, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < max+5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := limiter.Check("1.2.3.4")
			if err != nil {
				return
			}
			if res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, max, allowed)
}
