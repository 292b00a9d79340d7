package security_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maeulsoft/programhub/internal/security"
)

// TestRateLimiter_BurstThenThrottle exhausts the bucket and confirms the
// next request is denied.
func TestRateLimiter_BurstThenThrottle(t *testing.T) {
	rl := security.NewRateLimiter(3, time.Minute)
	defer rl.Stop()

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
}

// TestRateLimiter_IndependentIdentifiers ensures one client cannot
// exhaust another's bucket.
func TestRateLimiter_IndependentIdentifiers(t *testing.T) {
	rl := security.NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
}

// TestRateLimiter_Refill waits past the refill interval and confirms a
// token comes back.
func TestRateLimiter_Refill(t *testing.T) {
	rl := security.NewRateLimiter(1, 20*time.Millisecond)
	defer rl.Stop()

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))

	time.Sleep(30 * time.Millisecond)
	assert.True(t, rl.Allow("10.0.0.1"))
}

// TestRateLimiter_Reset clears a throttled identifier.
func TestRateLimiter_Reset(t *testing.T) {
	rl := security.NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))

	rl.Reset("10.0.0.1")
	assert.True(t, rl.Allow("10.0.0.1"))
}

// TestRateLimiter_Middleware checks the Fiber adapter returns a JSON 429
// once the bucket empties.
func TestRateLimiter_Middleware(t *testing.T) {
	rl := security.NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	app := fiber.New()
	app.Post("/login", rl.Middleware(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
