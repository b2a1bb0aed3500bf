package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/roohithbala/placement/utils/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupBruteForceApp wires the lockout middleware in front of a login
// stub that always fails, backed by an in-memory Redis.
func setupBruteForceApp(t *testing.T) (*fiber.App, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	redisCache, err := cache.NewRedisCache("redis://" + mr.Addr())
	require.NoError(t, err)

	protection := NewBruteForceProtection(redisCache)

	app := fiber.New()
	app.Post("/login", protection.CheckLocked(), func(c *fiber.Ctx) error {
		protection.RecordFailedAttempt(c, c.IP())
		return c.SendStatus(fiber.StatusUnauthorized)
	})
	app.Post("/login-ok", protection.CheckLocked(), func(c *fiber.Ctx) error {
		protection.RecordSuccessfulAttempt(c, c.IP())
		return c.SendStatus(fiber.StatusOK)
	})

	return app, mr
}

func TestBruteForceLocksAfterFiveFailures(t *testing.T) {
	app, _ := setupBruteForceApp(t)

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "attempt %d", i+1)
	}

	// The sixth request is rejected before reaching the handler
	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func TestBruteForceLockExpires(t *testing.T) {
	app, mr := setupBruteForceApp(t)

	for i := 0; i < 5; i++ {
		_, err := app.Test(httptest.NewRequest("POST", "/login", nil))
		require.NoError(t, err)
	}

	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	// After the 2 minute lockout passes, requests flow again
	mr.FastForward(3 * time.Minute)

	resp, err = app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestBruteForceSuccessClearsAttempts(t *testing.T) {
	app, _ := setupBruteForceApp(t)

	for i := 0; i < 4; i++ {
		_, err := app.Test(httptest.NewRequest("POST", "/login", nil))
		require.NoError(t, err)
	}

	// A successful login resets the counter
	resp, err := app.Test(httptest.NewRequest("POST", "/login-ok", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Four more failures still do not lock
	for i := 0; i < 4; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	}
}
