package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"realty_backend/internal/model"
	"realty_backend/internal/service"
)

type stubAuth struct {
	ids map[string]service.Identity
}

func (s stubAuth) Authenticate(_ context.Context, token string) (service.Identity, error) {
	id, ok := s.ids[token]
	if !ok {
		return service.Identity{}, service.Unauthorized("Invalid or expired token. Please log in again.")
	}
	return id, nil
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
}

func errorBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body["error"]
}

func TestErrorHandler(t *testing.T) {
	app := newTestApp()
	app.Get("/validation", func(c *fiber.Ctx) error { return service.Validationf("Invalid lead status.") })
	app.Get("/upstream", func(c *fiber.Ctx) error { return service.Upstream("Image upload failed.", errors.New("r2 timeout")) })
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.ErrRequestEntityTooLarge })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("pq: connection refused on 10.0.0.5") })

	cases := []struct {
		path   string
		status int
		msg    string
	}{
		{"/validation", http.StatusBadRequest, "Invalid lead status."},
		{"/upstream", http.StatusBadGateway, "Image upload failed."},
		{"/fiber", http.StatusRequestEntityTooLarge, "Request Entity Too Large"},
		{"/boom", http.StatusInternalServerError, "Something went wrong!"},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, tc.path, nil))
		require.NoError(t, err)
		assert.Equal(t, tc.status, resp.StatusCode, tc.path)
		assert.Equal(t, tc.msg, errorBody(t, resp), tc.path)
	}
}

func TestAuthAndRoleGates(t *testing.T) {
	app := newTestApp()
	auth := stubAuth{ids: map[string]service.Identity{
		"agent": {UserID: "a1", Role: model.RoleAgent},
		"buyer": {UserID: "b1", Role: model.RoleBuyer},
	}}
	app.Get("/agents", AuthMiddleware(auth), RestrictTo(model.RoleAgent), func(c *fiber.Ctx) error {
		id, _ := CurrentUser(c)
		return c.SendString(id.UserID)
	})
	app.Get("/open", RestrictTo(model.RoleAgent), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	request := func(path, header string) *http.Response {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	resp := request("/agents", "Bearer agent")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "a1", string(body))

	assert.Equal(t, http.StatusForbidden, request("/agents", "Bearer buyer").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, request("/agents", "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, request("/agents", "agent").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, request("/agents", "Bearer nope").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, request("/open", "").StatusCode)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken("Bearer"))
	assert.Equal(t, "", bearerToken(""))
}

func TestRateLimiterInMemory(t *testing.T) {
	app := newTestApp()
	app.Post("/leads", RateLimiter(nil, RateLimitConfig{Limit: 2, Window: time.Minute, Block: time.Minute, KeyPrefix: "test"}, zap.NewNop()),
		func(c *fiber.Ctx) error { return c.SendStatus(http.StatusCreated) })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/leads", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/leads", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func TestRateLimiterRedisFailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	app := newTestApp()
	app.Post("/leads", RateLimiter(rdb, RateLimitConfig{Limit: 1, Window: time.Minute, Block: time.Minute, KeyPrefix: "test"}, zap.NewNop()),
		func(c *fiber.Ctx) error { return c.SendStatus(http.StatusCreated) })

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/leads", nil), 5000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	app := newTestApp()
	app.Post("/leads", RateLimiter(nil, RateLimitConfig{Limit: 0}, zap.NewNop()),
		func(c *fiber.Ctx) error { return c.SendStatus(http.StatusCreated) })

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/leads", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	}
}
