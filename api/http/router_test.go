package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/colorfit/api/http/handlers"
	"github.com/artem13815/colorfit/api/http/middleware"
	"github.com/artem13815/colorfit/pkg/health"
	"github.com/artem13815/colorfit/pkg/security/jwt"
)

type readiness struct{ err error }

func (r readiness) Ready(context.Context) error { return r.err }

func newTestApp(ready health.ReadinessUseCase, limit fiber.Handler) *fiber.App {
	app := fiber.New()
	Register(app, Routes{
		Auth:        handlers.NewAuthHandler(nil),
		Health:      handlers.NewHealthHandler(ready),
		History:     handlers.NewHistoryHandler(nil),
		Products:    handlers.NewProductsHandler(nil),
		Chat:        handlers.NewChatHandler(nil),
		RequireUser: jwt.NewAuthMiddleware(jwt.NewParser("secret", "colorfit")),
		AuthLimit:   limit,
	})
	return app
}

func TestRegister_Health(t *testing.T) {
	app := newTestApp(readiness{}, nil)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/ready", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	app = newTestApp(readiness{err: errors.New("postgres: down")}, nil)
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/ready", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRegister_HistoryNeedsToken(t *testing.T) {
	app := newTestApp(readiness{}, nil)
	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/api/history/all"},
		{http.MethodPost, "/api/history/add"},
		{http.MethodDelete, "/api/history/delete/00000000-0000-0000-0000-000000000000"},
	} {
		resp, err := app.Test(httptest.NewRequest(r.method, r.path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, r.path)
	}
}

func TestRegister_AuthRateLimited(t *testing.T) {
	app := newTestApp(readiness{}, middleware.NewRateLimiter(0.001, 1).Handler())

	// The first request is rejected by validation, the second by the limiter.
	req := func() *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
		r.Header.Set("Content-Type", "application/json")
		return r
	}
	resp, err := app.Test(req())
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(req())
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
