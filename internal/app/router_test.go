package app_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/atelier-pos/atelier/internal/app"
	"github.com/atelier-pos/atelier/internal/auth"
	"github.com/atelier-pos/atelier/internal/shared"
)

type panickingRepo struct{}

func (panickingRepo) FindByUsername(context.Context, string) (*auth.User, error) {
	panic("account store unavailable")
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	manager := shared.NewSessionManager(client, "atelier_session", "test-secret", time.Hour, false)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         &app.Config{AppEnv: "development", AppRequestTimeout: time.Second},
		SessionManager: manager,
		AuthHandler:    auth.NewHandler(logger, auth.NewService(panickingRepo{})),
	})
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, res.Code)
}

// A panic below the session middleware must still be caught and turned
// into a 500 instead of tearing down the connection.
func TestRouterRecoversPanics(t *testing.T) {
	router := newTestRouter(t)

	res := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"kaya","password":"hunter2"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusInternalServerError, res.Code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	router := newTestRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/transactions", nil))
	require.Equal(t, http.StatusUnauthorized, res.Code)
}
