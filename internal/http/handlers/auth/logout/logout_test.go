package logout

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/thermopolio/thermopolio/internal/config"
	"github.com/thermopolio/thermopolio/internal/http/middlewarectx"
)

type SessionStoreMock struct {
	mock.Mock
}

func (m *SessionStoreMock) Destroy(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLogoutHandler_ServeHTTP(t *testing.T) {
	cfg := config.SessionConfig{SessionTTL: time.Hour, CookieName: "session_id"}

	t.Run("destroys session and clears cookie", func(t *testing.T) {
		sessMock := new(SessionStoreMock)
		sessMock.On("Destroy", mock.Anything, "tok-1").Return(nil).Once()

		handler := New(newNoopLogger(), sessMock, cfg)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		ctx := context.WithValue(req.Context(), middlewarectx.SessionTokenKey, "tok-1")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req.WithContext(ctx))

		assert.Equal(t, http.StatusOK, rec.Code)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "session_id", cookies[0].Name)
		assert.Empty(t, cookies[0].Value)
		assert.Negative(t, cookies[0].MaxAge)

		sessMock.AssertExpectations(t)
	})

	t.Run("no session token in context", func(t *testing.T) {
		sessMock := new(SessionStoreMock)
		handler := New(newNoopLogger(), sessMock, cfg)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		sessMock.AssertNotCalled(t, "Destroy")
	})
}
