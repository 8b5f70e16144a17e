package login

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/thermopolio/thermopolio/internal/config"
	"github.com/thermopolio/thermopolio/internal/models"
	"github.com/thermopolio/thermopolio/internal/services/auth"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Login(ctx context.Context, username, password string) (*models.User, error) {
	args := m.Called(ctx, username, password)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type SessionStoreMock struct {
	mock.Mock
}

func (m *SessionStoreMock) Create(ctx context.Context, userUID string) (string, error) {
	args := m.Called(ctx, userUID)
	return args.String(0), args.Error(1)
}

func (m *SessionStoreMock) SaveUser(ctx context.Context, token string, user *models.User) error {
	args := m.Called(ctx, token, user)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func sessionCfg() config.SessionConfig {
	return config.SessionConfig{
		SessionTTL: 24 * time.Hour,
		CookieName: "session_id",
	}
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	demoUser := &models.User{
		UID:      "uid-1",
		Username: "trattoria",
		Role:     models.RoleTavolaCalda,
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockUser       *models.User
		mockErr        error
		wantStatusCode int
		wantSuccess    *bool
		wantDashboard  string
		wantCookie     bool
	}{
		{
			name:           "valid login",
			requestBody:    Request{Username: "trattoria", Password: "Trattoria123"},
			mockUser:       demoUser,
			wantStatusCode: http.StatusOK,
			wantSuccess:    boolPtr(true),
			wantDashboard:  "restaurant",
			wantCookie:     true,
		},
		{
			name:           "invalid credentials",
			requestBody:    Request{Username: "trattoria", Password: "WrongPass1"},
			mockErr:        auth.ErrInvalidCredentials,
			wantStatusCode: http.StatusUnauthorized,
			wantSuccess:    boolPtr(false),
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "missing password short-circuits",
			requestBody:    Request{Username: "trattoria"},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthServiceMock)
			sessMock := new(SessionStoreMock)
			handler := New(newNoopLogger(), authMock, sessMock, sessionCfg())

			if tt.mockUser != nil || tt.mockErr != nil {
				req := tt.requestBody.(Request)
				authMock.On("Login", mock.Anything, req.Username, req.Password).
					Return(tt.mockUser, tt.mockErr).Once()
			}
			if tt.wantCookie {
				sessMock.On("Create", mock.Anything, tt.mockUser.UID).
					Return("sessiontoken", nil).Once()
				sessMock.On("SaveUser", mock.Anything, "sessiontoken", tt.mockUser).
					Return(nil).Once()
			}

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))

			if tt.wantSuccess != nil {
				assert.Equal(t, *tt.wantSuccess, got["success"])
			}
			if tt.wantDashboard != "" {
				assert.Equal(t, tt.wantDashboard, got["dashboardType"])
				user, ok := got["user"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "trattoria", user["username"])
				assert.NotContains(t, user, "passwordHash")
			}

			cookies := rec.Result().Cookies()
			if tt.wantCookie {
				require.Len(t, cookies, 1)
				assert.Equal(t, "session_id", cookies[0].Name)
				assert.Equal(t, "sessiontoken", cookies[0].Value)
				assert.True(t, cookies[0].HttpOnly)
			} else {
				assert.Empty(t, cookies)
			}

			// Incomplete or malformed bodies never reach the service.
			authMock.AssertExpectations(t)
			sessMock.AssertExpectations(t)
		})
	}
}

func boolPtr(b bool) *bool { return &b }
