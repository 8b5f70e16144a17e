package register

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/thermopolio/thermopolio/internal/models"
	"github.com/thermopolio/thermopolio/internal/services/auth"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Register(ctx context.Context, in auth.RegisterInput) (*models.PublicUser, error) {
	args := m.Called(ctx, in)
	user, _ := args.Get(0).(*models.PublicUser)
	return user, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func validRequest() Request {
	return Request{
		Username: "newuser",
		Password: "Password123",
		Email:    "newuser@example.com",
		Name:     "New User",
		Role:     models.RoleCustomer,
	}
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		mutate         func(*Request)
		mockUser       *models.PublicUser
		mockErr        error
		wantStatusCode int
		wantError      string
	}{
		{
			name: "valid registration",
			mockUser: &models.PublicUser{
				Username: "newuser",
				Role:     models.RoleCustomer,
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "username taken",
			mockErr:        auth.ErrUsernameTaken,
			wantStatusCode: http.StatusConflict,
			wantError:      "username already taken",
		},
		{
			name:           "unknown role",
			mutate:         func(r *Request) { r.Role = "admin" },
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:           "invalid email",
			mutate:         func(r *Request) { r.Email = "not-an-email" },
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:           "weak password",
			mutate:         func(r *Request) { r.Password = "short" },
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthServiceMock)
			handler := New(newNoopLogger(), authMock)

			req := validRequest()
			if tt.mutate != nil {
				tt.mutate(&req)
			}

			if tt.mockUser != nil || tt.mockErr != nil {
				authMock.On("Register", mock.Anything, mock.MatchedBy(func(in auth.RegisterInput) bool {
					return in.Username == req.Username && in.Role == req.Role
				})).Return(tt.mockUser, tt.mockErr).Once()
			}

			body, err := json.Marshal(req)
			require.NoError(t, err)

			httpReq := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
			httpReq = httpReq.WithContext(context.WithValue(httpReq.Context(), middleware.RequestIDKey, "reqid123"))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httpReq)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			}
			if tt.wantStatusCode == http.StatusCreated {
				assert.Equal(t, "OK", got["status"])
				data, ok := got["data"].(map[string]any)
				require.True(t, ok)
				user, ok := data["user"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "newuser", user["username"])
			}

			authMock.AssertExpectations(t)
		})
	}
}
