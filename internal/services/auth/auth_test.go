package auth

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thermopolio/thermopolio/internal/lib/password"
	"github.com/thermopolio/thermopolio/internal/models"
	"github.com/thermopolio/thermopolio/internal/storage/memory"
)

type mailRecorder struct {
	mu   sync.Mutex
	jobs []models.MailJob
}

func (m *mailRecorder) PublishMail(job models.MailJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *mailRecorder) sent() []models.MailJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.MailJob(nil), m.jobs...)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newTestService(t *testing.T) (*Service, *memory.Storage, *mailRecorder) {
	t.Helper()
	repo := memory.New()
	mail := &mailRecorder{}
	svc := New(repo, repo, mail, newNoopLogger(), "http://localhost:8080")
	return svc, repo, mail
}

func TestRegister(t *testing.T) {
	svc, _, mail := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Username:     "trattoria",
		Password:     "Trattoria123",
		Email:        "oste@example.com",
		Name:         "Osteria",
		Role:         models.RoleTavolaCalda,
		BusinessName: "Osteria Popolare",
		BusinessType: "tavola_calda",
	})
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.NotEmpty(t, user.UID)
	assert.Equal(t, "trattoria", user.Username)
	assert.Equal(t, models.RoleTavolaCalda, user.Role)
	assert.Equal(t, "Osteria Popolare", user.BusinessName)
	assert.False(t, user.EmailVerified)

	// welcome mail plus verification mail
	jobs := mail.sent()
	require.Len(t, jobs, 2)
	var verification string
	for _, j := range jobs {
		assert.Equal(t, "oste@example.com", j.To)
		if strings.Contains(j.Body, "verify-email?token=") {
			verification = j.Body
		}
	}
	assert.NotEmpty(t, verification, "verification mail with token link expected")
}

func TestRegister_UsernameTaken(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	in := RegisterInput{Username: "mario", Password: "Password1", Email: "m@example.com", Role: models.RoleCustomer}
	_, err := svc.Register(ctx, in)
	require.NoError(t, err)

	_, err = svc.Register(ctx, in)
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Username: "mario", Password: "Password1", Email: "m@example.com", Role: models.RoleCustomer,
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "valid credentials", username: "mario", password: "Password1"},
		{name: "wrong password", username: "mario", password: "Password2", wantErr: ErrInvalidCredentials},
		{name: "unknown user", username: "luigi", password: "Password1", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Login(ctx, tt.username, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.username, user.Username)
			assert.NotEmpty(t, user.PasswordHash)
		})
	}
}

func TestVerifyEmail(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	pub, err := svc.Register(ctx, RegisterInput{
		Username: "mario", Password: "Password1", Email: "m@example.com", Role: models.RoleCustomer,
	})
	require.NoError(t, err)

	token, err := svc.CreateVerificationToken(ctx, pub.UID, "m@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.VerifyEmail(ctx, token.Token))

	u, err := repo.GetUser(ctx, pub.UID)
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)

	// one-time: the same token is rejected on reuse
	assert.ErrorIs(t, svc.VerifyEmail(ctx, token.Token), ErrInvalidToken)
}

func TestVerifyEmail_BadTokens(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	pub, err := svc.Register(ctx, RegisterInput{
		Username: "mario", Password: "Password1", Email: "m@example.com", Role: models.RoleCustomer,
	})
	require.NoError(t, err)

	expired := models.EmailToken{
		Token:     uuid.New().String(),
		UserUID:   pub.UID,
		Purpose:   models.TokenPurposeVerifyEmail,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, repo.CreateToken(ctx, expired))

	wrongPurpose := models.EmailToken{
		Token:     uuid.New().String(),
		UserUID:   pub.UID,
		Purpose:   models.TokenPurposeResetPassword,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.CreateToken(ctx, wrongPurpose))

	assert.ErrorIs(t, svc.VerifyEmail(ctx, uuid.New().String()), ErrInvalidToken)
	assert.ErrorIs(t, svc.VerifyEmail(ctx, expired.Token), ErrInvalidToken)
	assert.ErrorIs(t, svc.VerifyEmail(ctx, wrongPurpose.Token), ErrInvalidToken)
}

// failingTokenRepo fails the test on any storage access.
type failingTokenRepo struct {
	t *testing.T
}

func (f *failingTokenRepo) CreateToken(context.Context, models.EmailToken) error {
	f.t.Fatal("unexpected CreateToken call")
	return nil
}

func (f *failingTokenRepo) GetToken(context.Context, string) (*models.EmailToken, error) {
	f.t.Fatal("unexpected GetToken call")
	return nil, nil
}

func (f *failingTokenRepo) MarkTokenUsed(context.Context, string) error {
	f.t.Fatal("unexpected MarkTokenUsed call")
	return nil
}

func TestTokenOperations_MalformedToken(t *testing.T) {
	// A token that is not even a UUID must be rejected without a
	// storage lookup, the backend could not match it anyway.
	repo := memory.New()
	svc := New(repo, &failingTokenRepo{t: t}, nil, newNoopLogger(), "http://localhost:8080")
	ctx := context.Background()

	assert.ErrorIs(t, svc.VerifyEmail(ctx, "not-a-uuid"), ErrInvalidToken)
	assert.ErrorIs(t, svc.VerifyEmail(ctx, ""), ErrInvalidToken)
	assert.ErrorIs(t, svc.ResetPassword(ctx, "garbage", "NewPassword2"), ErrInvalidToken)
}

func TestPasswordReset(t *testing.T) {
	svc, _, mail := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Username: "mario", Password: "Password1", Email: "m@example.com", Role: models.RoleCustomer,
	})
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(ctx, "mario"))

	var token string
	for _, j := range mail.sent() {
		if i := strings.Index(j.Body, "reset-password?token="); i >= 0 {
			token = j.Body[i+len("reset-password?token="):]
		}
	}
	require.NotEmpty(t, token)

	require.NoError(t, svc.ResetPassword(ctx, token, "NewPassword2"))

	// old password rejected, new one accepted
	_, err = svc.Login(ctx, "mario", "Password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	user, err := svc.Login(ctx, "mario", "NewPassword2")
	require.NoError(t, err)
	assert.NoError(t, password.Compare(user.PasswordHash, "NewPassword2"))

	// reset token is one-time
	assert.ErrorIs(t, svc.ResetPassword(ctx, token, "Another3pw"), ErrInvalidToken)
}

func TestRequestPasswordReset_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.RequestPasswordReset(context.Background(), "nessuno")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
