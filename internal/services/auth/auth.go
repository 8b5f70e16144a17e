// Package auth contains the business logic for registration, login,
// email verification and password resets.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/thermopolio/thermopolio/internal/lib/password"
	"github.com/thermopolio/thermopolio/internal/lib/sl"
	"github.com/thermopolio/thermopolio/internal/models"
	"github.com/thermopolio/thermopolio/internal/storage"
)

// Lifetimes of the two token kinds.
const (
	verifyTokenTTL = 24 * time.Hour
	resetTokenTTL  = time.Hour
)

// Errors surfaced to handlers, mapped there to HTTP status codes.
var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
)

// UserRepository is the user storage contract the service consumes.
type UserRepository interface {
	// RegisterUser stores a new user and returns its UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)
	// GetUserByUsername returns the user with the given username.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// GetUser returns the user with the given UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// MarkEmailVerified flips the verified flag for the user.
	MarkEmailVerified(ctx context.Context, userUID string) error
	// UpdatePassword replaces the stored password hash for the user.
	UpdatePassword(ctx context.Context, userUID, passwordHash string) error
}

// TokenRepository is the email-token storage contract.
type TokenRepository interface {
	CreateToken(ctx context.Context, token models.EmailToken) error
	GetToken(ctx context.Context, token string) (*models.EmailToken, error)
	MarkTokenUsed(ctx context.Context, token string) error
}

// MailPublisher hands mail jobs to the outbound queue.
type MailPublisher interface {
	PublishMail(job models.MailJob) error
}

// Service implements the authentication operations.
type Service struct {
	users   UserRepository
	tokens  TokenRepository
	mail    MailPublisher
	log     *slog.Logger
	baseURL string
}

// New creates the auth service.
func New(users UserRepository, tokens TokenRepository, mail MailPublisher, log *slog.Logger, baseURL string) *Service {
	return &Service{
		users:   users,
		tokens:  tokens,
		mail:    mail,
		log:     log,
		baseURL: baseURL,
	}
}

// RegisterInput carries the data of a registration request.
type RegisterInput struct {
	Username       string
	Password       string
	Email          string
	Name           string
	Role           string
	BusinessName   string
	BusinessType   string
	AssistanceType string
}

// Register creates a new account, issues a verification token and
// queues the welcome and verification mails. Returns ErrUsernameTaken
// when the username exists.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.PublicUser, error) {
	const op = "auth.Register"

	hashed, err := password.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		Username:       in.Username,
		Email:          in.Email,
		PasswordHash:   hashed,
		Name:           in.Name,
		Role:           in.Role,
		BusinessName:   in.BusinessName,
		BusinessType:   in.BusinessType,
		AssistanceType: in.AssistanceType,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.UID = uid

	if _, err = s.CreateVerificationToken(ctx, uid, in.Email); err != nil {
		// The account exists; the user can request a new token later.
		s.log.Error("failed to issue verification token", sl.Err(err))
	}
	s.publish(models.MailJob{
		To:      in.Email,
		Subject: "Benvenuto su Thermopolio",
		Body:    fmt.Sprintf("Ciao %s, il tuo account Thermopolio è pronto.", in.Name),
	})

	pub := user.Public()
	return &pub, nil
}

// Login checks the credentials and returns the stored user record.
// The caller establishes the session. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (*models.User, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.Compare(user.PasswordHash, rawPassword); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// CreateVerificationToken issues a 24h one-time token and queues the
// verification mail with the link embedding it.
func (s *Service) CreateVerificationToken(ctx context.Context, userUID, email string) (*models.EmailToken, error) {
	const op = "auth.CreateVerificationToken"

	token := models.EmailToken{
		Token:     uuid.New().String(),
		UserUID:   userUID,
		Purpose:   models.TokenPurposeVerifyEmail,
		ExpiresAt: time.Now().Add(verifyTokenTTL),
	}
	if err := s.tokens.CreateToken(ctx, token); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.publish(models.MailJob{
		To:      email,
		Subject: "Conferma il tuo indirizzo email",
		Body: fmt.Sprintf("Per confermare il tuo indirizzo apri il link: %s/verify-email?token=%s",
			s.baseURL, token.Token),
	})
	return &token, nil
}

// VerifyEmail consumes a verification token and marks the account's
// email as verified. Missing, expired, already-used or wrong-purpose
// tokens yield ErrInvalidToken.
func (s *Service) VerifyEmail(ctx context.Context, rawToken string) error {
	const op = "auth.VerifyEmail"

	token, err := s.lookupToken(ctx, rawToken, models.TokenPurposeVerifyEmail)
	if err != nil {
		return err
	}
	if err := s.users.MarkEmailVerified(ctx, token.UserUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.tokens.MarkTokenUsed(ctx, token.Token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RequestPasswordReset issues a 1h reset token for the account and
// queues the reset mail. Returns ErrUserNotFound for unknown usernames.
func (s *Service) RequestPasswordReset(ctx context.Context, username string) error {
	const op = "auth.RequestPasswordReset"

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	token := models.EmailToken{
		Token:     uuid.New().String(),
		UserUID:   user.UID,
		Purpose:   models.TokenPurposeResetPassword,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.tokens.CreateToken(ctx, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.publish(models.MailJob{
		To:      user.Email,
		Subject: "Reimposta la tua password",
		Body: fmt.Sprintf("Per scegliere una nuova password apri il link: %s/reset-password?token=%s",
			s.baseURL, token.Token),
	})
	return nil
}

// ResetPassword consumes a reset token and stores the new password.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	const op = "auth.ResetPassword"

	token, err := s.lookupToken(ctx, rawToken, models.TokenPurposeResetPassword)
	if err != nil {
		return err
	}
	hashed, err := password.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdatePassword(ctx, token.UserUID, hashed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.tokens.MarkTokenUsed(ctx, token.Token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// lookupToken fetches a token and checks purpose, expiry and single use.
func (s *Service) lookupToken(ctx context.Context, rawToken, purpose string) (*models.EmailToken, error) {
	const op = "auth.lookupToken"

	// Issued tokens are UUIDs; anything else is rejected before
	// touching storage.
	if _, err := uuid.Parse(rawToken); err != nil {
		return nil, ErrInvalidToken
	}

	token, err := s.tokens.GetToken(ctx, rawToken)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if token.Purpose != purpose || !token.Usable() {
		return nil, ErrInvalidToken
	}
	return token, nil
}

// publish queues a mail job. Mail failures never fail the calling
// operation.
func (s *Service) publish(job models.MailJob) {
	if s.mail == nil {
		return
	}
	if err := s.mail.PublishMail(job); err != nil {
		s.log.Error("failed to publish mail job", sl.Err(err), slog.String("to", job.To))
	}
}
