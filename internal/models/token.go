package models

import "time"

// Purposes an email token can be issued for.
const (
	TokenPurposeVerifyEmail   = "verify_email"
	TokenPurposeResetPassword = "reset_password"
)

// EmailToken is a one-time token mailed to a user, either to prove
// control of an email address or to authorize a password reset.
// A token is invalid after ExpiresAt or once UsedAt is set.
type EmailToken struct {
	Token     string     // Random UUID
	UserUID   string     // Account the token was issued for
	Purpose   string     // verify_email or reset_password
	ExpiresAt time.Time  //
	UsedAt    *time.Time // Set on first successful use
}

// Usable reports whether the token can still be consumed.
func (t *EmailToken) Usable() bool {
	return t.UsedAt == nil && time.Now().Before(t.ExpiresAt)
}
