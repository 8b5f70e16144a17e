package models

import "time"

// Session links an opaque cookie token to an authenticated user.
// User holds the cached account record; when set it always refers to
// the same account as UserUID.
type Session struct {
	Token     string    `json:"-"`
	UserUID   string    `json:"user_uid"`
	User      *User     `json:"user,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
