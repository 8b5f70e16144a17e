// Package sessions implements the server-side session store keyed by
// an opaque cookie token. A Redis-backed store serves production, a
// map-backed store serves tests and local development.
package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/thermopolio/thermopolio/internal/models"
)

// ErrNotFound is returned when the token maps to no live session.
var ErrNotFound = errors.New("session not found")

// Store is the contract middleware and handlers use to manage sessions.
type Store interface {
	// Create starts a session for the user and returns the cookie token.
	Create(ctx context.Context, userUID string) (string, error)
	// Get returns the session for token, or ErrNotFound.
	Get(ctx context.Context, token string) (*models.Session, error)
	// SaveUser caches the user record into an existing session.
	SaveUser(ctx context.Context, token string, user *models.User) error
	// Destroy removes the session. Destroying a missing session is not
	// an error.
	Destroy(ctx context.Context, token string) error
}

// generateToken returns n random bytes hex-encoded.
func generateToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("sessions.generateToken: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
