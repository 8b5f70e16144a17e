// Package middlewarectx contains the HTTP middleware of the request
// path: session resolution, role gating, rate limiting and panic
// recovery.
//
// SessionMiddleware resolves the session cookie, loads and caches the
// user record into the session and exposes it through the request
// context. Requests without a live session are rejected with 401.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/thermopolio/thermopolio/internal/http/response"
	"github.com/thermopolio/thermopolio/internal/lib/sl"
	"github.com/thermopolio/thermopolio/internal/models"
	"github.com/thermopolio/thermopolio/internal/sessions"
	"github.com/thermopolio/thermopolio/internal/storage"
)

// Key is the type of the context keys this package sets.
type Key string

const (
	// UserKey holds the authenticated *models.User.
	UserKey Key = "user"
	// SessionTokenKey holds the raw session cookie token.
	SessionTokenKey Key = "session_token"
)

// UserLoader loads user records for uncached sessions.
type UserLoader interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// CurrentUser returns the authenticated user set by SessionMiddleware.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(UserKey).(*models.User)
	return u, ok
}

// SessionToken returns the cookie token set by SessionMiddleware.
func SessionToken(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(SessionTokenKey).(string)
	return t, ok
}

// SessionMiddleware returns the middleware resolving the session
// cookie into an authenticated user.
//
// A session whose user record is not yet cached triggers one load from
// the user store; a session referencing a vanished user is destroyed.
// The cached record is written back into the session, the only session
// mutation on the request path.
func SessionMiddleware(store sessions.Store, users UserLoader, cookieName string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SessionMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			cookie, err := r.Cookie(cookieName)
			if err != nil {
				log.Info("missing session cookie")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication required"))
				return
			}

			sess, err := store.Get(r.Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, sessions.ErrNotFound) {
					log.Error("session lookup failed", sl.Err(err))
				}
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired session"))
				return
			}

			user := sess.User
			if user == nil {
				user, err = users.GetUser(r.Context(), sess.UserUID)
				if err != nil {
					if errors.Is(err, storage.ErrNotFound) {
						// The account is gone; the session must not outlive it.
						if destroyErr := store.Destroy(r.Context(), cookie.Value); destroyErr != nil {
							log.Error("failed to destroy orphaned session", sl.Err(destroyErr))
						}
						w.WriteHeader(http.StatusUnauthorized)
						render.JSON(w, r, response.Error("invalid or expired session"))
						return
					}
					log.Error("failed to load session user", sl.Err(err))
					w.WriteHeader(http.StatusInternalServerError)
					render.JSON(w, r, response.Error("internal server error"))
					return
				}
				if err = store.SaveUser(r.Context(), cookie.Value, user); err != nil {
					log.Error("failed to cache user into session", sl.Err(err))
				}
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			ctx = context.WithValue(ctx, SessionTokenKey, cookie.Value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalSessionMiddleware resolves the session like SessionMiddleware
// but lets anonymous requests through. Requests carrying a cookie that
// resolves to a live session proceed authenticated; everything else
// proceeds without a user in the context.
func OptionalSessionMiddleware(store sessions.Store, users UserLoader, cookieName string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.OptionalSessionMiddleware"

			cookie, err := r.Cookie(cookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := store.Get(r.Context(), cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			user := sess.User
			if user == nil {
				user, err = users.GetUser(r.Context(), sess.UserUID)
				if err != nil {
					log.With(slog.String("op", op)).Info("session user unavailable, proceeding anonymously", sl.Err(err))
					next.ServeHTTP(w, r)
					return
				}
				if err = store.SaveUser(r.Context(), cookie.Value, user); err != nil {
					log.With(slog.String("op", op)).Error("failed to cache user into session", sl.Err(err))
				}
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			ctx = context.WithValue(ctx, SessionTokenKey, cookie.Value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
