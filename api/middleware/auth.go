package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/angelmondragon/storefront-gateway/api/responses"
	pkgAuth "github.com/angelmondragon/storefront-gateway/pkg/auth"
	"github.com/angelmondragon/storefront-gateway/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
	"github.com/angelmondragon/storefront-gateway/pkg/logger"
)

// SessionResolver loads a gateway session by its opaque token.
type SessionResolver interface {
	Get(ctx context.Context, sessionID string) (*session.Session, error)
}

// Auth resolves the gateway bearer token into a session and rejects the request without one.
func Auth(sessions SessionResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return authenticate(sessions, logg, true)
}

// OptionalAuth attaches the session when a valid token is sent and lets anonymous callers through.
func OptionalAuth(sessions SessionResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return authenticate(sessions, logg, false)
}

func authenticate(sessions SessionResolver, logg *logger.Logger, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := pkgAuth.StripBearer(r.Header.Get("Authorization"))
			if !ok {
				if !required {
					next.ServeHTTP(w, r)
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			sess, err := sessions.Get(r.Context(), token)
			switch {
			case errors.Is(err, session.ErrSessionNotFound):
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired, please sign in again"))
				return
			case err != nil:
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
				return
			}

			ctx := WithSession(r.Context(), sess)
			if logg != nil {
				ctx = logg.WithUserID(ctx, sess.UserID)
				ctx = logg.WithSessionID(ctx, sess.ID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
