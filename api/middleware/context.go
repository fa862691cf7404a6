package middleware

import (
	"context"

	"github.com/angelmondragon/storefront-gateway/pkg/auth"
	"github.com/angelmondragon/storefront-gateway/pkg/auth/session"
)

type contextKey string

const ctxSession contextKey = "session"

// WithSession injects the resolved gateway session into the context.
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSession, sess)
}

func SessionFromContext(ctx context.Context) *session.Session {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxSession).(*session.Session); ok {
		return v
	}
	return nil
}

// CredentialFromContext returns the caller's credential, or auth.Anonymous on public routes.
func CredentialFromContext(ctx context.Context) auth.Credential {
	if sess := SessionFromContext(ctx); sess != nil {
		return sess.Credential()
	}
	return auth.Anonymous
}

func UserIDFromContext(ctx context.Context) string {
	if sess := SessionFromContext(ctx); sess != nil {
		return sess.UserID
	}
	return ""
}
