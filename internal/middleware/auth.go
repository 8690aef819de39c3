// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// AuthTokenKey is the context key for the raw bearer token.
	AuthTokenKey ContextKey = "auth_token"
	// SubjectKey is the context key for the token subject.
	SubjectKey ContextKey = "subject"
)

// TokenPassthrough extracts an optional bearer token from the Authorization
// header and stores it in the request context. The token is not verified
// here: it belongs to the downstream restaurant API, which enforces it on
// collection operations. When the token happens to be a JWT, its subject
// claim is decoded (unverified) for log correlation and rate-limit keying.
func TokenPassthrough() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), AuthTokenKey, token)
			if sub := unverifiedSubject(token); sub != "" {
				ctx = context.WithValue(ctx, SubjectKey, sub)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return authHeader
}

// unverifiedSubject decodes the token without signature verification and
// returns its subject claim. Opaque non-JWT tokens yield "".
func unverifiedSubject(token string) string {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return ""
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

// GetAuthToken gets the raw bearer token from context.
func GetAuthToken(ctx context.Context) string {
	if v := ctx.Value(AuthTokenKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetSubject gets the decoded token subject from context.
func GetSubject(ctx context.Context) string {
	if v := ctx.Value(SubjectKey); v != nil {
		return v.(string)
	}
	return ""
}
