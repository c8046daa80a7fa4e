// Package middleware provides HTTP middlewares for authentication, request
// logging and rate limiting.
package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/atinyakov/PlantCare/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// TokenParser verifies a session access token and returns its user id.
type TokenParser interface {
	ParseAccess(token string) (int64, error)
}

// UserChecker confirms that the user behind a valid token still exists and
// may act.
type UserChecker interface {
	Authenticate(ctx context.Context, userID int64) (*models.User, error)
}

// BearerAuth enforces "Authorization: Bearer <token>" on every request.
//
// On success the user id is stored in the request context; see
// GetUserIDFromContext. The service "Token" scheme is rejected here so the
// two credentials cannot be confused. users may be nil.
func BearerAuth(tokens TokenParser, users UserChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := credential(r, "Bearer")
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
				writeError(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
				return
			}
			uid, err := tokens.ParseAccess(raw)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				writeError(w, http.StatusUnauthorized, "Given token not valid for any token type")
				return
			}
			if users != nil {
				if _, err := users.Authenticate(r.Context(), uid); err != nil {
					writeError(w, http.StatusUnauthorized, "User not found or inactive")
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), uid)))
		})
	}
}

// ServiceToken enforces "Authorization: Token <secret>" for internal
// tooling. An empty secret disables the routes it guards.
func ServiceToken(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				writeError(w, http.StatusForbidden, "Service access is not configured")
				return
			}
			raw, ok := credential(r, "Token")
			if !ok || subtle.ConstantTimeCompare([]byte(raw), []byte(secret)) != 1 {
				w.Header().Set("WWW-Authenticate", `Token realm="service"`)
				writeError(w, http.StatusUnauthorized, "Invalid service token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userKey, id)
}

// GetUserIDFromContext extracts the authenticated user id from the request
// context. Returns 0 if not found.
func GetUserIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(userKey).(int64); ok {
		return id
	}
	return 0
}

func credential(r *http.Request, scheme string) (string, bool) {
	h := r.Header.Get("Authorization")
	prefix, rest, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(prefix, scheme) {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	return rest, rest != ""
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
