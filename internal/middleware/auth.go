package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/reelrate/reelrate-go/internal/crypto"
	"github.com/reelrate/reelrate-go/internal/model"
)

type contextKey string

const userKey contextKey = "user"

// UserResolver resolves a verified token's user id to a stored user.
type UserResolver interface {
	ResolveUser(ctx context.Context, id string) (*model.User, error)
}

// SessionAuth returns middleware that authenticates requests from the
// session cookie. A missing cookie, a token that fails verification for
// any reason, or a user id that no longer resolves all reject the request
// with 401 before it reaches the handler. On success the resolved user is
// attached to the request context.
func SessionAuth(cookies *SessionCookies, secret string, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := cookies.Read(r)
			if token == "" {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			userID, err := crypto.VerifyToken(token, secret)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			user, err := users.ResolveUser(r.Context(), userID)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext extracts the authenticated user from the request context.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
