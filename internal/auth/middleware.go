package auth

import (
	"context"
	"net/http"
)

// TokenHeader carries the caller's Instagram access token.
const TokenHeader = "token"

// contextKey is unexported so no other package can collide with our keys.
type contextKey string

const tokenKey contextKey = "accessToken"

// RequireToken rejects requests without a token header with 401 before any
// handler (and so any upstream call) runs. The token is stored in the
// request context for TokenFromContext.
//
// The token is not validated here; the Graph API is the authority and an
// invalid token surfaces as an upstream failure.
func RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(TokenHeader)
		if token == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"No token provided"}` + "\n"))
			return
		}

		ctx := context.WithValue(r.Context(), tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TokenFromContext returns ("", false) outside RequireToken.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok && token != ""
}

// WithToken returns a copy of ctx carrying token. Used by tests and by
// callers that obtain the token some other way.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}
