package middleware

import (
	"context"
	"net/http"
	"strings"
)

// UserEmailHeader carries the caller's identity. It is set by the upstream
// auth proxy after it has verified the session; this service trusts it.
const UserEmailHeader = "X-User-Email"

// contextKey is an unexported type used for context keys in this package.
// Only this package can create a key of this type, so no other package can
// read or shadow the value by accident.
type contextKey string

const userEmailKey contextKey = "userEmail"

// RequireUser rejects requests without an identity header and stores the
// email in the request context for the handlers.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := strings.TrimSpace(r.Header.Get(UserEmailHeader))
		if email == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthorized","message":"missing ` + UserEmailHeader + ` header"}` + "\n"))
			return
		}

		ctx := WithUserEmail(r.Context(), email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithUserEmail returns a copy of ctx carrying email.
func WithUserEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userEmailKey, email)
}

// UserEmailFromContext returns the email RequireUser stored, or "".
func UserEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(userEmailKey).(string)
	return email
}
