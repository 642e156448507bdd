package httpapi

import (
	"context"
	"net/http"

	clutchcall "github.com/cjlopez27/ClutchCall"
)

type emailContextKey struct{}

// EmailFromContext returns the authenticated email placed by Guard.
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailContextKey{}).(string)
	return email, ok
}

// Guard protects downstream handlers with the access-token cookie. Requests
// without a valid session are rejected before next sees them.
func Guard(gateway *clutchcall.Gateway) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if gateway == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			cookie, err := r.Cookie(accessCookie)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			email, err := gateway.ValidateAccess(r.Context(), cookie.Value)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), emailContextKey{}, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
