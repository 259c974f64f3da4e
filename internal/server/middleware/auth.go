package middleware

import (
	"net/http"

	"github.com/installdeck/installdeck/internal/apierrors"
	"github.com/installdeck/installdeck/internal/auth"
)

// RequireAuth returns middleware that requires authentication for write
// operations. Read operations (GET) pass through unauthenticated.
func RequireAuth(authenticator auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodDelete:
				user, err := authenticator.Authenticate(r)
				if err != nil {
					w.Header().Set("WWW-Authenticate", `Basic realm="installdeck"`)
					apierrors.WriteError(w, apierrors.ErrCodeUnauthorized, "Unauthorized", http.StatusUnauthorized, nil)
					return
				}
				r = r.WithContext(auth.WithUser(r.Context(), user))
			}

			next.ServeHTTP(w, r)
		})
	}
}
