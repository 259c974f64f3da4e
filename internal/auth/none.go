package auth

import (
	"net/http"
)

// NoAuth implements Authenticator with no authentication (all requests allowed)
type NoAuth struct{}

// NewNoAuth creates a new NoAuth authenticator
func NewNoAuth() *NoAuth {
	return &NoAuth{}
}

// Authenticate always succeeds with an anonymous user
func (a *NoAuth) Authenticate(r *http.Request) (*User, error) {
	return &User{Username: "anonymous"}, nil
}

// Middleware passes all requests through untouched
func (a *NoAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return next
	}
}
