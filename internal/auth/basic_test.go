package auth

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeUsersFile(t *testing.T, users map[string]string) string {
	t.Helper()

	content := "users:\n"
	for username, password := range users {
		hash, err := HashPassword(password)
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}
		content += fmt.Sprintf("  - username: %s\n    password: %s\n", username, hash)
	}

	path := filepath.Join(t.TempDir(), "users.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write users file: %v", err)
	}
	return path
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBasicAuth_Authenticate(t *testing.T) {
	path := writeUsersFile(t, map[string]string{"alice": "s3cret"})

	a, err := NewBasicAuth(path, discardLogger())
	if err != nil {
		t.Fatalf("NewBasicAuth failed: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{"valid credentials", "alice", "s3cret", false},
		{"wrong password", "alice", "wrong", true},
		{"unknown user", "bob", "s3cret", true},
		{"no credentials", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.username != "" {
				req.SetBasicAuth(tt.username, tt.password)
			}

			user, err := a.Authenticate(req)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate failed: %v", err)
			}
			if user.Username != tt.username {
				t.Errorf("username = %q, want %q", user.Username, tt.username)
			}
		})
	}
}

func TestBasicAuth_MiddlewareStoresUser(t *testing.T) {
	path := writeUsersFile(t, map[string]string{"alice": "s3cret"})

	a, err := NewBasicAuth(path, discardLogger())
	if err != nil {
		t.Fatalf("NewBasicAuth failed: %v", err)
	}

	var contextUser *User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contextUser = UserFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("alice", "s3cret")
	rr := httptest.NewRecorder()
	a.Middleware()(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("middleware returned %v, want %v", rr.Code, http.StatusOK)
	}
	if contextUser == nil || contextUser.Username != "alice" {
		t.Errorf("context user = %v, want alice", contextUser)
	}
}

func TestBasicAuth_MiddlewareRejectsUnauthenticated(t *testing.T) {
	path := writeUsersFile(t, map[string]string{"alice": "s3cret"})

	a, err := NewBasicAuth(path, discardLogger())
	if err != nil {
		t.Fatalf("NewBasicAuth failed: %v", err)
	}

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	a.Middleware()(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("middleware returned %v, want %v", rr.Code, http.StatusUnauthorized)
	}
	if called {
		t.Error("next handler called for unauthenticated request")
	}
	if got := rr.Header().Get("WWW-Authenticate"); got != `Basic realm="installdeck"` {
		t.Errorf("WWW-Authenticate = %q", got)
	}
}

func TestNewBasicAuth_Errors(t *testing.T) {
	if _, err := NewBasicAuth(filepath.Join(t.TempDir(), "missing.yaml"), discardLogger()); err == nil {
		t.Error("expected error for missing users file")
	}

	bad := filepath.Join(t.TempDir(), "users.yaml")
	if err := os.WriteFile(bad, []byte("users: [not: valid"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewBasicAuth(bad, discardLogger()); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestNoAuth(t *testing.T) {
	a := NewNoAuth()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	user, err := a.Authenticate(req)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if user.Username != "anonymous" {
		t.Errorf("username = %q, want anonymous", user.Username)
	}
}
