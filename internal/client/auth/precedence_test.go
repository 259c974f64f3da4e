//go:build !darwin
// +build !darwin

package auth

import (
	"testing"
)

// These tests redirect the home directory so stored credentials land in a
// temp dir instead of the real ~/.config/installdeck.
func setTempHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

func TestResolveToken_FlagWins(t *testing.T) {
	setTempHome(t)
	t.Setenv(TokenEnvVar, "env-token")

	token, err := ResolveToken("flag-token")
	if err != nil {
		t.Fatalf("ResolveToken failed: %v", err)
	}
	if token != "flag-token" {
		t.Errorf("token = %q, want flag-token", token)
	}
}

func TestResolveToken_EnvBeatsStored(t *testing.T) {
	setTempHome(t)
	t.Setenv(TokenEnvVar, "env-token")

	if err := SaveCredentials("http://localhost:8080", "stored-token"); err != nil {
		t.Fatalf("SaveCredentials failed: %v", err)
	}

	token, err := ResolveToken("")
	if err != nil {
		t.Fatalf("ResolveToken failed: %v", err)
	}
	if token != "env-token" {
		t.Errorf("token = %q, want env-token", token)
	}
}

func TestResolveToken_FallsBackToStored(t *testing.T) {
	setTempHome(t)

	if err := SaveCredentials("http://localhost:8080", "stored-token"); err != nil {
		t.Fatalf("SaveCredentials failed: %v", err)
	}

	token, err := ResolveToken("")
	if err != nil {
		t.Fatalf("ResolveToken failed: %v", err)
	}
	if token != "stored-token" {
		t.Errorf("token = %q, want stored-token", token)
	}
}

func TestResolveToken_NothingConfigured(t *testing.T) {
	setTempHome(t)

	token, err := ResolveToken("")
	if err != nil {
		t.Fatalf("ResolveToken failed: %v", err)
	}
	if token != "" {
		t.Errorf("token = %q, want empty string", token)
	}
}

func TestCredentialsLifecycle(t *testing.T) {
	setTempHome(t)

	if _, err := LoadCredentials(); err != ErrNotFound {
		t.Fatalf("LoadCredentials on empty home = %v, want ErrNotFound", err)
	}

	if err := SaveCredentials("http://localhost:8080", "tok"); err != nil {
		t.Fatalf("SaveCredentials failed: %v", err)
	}

	creds, err := LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials failed: %v", err)
	}
	if creds.URL != "http://localhost:8080" || creds.Token != "tok" {
		t.Errorf("unexpected credentials: %+v", creds)
	}

	url, err := LoadStoredURL()
	if err != nil || url != "http://localhost:8080" {
		t.Errorf("LoadStoredURL = %q, %v", url, err)
	}

	if err := DeleteCredentials(); err != nil {
		t.Fatalf("DeleteCredentials failed: %v", err)
	}
	if _, err := LoadCredentials(); err != ErrNotFound {
		t.Errorf("LoadCredentials after delete = %v, want ErrNotFound", err)
	}

	// Deleting again is a no-op
	if err := DeleteCredentials(); err != nil {
		t.Errorf("second DeleteCredentials = %v, want nil", err)
	}
}
