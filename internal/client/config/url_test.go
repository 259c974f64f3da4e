//go:build !darwin
// +build !darwin

package config

import (
	"testing"

	"github.com/installdeck/installdeck/internal/client/auth"
)

func TestResolveURL_Precedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(URLEnvVar, "http://env:8080/")

	url, err := ResolveURL("http://flag:8080/")
	if err != nil {
		t.Fatalf("ResolveURL failed: %v", err)
	}
	if url != "http://flag:8080" {
		t.Errorf("url = %q, want flag URL with trailing slash trimmed", url)
	}

	url, err = ResolveURL("")
	if err != nil {
		t.Fatalf("ResolveURL failed: %v", err)
	}
	if url != "http://env:8080" {
		t.Errorf("url = %q, want env URL", url)
	}
}

func TestResolveURL_Stored(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := auth.SaveCredentials("http://stored:8080", "tok"); err != nil {
		t.Fatalf("SaveCredentials failed: %v", err)
	}

	url, err := ResolveURL("")
	if err != nil {
		t.Fatalf("ResolveURL failed: %v", err)
	}
	if url != "http://stored:8080" {
		t.Errorf("url = %q, want stored URL", url)
	}
}

func TestResolveURL_NothingConfigured(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, err := ResolveURL(""); err == nil {
		t.Error("expected error when no URL is configured anywhere")
	}
}

func TestNormalizeURL(t *testing.T) {
	if got := NormalizeURL("http://localhost:8080///"); got != "http://localhost:8080" {
		t.Errorf("NormalizeURL = %q", got)
	}
	if got := NormalizeURL("http://localhost:8080"); got != "http://localhost:8080" {
		t.Errorf("NormalizeURL = %q", got)
	}
}
