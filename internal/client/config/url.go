package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/installdeck/installdeck/internal/client/auth"
)

const (
	// URLEnvVar is the environment variable for the server URL
	URLEnvVar = "INSTALLDECK_URL"
)

// ResolveURL resolves the server URL using precedence:
//  1. flagURL (--url flag)
//  2. INSTALLDECK_URL environment variable
//  3. Stored URL from the credentials file
func ResolveURL(flagURL string) (string, error) {
	if flagURL != "" {
		return NormalizeURL(flagURL), nil
	}

	if envURL := os.Getenv(URLEnvVar); envURL != "" {
		return NormalizeURL(envURL), nil
	}

	storedURL, err := auth.LoadStoredURL()
	if err != nil {
		return "", fmt.Errorf("no server URL configured. Use --url flag, %s env var, or run 'login' command", URLEnvVar)
	}

	return NormalizeURL(storedURL), nil
}

// NormalizeURL removes trailing slashes from URLs
func NormalizeURL(url string) string {
	return strings.TrimRight(url, "/")
}
