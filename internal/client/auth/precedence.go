package auth

import (
	"fmt"
	"os"
)

const (
	// TokenEnvVar is the environment variable for the authentication token
	TokenEnvVar = "INSTALLDECK_SESSION_TOKEN"
)

// ResolveToken resolves the authentication token using precedence:
//  1. flagToken (--token flag)
//  2. INSTALLDECK_SESSION_TOKEN environment variable
//  3. Stored credentials
//
// Returns the empty string when no token is configured anywhere.
func ResolveToken(flagToken string) (string, error) {
	if flagToken != "" {
		return flagToken, nil
	}

	if envToken := os.Getenv(TokenEnvVar); envToken != "" {
		return envToken, nil
	}

	storedToken, err := LoadStoredToken()
	if err != nil {
		if err == ErrNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to load stored token: %w", err)
	}

	return storedToken, nil
}
