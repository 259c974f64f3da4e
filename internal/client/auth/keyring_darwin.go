//go:build darwin
// +build darwin

package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

var ErrNotFound = errors.New("credentials not found")

const (
	keychainService = "installdeck"
	configDir       = ".config/installdeck"
	configFile      = "credentials.yaml"
)

// ConfigFile represents the URL-only config file on macOS; the token lives
// in the Keychain.
type ConfigFile struct {
	URL string `yaml:"url"`
}

// getConfigPath returns the path to the config file (URL only)
func getConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDir, configFile), nil
}

// LoadStoredToken loads the token from the macOS Keychain
func LoadStoredToken() (string, error) {
	url, err := LoadStoredURL()
	if err != nil {
		return "", err
	}

	token, err := keyring.Get(keychainService, url)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get token from keychain: %w", err)
	}

	return token, nil
}

// LoadStoredURL loads the URL from the config file
func LoadStoredURL() (string, error) {
	path, err := getConfigPath()
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read config file: %w", err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return "", fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.URL == "" {
		return "", ErrNotFound
	}

	return config.URL, nil
}

// SaveCredentials saves the URL to the config file and the token to the
// Keychain
func SaveCredentials(url, token string) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	config := ConfigFile{URL: url}
	data, err := yaml.Marshal(&config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := keyring.Set(keychainService, url, token); err != nil {
		return fmt.Errorf("failed to save token to keychain: %w", err)
	}

	return nil
}

// DeleteCredentials removes the URL from the config and the token from the
// Keychain
func DeleteCredentials() error {
	// URL is needed as the keychain account key
	url, urlErr := LoadStoredURL()

	if urlErr == nil {
		if err := keyring.Delete(keychainService, url); err != nil && err != keyring.ErrNotFound {
			return fmt.Errorf("failed to delete token from keychain: %w", err)
		}
	}

	path, err := getConfigPath()
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}

	return nil
}
