package commands

import (
	"encoding/base64"
	"time"

	"github.com/spf13/cobra"

	"github.com/installdeck/installdeck/internal/client"
	"github.com/installdeck/installdeck/internal/client/auth"
	"github.com/installdeck/installdeck/internal/client/config"
	"github.com/installdeck/installdeck/internal/client/errors"
)

var (
	// Global flags
	flagURL     string
	flagToken   string
	flagJSON    bool
	flagVerbose bool
	flagTimeout time.Duration
	flagYes     bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "installdeck-ctl",
	Short: "InstallDeck CLI Client",
	Long: `installdeck-ctl is a command-line client for the InstallDeck server.

It generates install commands for a platform and manages the catalog of
sources, platforms, and applications via the REST API.`,
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "", "Server URL (or use INSTALLDECK_URL env var)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "Authentication token in 'user:password' format (or use INSTALLDECK_SESSION_TOKEN env var)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 30*time.Second, "HTTP request timeout")
	rootCmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "Skip confirmation prompts")
}

// getAuthenticatedClient resolves the server URL and credentials and
// returns a ready API client. Missing credentials are not an error; the
// server decides whether authentication is required.
func getAuthenticatedClient() *client.Client {
	serverURL, err := config.ResolveURL(flagURL)
	if err != nil {
		errors.ExitWithCode(errors.ExitInvalidArguments, err.Error())
	}

	token, err := auth.ResolveToken(flagToken)
	if err != nil {
		errors.ExitWithError(err, "failed to resolve authentication token")
	}

	var encodedToken string
	if token != "" {
		encodedToken = base64.StdEncoding.EncodeToString([]byte(token))
	}
	return client.NewClient(serverURL, encodedToken, flagTimeout, flagVerbose)
}
