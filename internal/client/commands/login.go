package commands

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/installdeck/installdeck/internal/client"
	"github.com/installdeck/installdeck/internal/client/auth"
	clientconfig "github.com/installdeck/installdeck/internal/client/config"
	"github.com/installdeck/installdeck/internal/client/errors"
	"github.com/installdeck/installdeck/internal/client/output"
	"github.com/installdeck/installdeck/internal/client/prompts"
)

var loginCmd = &cobra.Command{
	Use:   "login [server-url]",
	Short: "Authenticate against a server and store credentials",
	Long: `Prompt for a username and password, verify them against the server,
and store the resulting credentials for later commands.

The server URL is taken from the argument, the --url flag, or the
` + clientconfig.URLEnvVar + ` environment variable.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	urlArg := flagURL
	if len(args) > 0 {
		urlArg = args[0]
	}

	serverURL, err := clientconfig.ResolveURL(urlArg)
	if err != nil {
		errors.ExitWithCode(errors.ExitInvalidArguments, err.Error())
	}

	username, err := prompts.PromptUsername()
	if err != nil {
		errors.ExitWithError(err, "failed to read username")
	}
	password, err := prompts.PromptPassword()
	if err != nil {
		errors.ExitWithError(err, "failed to read password")
	}

	token := username + ":" + password
	encoded := base64.StdEncoding.EncodeToString([]byte(token))

	c := client.NewClient(serverURL, encoded, flagTimeout, flagVerbose)
	resp, err := c.Get("/api/v1/whoami")
	if err != nil {
		errors.ExitWithError(err, "failed to reach server")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		errors.ExitWithCode(errors.ExitAuthError, "invalid username or password")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("login failed: %s", string(body)))
	}

	if err := auth.SaveCredentials(serverURL, encoded); err != nil {
		errors.ExitWithError(err, "failed to store credentials")
	}

	if flagJSON {
		output.OutputJSON(map[string]string{"url": serverURL, "username": username}, nil)
	} else {
		output.PrintSuccess(fmt.Sprintf("Logged in to %s as %s", serverURL, username))
	}
}
