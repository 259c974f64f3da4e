package commands

import (
	"github.com/spf13/cobra"

	"github.com/installdeck/installdeck/internal/client/auth"
	"github.com/installdeck/installdeck/internal/client/errors"
	"github.com/installdeck/installdeck/internal/client/output"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials",
	Args:  cobra.NoArgs,
	Run:   runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) {
	if err := auth.DeleteCredentials(); err != nil {
		errors.ExitWithError(err, "failed to remove credentials")
	}

	if flagJSON {
		output.OutputJSON(map[string]bool{"loggedOut": true}, nil)
	} else {
		output.PrintSuccess("Logged out")
	}
}
