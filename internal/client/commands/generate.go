package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/installdeck/installdeck/internal/client/errors"
	"github.com/installdeck/installdeck/internal/client/output"
)

var (
	genPlatform   string
	genPrefer     string
	genNixVariant string
)

var generateCmd = &cobra.Command{
	Use:   "generate <application-id>...",
	Short: "Generate install commands for applications",
	Long: `Generate ready-to-run install commands for a set of applications on a
target platform. One command is produced per package source, covering all
applications resolved to that source.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genPlatform, "platform", "", "Target platform slug (required)")
	generateCmd.Flags().StringVar(&genPrefer, "prefer", "", "Preferred source slug")
	generateCmd.Flags().StringVar(&genNixVariant, "nix-variant", "", "Nix installer variant (nix-shell, nix-env or nix-flakes)")
	generateCmd.MarkFlagRequired("platform")

	rootCmd.AddCommand(generateCmd)
}

// generateResult mirrors the server's generation response
type generateResult struct {
	Commands      []string `json:"commands"`
	SetupCommands []string `json:"setupCommands"`
	Warnings      []string `json:"warnings"`
	Breakdown     []struct {
		Source   string   `json:"source"`
		Packages []string `json:"packages"`
	} `json:"breakdown"`
}

func runGenerate(cmd *cobra.Command, args []string) {
	c := getAuthenticatedClient()

	reqBody := map[string]interface{}{
		"platformSlug":   genPlatform,
		"applicationIds": args,
	}
	if genPrefer != "" {
		reqBody["preferredSourceSlug"] = genPrefer
	}
	if genNixVariant != "" {
		reqBody["nixInstallerVariant"] = genNixVariant
	}

	resp, err := c.Post("/api/v1/generate", reqBody)
	if err != nil {
		errors.ExitWithError(err, "failed to generate commands")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errors.ExitWithError(err, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("failed to generate commands: %s", string(body)))
	}

	var result generateResult
	if err := json.Unmarshal(body, &result); err != nil {
		errors.ExitWithError(err, "failed to parse response")
	}

	if flagJSON {
		output.OutputJSON(result, nil)
		return
	}

	for _, warning := range result.Warnings {
		output.PrintWarning(warning)
	}

	output.PrintCommandBlock("Setup", result.SetupCommands)
	if len(result.SetupCommands) > 0 && len(result.Commands) > 0 {
		fmt.Println()
	}
	output.PrintCommandBlock("Install", result.Commands)

	if flagVerbose && len(result.Breakdown) > 0 {
		fmt.Println()
		table := output.NewTableWriter()
		table.WriteHeader("SOURCE", "PACKAGES")
		for _, entry := range result.Breakdown {
			table.WriteRow(entry.Source, strings.Join(entry.Packages, ", "))
		}
		table.Flush()
	}
}
