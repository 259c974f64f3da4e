package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/installdeck/installdeck/internal/client/errors"
	"github.com/installdeck/installdeck/internal/client/output"
	"github.com/installdeck/installdeck/internal/client/prompts"
)

var (
	srcName        string
	srcDescription string
	srcWebsite     string
	srcInstallCmd  string
	srcSetupCmd    string
	srcRequireSudo bool
	srcPriority    int
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage package sources",
	Long:  `Create, list, get, update, and delete package sources.`,
}

var sourceCreateCmd = &cobra.Command{
	Use:   "create <slug>",
	Short: "Create a new source",
	Args:  cobra.ExactArgs(1),
	Run:   runSourceCreate,
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sources",
	Args:  cobra.NoArgs,
	Run:   runSourceList,
}

var sourceGetCmd = &cobra.Command{
	Use:   "get <slug>",
	Short: "Get source details",
	Args:  cobra.ExactArgs(1),
	Run:   runSourceGet,
}

var sourceUpdateCmd = &cobra.Command{
	Use:   "update <slug>",
	Short: "Update a source",
	Args:  cobra.ExactArgs(1),
	Run:   runSourceUpdate,
}

var sourceDeleteCmd = &cobra.Command{
	Use:   "delete <slug>",
	Short: "Delete a source",
	Args:  cobra.ExactArgs(1),
	Run:   runSourceDelete,
}

func init() {
	sourceCmd.AddCommand(sourceCreateCmd)
	sourceCmd.AddCommand(sourceListCmd)
	sourceCmd.AddCommand(sourceGetCmd)
	sourceCmd.AddCommand(sourceUpdateCmd)
	sourceCmd.AddCommand(sourceDeleteCmd)

	for _, cmd := range []*cobra.Command{sourceCreateCmd, sourceUpdateCmd} {
		cmd.Flags().StringVar(&srcName, "name", "", "Display name")
		cmd.Flags().StringVar(&srcDescription, "description", "", "Source description")
		cmd.Flags().StringVar(&srcWebsite, "website", "", "Source website URL")
		cmd.Flags().StringVar(&srcInstallCmd, "install-cmd", "", "Install command prefix (e.g. 'apt install -y')")
		cmd.Flags().StringVar(&srcSetupCmd, "setup-cmd", "", "One-time setup command")
		cmd.Flags().BoolVar(&srcRequireSudo, "require-sudo", false, "Prefix install commands with sudo")
		cmd.Flags().IntVar(&srcPriority, "priority", 0, "Base priority of the source")
	}

	rootCmd.AddCommand(sourceCmd)
}

func sourceBody(slug string) map[string]interface{} {
	body := map[string]interface{}{
		"slug":        slug,
		"name":        srcName,
		"installCmd":  srcInstallCmd,
		"requireSudo": srcRequireSudo,
		"priority":    srcPriority,
	}
	if srcDescription != "" {
		body["description"] = srcDescription
	}
	if srcWebsite != "" {
		body["website"] = srcWebsite
	}
	if srcSetupCmd != "" {
		body["setupCmd"] = srcSetupCmd
	}
	return body
}

func runSourceCreate(cmd *cobra.Command, args []string) {
	slug := args[0]
	c := getAuthenticatedClient()

	resp, err := c.Post("/api/v1/sources", sourceBody(slug))
	if err != nil {
		errors.ExitWithError(err, "failed to create source")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("failed to create source: %s", string(body)))
	}

	if flagJSON {
		output.OutputJSON(map[string]string{"slug": slug}, nil)
	} else {
		output.PrintSuccess(fmt.Sprintf("Created source '%s'", slug))
	}
}

func runSourceList(cmd *cobra.Command, args []string) {
	c := getAuthenticatedClient()

	resp, err := c.Get("/api/v1/sources")
	if err != nil {
		errors.ExitWithError(err, "failed to list sources")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("failed to list sources: %s", string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errors.ExitWithError(err, "failed to read response")
	}

	var sources []map[string]interface{}
	if err := json.Unmarshal(body, &sources); err != nil {
		errors.ExitWithError(err, "failed to parse response")
	}

	if flagJSON {
		output.OutputJSON(sources, nil)
		return
	}

	if len(sources) == 0 {
		fmt.Println("No sources found")
		return
	}

	table := output.NewTableWriter()
	table.WriteHeader("SLUG", "NAME", "INSTALL CMD", "SUDO", "PRIORITY")
	for _, s := range sources {
		sudo := "no"
		if v, ok := s["requireSudo"].(bool); ok && v {
			sudo = "yes"
		}
		priority := ""
		if v, ok := s["priority"].(float64); ok {
			priority = strconv.Itoa(int(v))
		}
		table.WriteRow(
			fmt.Sprintf("%v", s["slug"]),
			fmt.Sprintf("%v", s["name"]),
			fmt.Sprintf("%v", s["installCmd"]),
			sudo,
			priority,
		)
	}
	table.Flush()
}

func runSourceGet(cmd *cobra.Command, args []string) {
	slug := args[0]
	c := getAuthenticatedClient()

	resp, err := c.Get("/api/v1/sources/" + slug)
	if err != nil {
		errors.ExitWithError(err, "failed to get source")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("failed to get source: %s", string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errors.ExitWithError(err, "failed to read response")
	}

	var source map[string]interface{}
	if err := json.Unmarshal(body, &source); err != nil {
		errors.ExitWithError(err, "failed to parse response")
	}

	if flagJSON {
		output.OutputJSON(source, nil)
		return
	}

	fmt.Printf("Slug: %v\n", source["slug"])
	fmt.Printf("Name: %v\n", source["name"])
	if desc, ok := source["description"].(string); ok && desc != "" {
		fmt.Printf("Description: %s\n", desc)
	}
	if site, ok := source["website"].(string); ok && site != "" {
		fmt.Printf("Website: %s\n", site)
	}
	fmt.Printf("Install command: %v\n", source["installCmd"])
	if setup, ok := source["setupCmd"].(string); ok && setup != "" {
		fmt.Printf("Setup command: %s\n", setup)
	}
	fmt.Printf("Require sudo: %v\n", source["requireSudo"])
	fmt.Printf("Priority: %v\n", source["priority"])
}

func runSourceUpdate(cmd *cobra.Command, args []string) {
	slug := args[0]
	c := getAuthenticatedClient()

	resp, err := c.Put("/api/v1/sources/"+slug, sourceBody(slug))
	if err != nil {
		errors.ExitWithError(err, "failed to update source")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("failed to update source: %s", string(body)))
	}

	if flagJSON {
		output.OutputJSON(map[string]string{"slug": slug}, nil)
	} else {
		output.PrintSuccess(fmt.Sprintf("Updated source '%s'", slug))
	}
}

func runSourceDelete(cmd *cobra.Command, args []string) {
	slug := args[0]
	c := getAuthenticatedClient()

	if !flagYes {
		if !prompts.ConfirmDeletion("source", slug, "") {
			fmt.Println("Deletion cancelled")
			return
		}
	}

	resp, err := c.Delete("/api/v1/sources/" + slug)
	if err != nil {
		errors.ExitWithError(err, "failed to delete source")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("failed to delete source: %s", string(body)))
	}

	if flagJSON {
		output.OutputJSON(map[string]bool{"deleted": true}, nil)
	} else {
		output.PrintSuccess(fmt.Sprintf("Deleted source '%s'", slug))
	}
}
