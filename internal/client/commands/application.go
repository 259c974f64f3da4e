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
	"github.com/installdeck/installdeck/internal/client/validation"
)

var (
	appName        string
	appDescription string
	appWebsite     string
	appIconURL     string
	appID          string

	pkgUnavailable bool
	pkgScripts     []string
	pkgLicense     string
	pkgVersion     string
)

var applicationCmd = &cobra.Command{
	Use:     "application",
	Aliases: []string{"app"},
	Short:   "Manage applications and their packages",
	Long:    `Create, list, get, update, and delete applications, and manage their per-source packages.`,
}

var applicationCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new application",
	Args:  cobra.ExactArgs(1),
	Run:   runApplicationCreate,
}

var applicationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all applications",
	Args:  cobra.NoArgs,
	Run:   runApplicationList,
}

var applicationGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get application details",
	Args:  cobra.ExactArgs(1),
	Run:   runApplicationGet,
}

var applicationDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an application",
	Args:  cobra.ExactArgs(1),
	Run:   runApplicationDelete,
}

var applicationAddPackageCmd = &cobra.Command{
	Use:   "add-package <id> <source=identifier>",
	Short: "Add a package to an application",
	Args:  cobra.ExactArgs(2),
	Run:   runApplicationAddPackage,
}

var applicationRemovePackageCmd = &cobra.Command{
	Use:   "remove-package <id> <source>",
	Short: "Remove an application's package for a source",
	Args:  cobra.ExactArgs(2),
	Run:   runApplicationRemovePackage,
}

func init() {
	applicationCmd.AddCommand(applicationCreateCmd)
	applicationCmd.AddCommand(applicationListCmd)
	applicationCmd.AddCommand(applicationGetCmd)
	applicationCmd.AddCommand(applicationDeleteCmd)
	applicationCmd.AddCommand(applicationAddPackageCmd)
	applicationCmd.AddCommand(applicationRemovePackageCmd)

	applicationCreateCmd.Flags().StringVar(&appID, "id", "", "Application id (generated when omitted)")
	applicationCreateCmd.Flags().StringVar(&appDescription, "description", "", "Application description")
	applicationCreateCmd.Flags().StringVar(&appWebsite, "website", "", "Application website URL")
	applicationCreateCmd.Flags().StringVar(&appIconURL, "icon-url", "", "Application icon URL")

	applicationAddPackageCmd.Flags().BoolVar(&pkgUnavailable, "unavailable", false, "Mark the package as not available")
	applicationAddPackageCmd.Flags().StringSliceVar(&pkgScripts, "script", []string{}, "Script URL in 'os=url' format (repeatable, for the script source)")
	applicationAddPackageCmd.Flags().StringVar(&pkgLicense, "license", "", "Package license")
	applicationAddPackageCmd.Flags().StringVar(&pkgVersion, "version", "", "Package version")

	rootCmd.AddCommand(applicationCmd)
}

func runApplicationCreate(cmd *cobra.Command, args []string) {
	name := args[0]
	c := getAuthenticatedClient()

	reqBody := map[string]interface{}{
		"name":     name,
		"packages": []interface{}{},
	}
	if appID != "" {
		reqBody["id"] = appID
	}
	if appDescription != "" {
		reqBody["description"] = appDescription
	}
	if appWebsite != "" {
		reqBody["website"] = appWebsite
	}
	if appIconURL != "" {
		reqBody["iconUrl"] = appIconURL
	}

	resp, err := c.Post("/api/v1/applications", reqBody)
	if err != nil {
		errors.ExitWithError(err, "failed to create application")
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("failed to create application: %s", string(body)))
	}

	var app map[string]interface{}
	if err := json.Unmarshal(body, &app); err != nil {
		errors.ExitWithError(err, "failed to parse response")
	}

	if flagJSON {
		output.OutputJSON(app, nil)
	} else {
		output.PrintSuccess(fmt.Sprintf("Created application '%s' (id %v)", name, app["id"]))
	}
}

func runApplicationList(cmd *cobra.Command, args []string) {
	c := getAuthenticatedClient()

	resp, err := c.Get("/api/v1/applications")
	if err != nil {
		errors.ExitWithError(err, "failed to list applications")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("failed to list applications: %s", string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errors.ExitWithError(err, "failed to read response")
	}

	var apps []map[string]interface{}
	if err := json.Unmarshal(body, &apps); err != nil {
		errors.ExitWithError(err, "failed to parse response")
	}

	if flagJSON {
		output.OutputJSON(apps, nil)
		return
	}

	if len(apps) == 0 {
		fmt.Println("No applications found")
		return
	}

	table := output.NewTableWriter()
	table.WriteHeader("ID", "NAME", "PACKAGES")
	for _, app := range apps {
		count := "0"
		if pkgs, ok := app["packages"].([]interface{}); ok {
			count = strconv.Itoa(len(pkgs))
		}
		table.WriteRow(
			fmt.Sprintf("%v", app["id"]),
			fmt.Sprintf("%v", app["name"]),
			count,
		)
	}
	table.Flush()
}

func runApplicationGet(cmd *cobra.Command, args []string) {
	id := args[0]
	c := getAuthenticatedClient()

	resp, err := c.Get("/api/v1/applications/" + id)
	if err != nil {
		errors.ExitWithError(err, "failed to get application")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("failed to get application: %s", string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errors.ExitWithError(err, "failed to read response")
	}

	var app map[string]interface{}
	if err := json.Unmarshal(body, &app); err != nil {
		errors.ExitWithError(err, "failed to parse response")
	}

	if flagJSON {
		output.OutputJSON(app, nil)
		return
	}

	fmt.Printf("ID: %v\n", app["id"])
	fmt.Printf("Name: %v\n", app["name"])
	if desc, ok := app["description"].(string); ok && desc != "" {
		fmt.Printf("Description: %s\n", desc)
	}
	if site, ok := app["website"].(string); ok && site != "" {
		fmt.Printf("Website: %s\n", site)
	}
	if pkgs, ok := app["packages"].([]interface{}); ok && len(pkgs) > 0 {
		fmt.Println("Packages:")
		for _, raw := range pkgs {
			pkg, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			line := fmt.Sprintf("  - %v: %v", pkg["source"], pkg["identifier"])
			if avail, ok := pkg["isAvailable"].(bool); ok && !avail {
				line += " (unavailable)"
			}
			fmt.Println(line)
		}
	}
}

func runApplicationDelete(cmd *cobra.Command, args []string) {
	id := args[0]
	c := getAuthenticatedClient()

	if !flagYes {
		if !prompts.ConfirmDeletion("application", id, "all its packages") {
			fmt.Println("Deletion cancelled")
			return
		}
	}

	resp, err := c.Delete("/api/v1/applications/" + id)
	if err != nil {
		errors.ExitWithError(err, "failed to delete application")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("failed to delete application: %s", string(body)))
	}

	if flagJSON {
		output.OutputJSON(map[string]bool{"deleted": true}, nil)
	} else {
		output.PrintSuccess(fmt.Sprintf("Deleted application '%s'", id))
	}
}

func runApplicationAddPackage(cmd *cobra.Command, args []string) {
	id := args[0]
	c := getAuthenticatedClient()

	source, identifier, err := validation.ValidatePackageSpec(args[1])
	if err != nil {
		errors.ExitWithCode(errors.ExitInvalidArguments, err.Error())
	}

	reqBody := map[string]interface{}{
		"source":      source,
		"identifier":  identifier,
		"isAvailable": !pkgUnavailable,
	}

	metadata := make(map[string]interface{})
	if len(pkgScripts) > 0 {
		scripts, err := validation.ParseScriptSpecs(pkgScripts)
		if err != nil {
			errors.ExitWithCode(errors.ExitInvalidArguments, err.Error())
		}
		metadata["scriptUrls"] = scripts
	}
	if pkgLicense != "" {
		metadata["license"] = pkgLicense
	}
	if pkgVersion != "" {
		metadata["version"] = pkgVersion
	}
	if len(metadata) > 0 {
		reqBody["metadata"] = metadata
	}

	resp, err := c.Post("/api/v1/applications/"+id+"/packages", reqBody)
	if err != nil {
		errors.ExitWithError(err, "failed to add package")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("failed to add package: %s", string(body)))
	}

	if flagJSON {
		output.OutputJSON(map[string]string{"application": id, "source": source, "identifier": identifier}, nil)
	} else {
		output.PrintSuccess(fmt.Sprintf("Added package '%s' (%s) to application '%s'", identifier, source, id))
	}
}

func runApplicationRemovePackage(cmd *cobra.Command, args []string) {
	id := args[0]
	source := args[1]
	c := getAuthenticatedClient()

	resp, err := c.Delete("/api/v1/applications/" + id + "/packages/" + source)
	if err != nil {
		errors.ExitWithError(err, "failed to remove package")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("failed to remove package: %s", string(body)))
	}

	if flagJSON {
		output.OutputJSON(map[string]bool{"removed": true}, nil)
	} else {
		output.PrintSuccess(fmt.Sprintf("Removed package for source '%s' from application '%s'", source, id))
	}
}
