package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/installdeck/installdeck/internal/client/errors"
	"github.com/installdeck/installdeck/internal/client/output"
	"github.com/installdeck/installdeck/internal/client/prompts"
)

var (
	platName          string
	platSources       []string
	platDefaultSource string
)

var platformCmd = &cobra.Command{
	Use:   "platform",
	Short: "Manage platforms",
	Long:  `Create, list, get, update, and delete platforms.`,
}

var platformCreateCmd = &cobra.Command{
	Use:   "create <slug>",
	Short: "Create a new platform",
	Args:  cobra.ExactArgs(1),
	Run:   runPlatformCreate,
}

var platformListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all platforms",
	Args:  cobra.NoArgs,
	Run:   runPlatformList,
}

var platformGetCmd = &cobra.Command{
	Use:   "get <slug>",
	Short: "Get platform details",
	Args:  cobra.ExactArgs(1),
	Run:   runPlatformGet,
}

var platformUpdateCmd = &cobra.Command{
	Use:   "update <slug>",
	Short: "Update a platform",
	Args:  cobra.ExactArgs(1),
	Run:   runPlatformUpdate,
}

var platformDeleteCmd = &cobra.Command{
	Use:   "delete <slug>",
	Short: "Delete a platform",
	Args:  cobra.ExactArgs(1),
	Run:   runPlatformDelete,
}

func init() {
	platformCmd.AddCommand(platformCreateCmd)
	platformCmd.AddCommand(platformListCmd)
	platformCmd.AddCommand(platformGetCmd)
	platformCmd.AddCommand(platformUpdateCmd)
	platformCmd.AddCommand(platformDeleteCmd)

	for _, cmd := range []*cobra.Command{platformCreateCmd, platformUpdateCmd} {
		cmd.Flags().StringVar(&platName, "name", "", "Display name")
		cmd.Flags().StringSliceVar(&platSources, "source", []string{}, "Supported source in 'slug:priority' format (repeatable)")
		cmd.Flags().StringVar(&platDefaultSource, "default-source", "", "Slug of the platform's default source")
	}

	rootCmd.AddCommand(platformCmd)
}

// parsePlatformSources parses "slug:priority" specs into source
// association objects
func parsePlatformSources() ([]map[string]interface{}, error) {
	sources := make([]map[string]interface{}, 0, len(platSources))
	for _, spec := range platSources {
		slug, priorityStr, found := strings.Cut(spec, ":")
		if !found || slug == "" {
			return nil, fmt.Errorf("invalid --source format. Expected 'slug:priority', got: '%s'", spec)
		}
		priority, err := strconv.Atoi(priorityStr)
		if err != nil {
			return nil, fmt.Errorf("invalid --source priority in '%s': %v", spec, err)
		}
		sources = append(sources, map[string]interface{}{
			"source":    slug,
			"priority":  priority,
			"isDefault": slug == platDefaultSource,
		})
	}
	return sources, nil
}

func platformBody(slug string) map[string]interface{} {
	sources, err := parsePlatformSources()
	if err != nil {
		errors.ExitWithCode(errors.ExitInvalidArguments, err.Error())
	}
	return map[string]interface{}{
		"slug":    slug,
		"name":    platName,
		"sources": sources,
	}
}

func runPlatformCreate(cmd *cobra.Command, args []string) {
	slug := args[0]
	c := getAuthenticatedClient()

	resp, err := c.Post("/api/v1/platforms", platformBody(slug))
	if err != nil {
		errors.ExitWithError(err, "failed to create platform")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("failed to create platform: %s", string(body)))
	}

	if flagJSON {
		output.OutputJSON(map[string]string{"slug": slug}, nil)
	} else {
		output.PrintSuccess(fmt.Sprintf("Created platform '%s'", slug))
	}
}

func runPlatformList(cmd *cobra.Command, args []string) {
	c := getAuthenticatedClient()

	resp, err := c.Get("/api/v1/platforms")
	if err != nil {
		errors.ExitWithError(err, "failed to list platforms")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("failed to list platforms: %s", string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errors.ExitWithError(err, "failed to read response")
	}

	var platforms []map[string]interface{}
	if err := json.Unmarshal(body, &platforms); err != nil {
		errors.ExitWithError(err, "failed to parse response")
	}

	if flagJSON {
		output.OutputJSON(platforms, nil)
		return
	}

	if len(platforms) == 0 {
		fmt.Println("No platforms found")
		return
	}

	table := output.NewTableWriter()
	table.WriteHeader("SLUG", "NAME", "SOURCES")
	for _, p := range platforms {
		count := "0"
		if srcs, ok := p["sources"].([]interface{}); ok {
			count = strconv.Itoa(len(srcs))
		}
		table.WriteRow(
			fmt.Sprintf("%v", p["slug"]),
			fmt.Sprintf("%v", p["name"]),
			count,
		)
	}
	table.Flush()
}

func runPlatformGet(cmd *cobra.Command, args []string) {
	slug := args[0]
	c := getAuthenticatedClient()

	resp, err := c.Get("/api/v1/platforms/" + slug)
	if err != nil {
		errors.ExitWithError(err, "failed to get platform")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("failed to get platform: %s", string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errors.ExitWithError(err, "failed to read response")
	}

	var platform map[string]interface{}
	if err := json.Unmarshal(body, &platform); err != nil {
		errors.ExitWithError(err, "failed to parse response")
	}

	if flagJSON {
		output.OutputJSON(platform, nil)
		return
	}

	fmt.Printf("Slug: %v\n", platform["slug"])
	fmt.Printf("Name: %v\n", platform["name"])
	if srcs, ok := platform["sources"].([]interface{}); ok && len(srcs) > 0 {
		fmt.Println("Sources:")
		for _, raw := range srcs {
			src, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			line := fmt.Sprintf("  - %v (priority %v)", src["source"], src["priority"])
			if def, ok := src["isDefault"].(bool); ok && def {
				line += " [default]"
			}
			fmt.Println(line)
		}
	}
}

func runPlatformUpdate(cmd *cobra.Command, args []string) {
	slug := args[0]
	c := getAuthenticatedClient()

	resp, err := c.Put("/api/v1/platforms/"+slug, platformBody(slug))
	if err != nil {
		errors.ExitWithError(err, "failed to update platform")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("failed to update platform: %s", string(body)))
	}

	if flagJSON {
		output.OutputJSON(map[string]string{"slug": slug}, nil)
	} else {
		output.PrintSuccess(fmt.Sprintf("Updated platform '%s'", slug))
	}
}

func runPlatformDelete(cmd *cobra.Command, args []string) {
	slug := args[0]
	c := getAuthenticatedClient()

	if !flagYes {
		if !prompts.ConfirmDeletion("platform", slug, "") {
			fmt.Println("Deletion cancelled")
			return
		}
	}

	resp, err := c.Delete("/api/v1/platforms/" + slug)
	if err != nil {
		errors.ExitWithError(err, "failed to delete platform")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("failed to delete platform: %s", string(body)))
	}

	if flagJSON {
		output.OutputJSON(map[string]bool{"deleted": true}, nil)
	} else {
		output.PrintSuccess(fmt.Sprintf("Deleted platform '%s'", slug))
	}
}
