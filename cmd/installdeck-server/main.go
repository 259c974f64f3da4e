package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/installdeck/installdeck/internal/cli"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "installdeck-server",
	Short: "InstallDeck catalog and command generation server",
	Long: `InstallDeck Server provides a REST API for managing the package catalog
and generating install commands. It resolves platforms to their package
sources and synthesizes ready-to-run shell commands for a set of
applications.`,
	Version: version,
}

func init() {
	rootCmd.AddCommand(cli.ServerCmd)
	rootCmd.AddCommand(cli.AuthCmd)
	rootCmd.AddCommand(cli.SeedCmd)

	rootCmd.SetVersionTemplate(`{{.Version}}
`)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
