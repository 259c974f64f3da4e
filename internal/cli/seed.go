package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/installdeck/installdeck/internal/catalog"
	"github.com/installdeck/installdeck/internal/config"
	"github.com/installdeck/installdeck/internal/server"
)

// SeedCmd represents the seed command
var SeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the catalog with starter sources and platforms",
	Long: `Populate the catalog with the common package sources (apt, dnf, pacman,
flatpak, snap, brew, winget, choco, scoop, nix, script) and platforms
(ubuntu, debian, fedora, arch, windows). Existing records are left untouched.`,
	RunE: runSeed,
}

func init() {
	SeedCmd.Flags().String("catalog-uri", "", "Catalog URI (file://, s3://, s3+http:// or oci://)")
	SeedCmd.Flags().String("catalog-token", "", "Catalog backend authentication token")
}

func runSeed(cmd *cobra.Command, args []string) error {
	v := config.NewViper()
	if cmd.Flags().Changed("catalog-uri") {
		v.BindPFlag("catalog.uri", cmd.Flags().Lookup("catalog-uri"))
	}
	if cmd.Flags().Changed("catalog-token") {
		v.BindPFlag("catalog.token", cmd.Flags().Lookup("catalog-token"))
	}

	cfg, err := config.LoadWithViper(v)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := server.NewLogger(cfg.Logging.Level, cfg.Logging.Format)

	uri, err := cfg.ParsedCatalogURI()
	if err != nil {
		return fmt.Errorf("invalid catalog URI: %w", err)
	}

	store, err := catalog.NewStore(uri, cfg.Catalog.Token, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize catalog store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	seed := catalog.SeedCatalog()

	var created, skipped int
	for _, s := range seed.Sources {
		if err := store.CreateSource(ctx, s); err != nil {
			if errors.Is(err, catalog.ErrAlreadyExists) {
				skipped++
				continue
			}
			return fmt.Errorf("failed to create source %s: %w", s.Slug, err)
		}
		created++
	}
	for _, p := range seed.Platforms {
		if err := store.CreatePlatform(ctx, p); err != nil {
			if errors.Is(err, catalog.ErrAlreadyExists) {
				skipped++
				continue
			}
			return fmt.Errorf("failed to create platform %s: %w", p.Slug, err)
		}
		created++
	}

	fmt.Printf("Seed completed: %d records created, %d already present\n", created, skipped)
	return nil
}
