package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/installdeck/installdeck/internal/auth"
	"github.com/installdeck/installdeck/internal/catalog"
	"github.com/installdeck/installdeck/internal/config"
	"github.com/installdeck/installdeck/internal/engine"
	"github.com/installdeck/installdeck/internal/server"
	"github.com/installdeck/installdeck/internal/server/handlers"
)

// ServerCmd represents the server command
var ServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the InstallDeck HTTP server",
	Long:  `Start the HTTP server that generates install commands and provides a REST API for catalog management.`,
	RunE:  runServer,
}

func init() {
	ServerCmd.Flags().Int("port", 8080, "Port to listen on")
	ServerCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	ServerCmd.Flags().String("catalog-uri", "", "Catalog URI (file://, s3://, s3+http:// or oci://)")
	ServerCmd.Flags().String("catalog-token", "", "Catalog backend authentication token")
	ServerCmd.Flags().String("auth-type", "", "Authentication type (none or basic)")
	ServerCmd.Flags().String("users-file", "", "Path to users.yaml for basic auth")
	ServerCmd.Flags().String("log-level", "", "Log level (debug, info, warn, error)")
	ServerCmd.Flags().String("log-format", "", "Log format (json or text)")
}

// bindServerFlags binds CLI flags onto the viper instance so that flags
// take precedence over INSTALLDECK_* environment variables.
func bindServerFlags(cmd *cobra.Command, v *viper.Viper) {
	bindings := map[string]string{
		"server.port":     "port",
		"server.host":     "host",
		"catalog.uri":     "catalog-uri",
		"catalog.token":   "catalog-token",
		"auth.type":       "auth-type",
		"auth.users_file": "users-file",
		"logging.level":   "log-level",
		"logging.format":  "log-format",
	}
	for key, flag := range bindings {
		if cmd.Flags().Changed(flag) {
			v.BindPFlag(key, cmd.Flags().Lookup(flag))
		}
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	v := config.NewViper()
	bindServerFlags(cmd, v)

	cfg, err := config.LoadWithViper(v)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := server.NewLogger(cfg.Logging.Level, cfg.Logging.Format)

	logger.Info("Server starting",
		"port", cfg.Server.Port,
		"catalog_uri", cfg.Catalog.URI,
		"catalog_token", cfg.MaskToken(),
		"auth_type", cfg.Auth.Type)

	uri, err := cfg.ParsedCatalogURI()
	if err != nil {
		return fmt.Errorf("invalid catalog URI: %w", err)
	}

	store, err := catalog.NewStore(uri, cfg.Catalog.Token, logger)
	if err != nil {
		logger.Error("Failed to initialize catalog store",
			"error", err,
			"catalog_uri", cfg.Catalog.URI)
		return fmt.Errorf("failed to initialize catalog store: %w", err)
	}

	var authenticator auth.Authenticator
	switch cfg.Auth.Type {
	case "none":
		authenticator = auth.NewNoAuth()
		logger.Info("Authentication disabled (auth.type=none)")
	case "basic":
		authenticator, err = auth.NewBasicAuth(cfg.Auth.UsersFile, logger)
		if err != nil {
			logger.Error("Failed to initialize basic auth",
				"error", err,
				"users_file", cfg.Auth.UsersFile)
			return fmt.Errorf("failed to initialize basic auth: %w", err)
		}
	default:
		return fmt.Errorf("unsupported auth type: %s", cfg.Auth.Type)
	}

	srv := server.NewServer(cfg, logger, store, authenticator)

	metricsHandler := handlers.NewMetricsHandler(logger)
	generateHandler := handlers.NewGenerateHandler(store, engine.New(logger), metricsHandler, logger)
	sourceHandler := handlers.NewSourceHandler(store, metricsHandler, logger)
	platformHandler := handlers.NewPlatformHandler(store, metricsHandler, logger)
	applicationHandler := handlers.NewApplicationHandler(store, metricsHandler, logger)
	healthHandler := handlers.NewHealthHandler(store, logger)
	whoamiHandler := handlers.NewWhoamiHandler(authenticator, logger)

	srv.SetHandlers(server.HandlerSet{
		Generate: generateHandler.Generate,
		Health:   healthHandler.GetHealth,
		Metrics:  metricsHandler.GetMetrics,
		Whoami:   whoamiHandler.GetWhoami,

		ListSources:  sourceHandler.ListSources,
		CreateSource: sourceHandler.CreateSource,
		GetSource:    sourceHandler.GetSource,
		UpdateSource: sourceHandler.UpdateSource,
		DeleteSource: sourceHandler.DeleteSource,

		ListPlatforms:  platformHandler.ListPlatforms,
		CreatePlatform: platformHandler.CreatePlatform,
		GetPlatform:    platformHandler.GetPlatform,
		UpdatePlatform: platformHandler.UpdatePlatform,
		DeletePlatform: platformHandler.DeletePlatform,

		ListApplications:  applicationHandler.ListApplications,
		CreateApplication: applicationHandler.CreateApplication,
		GetApplication:    applicationHandler.GetApplication,
		UpdateApplication: applicationHandler.UpdateApplication,
		DeleteApplication: applicationHandler.DeleteApplication,

		CreatePackage: applicationHandler.CreatePackage,
		DeletePackage: applicationHandler.DeletePackage,
	})

	logger.Info("Server ready to accept connections",
		"address", fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port))

	if err := srv.Start(); err != nil {
		logger.Error("Server stopped with error", "error", err)
		return err
	}

	return nil
}
