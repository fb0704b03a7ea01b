package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/huangsam/storecheck/internal/server"
)

// serveCmd starts the HTTP validation API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the storecheck HTTP API.",
	Long: `Start an HTTP server that validates manifests and uploaded packages.

Endpoints:
- GET  /healthz                  liveness probe
- GET  /api/v1/rules             active rulebook
- POST /api/v1/validate          JSON body with a manifest and file list
- POST /api/v1/validate/upload   multipart upload with a manifest part and file parts

The server shuts down gracefully on SIGINT or SIGTERM.

Examples:
  # Serve on the default local address
  storecheck serve

  # Listen on all interfaces with a shared cache
  storecheck serve --addr 0.0.0.0:8080 --cache-backend postgresql --cache-db-connect "$STORECHECK_CACHE_DB_CONNECT"`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		api := server.NewWebAPI(logger, server.Config{
			Addr: cfg.Addr,
			Dependencies: server.Dependencies{
				Config: cfg,
				Stores: storeManager,
			},
		})
		return api.Start(rootCtx)
	},
}
