package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geocache/internal/adapters/driven/config/file"
	"github.com/custodia-labs/geocache/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/geocache/internal/adapters/driving/mcp"
	"github.com/custodia-labs/geocache/internal/logger"
)

var (
	serveAddr        string
	serveNoScheduler bool
	serveNoWatch     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API with the MCP endpoint mounted at /mcp.

The background scheduler refreshes news and purges expired data while the
server runs. Edits to config.toml are picked up without a restart.

Endpoints:
  GET  /api/weather?lat=&lon=
  GET  /api/places?lat=&lon=&radius=&category=
  POST /api/places/refresh?lat=&lon=&radius=&category=
  GET  /api/currency?base=&target=
  GET  /api/news?lat=&lon=&category=&limit=
  POST /api/news/refresh
  GET  /api/news/stats
  POST /api/news/clean
  GET  /healthz`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings)")
	serveCmd.Flags().BoolVar(&serveNoScheduler, "no-scheduler", false, "disable background tasks")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "do not reload config.toml on change")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	addr, err := listenAddr()
	if err != nil {
		return err
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Weather:  weatherService,
		Places:   placesService,
		Currency: currencyService,
		News:     newsService,
	})
	if err != nil {
		return err
	}

	mcpServer, err := mcp.NewServer(mcpPorts())
	if err != nil {
		return err
	}
	server.Mount("/mcp", mcpServer.Handler())

	ctx := cmd.Context()

	if !serveNoScheduler && scheduler != nil {
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("starting scheduler: %w", err)
		}
		defer func() {
			if err := scheduler.Stop(); err != nil {
				logger.Warn("serve: stopping scheduler: %v", err)
			}
		}()
	}

	if !serveNoWatch && application != nil {
		watcher := file.NewWatcher(application.ConfigPath(), application.Reload)
		if err := watcher.Start(); err != nil {
			logger.Warn("serve: config changes will not be picked up: %v", err)
		} else {
			defer func() { _ = watcher.Stop() }()
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "geocache listening on %s\n", addr)
	return server.Run(ctx, addr)
}

func listenAddr() (string, error) {
	if serveAddr != "" {
		return serveAddr, nil
	}
	settings, err := settingsService.Get()
	if err != nil {
		return "", fmt.Errorf("failed to get settings: %w", err)
	}
	if settings.Server.Addr == "" {
		return settingsService.GetDefaults().Server.Addr, nil
	}
	return settings.Server.Addr, nil
}
