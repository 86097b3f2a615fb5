// Package cli implements the geocache command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geocache/internal/app"
	"github.com/custodia-labs/geocache/internal/core/ports/driving"
	"github.com/custodia-labs/geocache/internal/logger"
)

// annotationNoServices marks commands that run without wiring services.
const annotationNoServices = "geocache/no-services"

var version = "dev"

// Global flags.
var (
	verbose   bool
	dataDir   string
	configDir string
	ephemeral bool
)

// Services used by the commands. They are wired by bootstrap before a
// command runs, or injected directly by tests.
var (
	weatherService  driving.WeatherService
	placesService   driving.PlacesService
	currencyService driving.CurrencyService
	newsService     driving.NewsService
	cleanupService  driving.CleanupService
	settingsService driving.SettingsService
	scheduler       driving.Scheduler

	application   *app.App
	servicesReady bool
)

var rootCmd = &cobra.Command{
	Use:   "geocache",
	Short: "Cache-aside aggregation of weather, places, currency and news",
	Long: `geocache answers location-based queries from a local cache and
refreshes it from public upstream APIs.

Fresh data is served directly. Stale data is served immediately while a
background refresh runs. Missing data is fetched once, even when many
requests ask for it at the same time.`,
	SilenceUsage:       true,
	PersistentPreRunE:  bootstrap,
	PersistentPostRunE: shutdown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for the database (default ~/.geocache/data)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "directory holding config.toml (default ~/.geocache)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep all data in memory")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which long-running
// commands such as serve use to shut down.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func bootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if servicesReady || cmd.Annotations[annotationNoServices] == "true" {
		return nil
	}

	a, err := app.New(app.Options{
		ConfigDir: configDir,
		DataDir:   dataDir,
		Ephemeral: ephemeral,
	})
	if err != nil {
		return fmt.Errorf("initialising geocache: %w", err)
	}
	useApp(a)
	return nil
}

func useApp(a *app.App) {
	application = a
	weatherService = a.Weather
	placesService = a.Places
	currencyService = a.Currency
	newsService = a.News
	cleanupService = a.Cleaner
	settingsService = a.Settings
	scheduler = a.Scheduler
	servicesReady = true
}

func shutdown(_ *cobra.Command, _ []string) error {
	if application == nil {
		return nil
	}
	err := application.Close()
	application = nil
	servicesReady = false
	return err
}
