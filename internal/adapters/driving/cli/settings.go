package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/geocache/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure freshness thresholds, provider keys and other options.

Settings live in config.toml. Environment variables (OPENWEATHER_API_KEY,
NEWS_API_KEY, GEOCACHE_ADDR, GEOCACHE_HTTP_TIMEOUT) take precedence.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsKeyCmd = &cobra.Command{
	Use:       "key [openweather|newsapi]",
	Short:     "Set a provider API key",
	Long:      `Prompts for a provider API key without echoing it and saves it to config.toml.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"openweather", "newsapi"},
	RunE:      runSettingsKey,
}

var settingsFreshnessCmd = &cobra.Command{
	Use:   "freshness",
	Short: "Change a freshness threshold",
	Long: `Interactively change how long cached data is served without a refresh.

Values use Go duration syntax, e.g. 10m, 1h or 90s.`,
	RunE: runSettingsFreshness,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsKeyCmd)
	settingsCmd.AddCommand(settingsFreshnessCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Freshness")
	cmd.Printf("  Weather:   %s\n", s.Freshness.Weather)
	cmd.Printf("  Currency:  %s\n", s.Freshness.Currency)
	cmd.Printf("  Places:    %s\n", s.Freshness.Places)
	cmd.Printf("  News:      %s\n", s.Freshness.News)
	cmd.Printf("  Stale TTL: %dx threshold\n", s.Freshness.StaleTTLFactor)
	cmd.Println()

	cmd.Println("Retention")
	cmd.Printf("  News:   %s\n", s.Retention.News)
	cmd.Printf("  Places: %s\n", s.Retention.Places)
	cmd.Println()

	cmd.Println("Rate limits")
	cmd.Printf("  Nominatim: %s\n", s.RateLimit.Nominatim)
	cmd.Printf("  Overpass:  %s\n", s.RateLimit.Overpass)
	cmd.Printf("  NewsAPI:   %s\n", s.RateLimit.NewsAPI)
	cmd.Println()

	cmd.Println("Providers")
	cmd.Printf("  OpenWeather key: %s\n", keyStatus(s.Providers.OpenWeather))
	cmd.Printf("  NewsAPI key:     %s\n", keyStatus(s.Providers.NewsAPI))
	cmd.Printf("  Timeout:         %s\n", s.Providers.Timeout)
	cmd.Printf("  User agent:      %s\n", s.Providers.UserAgent)
	cmd.Println()

	cmd.Println("Server")
	cmd.Printf("  Address: %s\n", s.Server.Addr)
	cmd.Println()

	cmd.Println("Scheduler")
	cmd.Printf("  Enabled: %t\n", s.Scheduler.Enabled)
	taskIDs := make([]string, 0, len(s.Scheduler.TaskConfigs))
	for id := range s.Scheduler.TaskConfigs {
		taskIDs = append(taskIDs, id)
	}
	sort.Strings(taskIDs)
	for _, id := range taskIDs {
		tc := s.Scheduler.TaskConfigs[id]
		state := "disabled"
		if tc.Enabled {
			state = "every " + tc.Interval.String()
		}
		cmd.Printf("  %-18s %s\n", id+":", state)
	}
	return nil
}

func runSettingsKey(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	var target *domain.ProviderSettings
	switch strings.ToLower(args[0]) {
	case "openweather":
		target = &s.Providers.OpenWeather
	case "newsapi":
		target = &s.Providers.NewsAPI
	default:
		return fmt.Errorf("unknown provider %q (expected openweather or newsapi)", args[0])
	}

	cmd.Printf("API key for %s: ", args[0])
	key := readSecret(cmd.InOrStdin())
	cmd.Println()
	if key == "" {
		return errors.New("API key cannot be empty")
	}
	target.APIKey = key

	if err := settingsService.Save(s); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Printf("Saved %s key %s\n", args[0], maskAPIKey(key))
	return nil
}

func runSettingsFreshness(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	thresholds := []struct {
		name  string
		value *time.Duration
	}{
		{"weather", &s.Freshness.Weather},
		{"currency", &s.Freshness.Currency},
		{"places", &s.Freshness.Places},
		{"news", &s.Freshness.News},
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Which threshold?")
	for i, th := range thresholds {
		cmd.Printf("  %d. %-8s (%s)\n", i+1, th.name, *th.value)
	}
	cmd.Print("Choice [1]: ")
	choice := parseChoice(readLine(reader), len(thresholds), 1)
	selected := thresholds[choice-1]

	cmd.Printf("New %s threshold [%s]: ", selected.name, *selected.value)
	input := readLine(reader)
	if input == "" {
		cmd.Println("Unchanged.")
		return nil
	}
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return fmt.Errorf("invalid duration %q", input)
	}
	*selected.value = d

	if err := settingsService.Save(s); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Printf("%s threshold set to %s\n", selected.name, d)
	return nil
}

func keyStatus(p domain.ProviderSettings) string {
	if !p.IsConfigured() {
		return "not set"
	}
	return maskAPIKey(p.APIKey)
}

func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readSecret reads a line without echo when in is a terminal.
func readSecret(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	return readLine(bufio.NewReader(in))
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
