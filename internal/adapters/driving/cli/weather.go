package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	weatherLat  float64
	weatherLon  float64
	weatherJSON bool
)

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Show current weather at a coordinate",
	Long: `Shows current weather, served from cache when fresh.

Providers are tried in order (OpenWeather when an API key is configured,
then Open-Meteo) until one answers.`,
	Args: cobra.NoArgs,
	RunE: runWeather,
}

func init() {
	weatherCmd.Flags().Float64Var(&weatherLat, "lat", 0, "latitude in decimal degrees")
	weatherCmd.Flags().Float64Var(&weatherLon, "lon", 0, "longitude in decimal degrees")
	weatherCmd.Flags().BoolVar(&weatherJSON, "json", false, "output as JSON")
	_ = weatherCmd.MarkFlagRequired("lat")
	_ = weatherCmd.MarkFlagRequired("lon")
	rootCmd.AddCommand(weatherCmd)
}

func runWeather(cmd *cobra.Command, _ []string) error {
	if weatherService == nil {
		return errors.New("weather service not configured")
	}

	w, err := weatherService.Resolve(cmd.Context(), weatherLat, weatherLon)
	if err != nil {
		return fmt.Errorf("weather lookup failed: %w", err)
	}

	if weatherJSON {
		return printJSON(cmd, w)
	}

	place := ""
	if w.City != "" {
		place = fmt.Sprintf(" (%s, %s)", w.City, w.Country)
	}
	cmd.Printf("Weather at %.4f, %.4f%s\n", w.Lat, w.Lon, place)
	cmd.Printf("  Temperature: %.1f°C\n", w.Temp)
	cmd.Printf("  Conditions:  %s\n", w.Description)
	cmd.Printf("  Humidity:    %d%%\n", w.Humidity)
	cmd.Printf("  Source:      %s (%s)\n", w.Source, w.Freshness)
	return nil
}
