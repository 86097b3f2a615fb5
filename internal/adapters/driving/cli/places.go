package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geocache/internal/core/domain"
)

var (
	placesLat      float64
	placesLon      float64
	placesRadius   float64
	placesCategory string
	placesRefresh  bool
	placesJSON     bool
)

var placesCmd = &cobra.Command{
	Use:   "places",
	Short: "List points of interest near a coordinate",
	Long: `Lists points of interest near a coordinate, nearest first.

Results come from the local place index when fresh. Otherwise OpenStreetMap
(Overpass) is queried, then Nominatim when too few places were found.
Duplicates across providers are merged.

Categories: ` + categoryList(),
	Args: cobra.NoArgs,
	RunE: runPlaces,
}

func init() {
	placesCmd.Flags().Float64Var(&placesLat, "lat", 0, "latitude in decimal degrees")
	placesCmd.Flags().Float64Var(&placesLon, "lon", 0, "longitude in decimal degrees")
	placesCmd.Flags().Float64VarP(&placesRadius, "radius", "r", domain.DefaultPlacesRadius, "search radius in meters")
	placesCmd.Flags().StringVarP(&placesCategory, "category", "c", string(domain.CategoryAll), "place category")
	placesCmd.Flags().BoolVar(&placesRefresh, "refresh", false, "fetch from upstream regardless of freshness")
	placesCmd.Flags().BoolVar(&placesJSON, "json", false, "output as JSON")
	_ = placesCmd.MarkFlagRequired("lat")
	_ = placesCmd.MarkFlagRequired("lon")
	rootCmd.AddCommand(placesCmd)
}

func runPlaces(cmd *cobra.Command, _ []string) error {
	if placesService == nil {
		return errors.New("places service not configured")
	}

	q := domain.PlacesQuery{
		Lat:      placesLat,
		Lon:      placesLon,
		Radius:   placesRadius,
		Category: domain.PlaceCategory(placesCategory),
	}

	lookup := placesService.Nearby
	if placesRefresh {
		lookup = placesService.Refresh
	}
	result, err := lookup(cmd.Context(), q)
	if err != nil {
		return fmt.Errorf("places lookup failed: %w", err)
	}

	if placesJSON {
		return printJSON(cmd, result)
	}

	if len(result.Places) == 0 {
		cmd.Println("No places found.")
		return nil
	}

	cmd.Printf("%d places (%s):\n\n", len(result.Places), result.Freshness)
	for i := range result.Places {
		p := &result.Places[i]
		cmd.Printf("[%d] %s (%s) - %s\n", i+1, p.Name, p.Category, formatDistance(p.Distance))
		if p.Address != "" {
			cmd.Printf("    %s\n", p.Address)
		}
	}
	return nil
}

func categoryList() string {
	categories := domain.AllPlaceCategories()
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}
