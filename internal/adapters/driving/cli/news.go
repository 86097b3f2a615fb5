package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geocache/internal/core/domain"
)

var (
	newsLat      float64
	newsLon      float64
	newsCategory string
	newsLimit    int
	newsJSON     bool
)

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Local news commands",
	Long:  `Read, refresh and maintain the local news store.`,
}

var newsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List news for the region nearest a coordinate",
	Long: `Lists stored articles for the region nearest a coordinate, newest first.

When the region has no recent articles a refresh is triggered. Coordinates
outside every known region fall back to country-wide news.`,
	Args: cobra.NoArgs,
	RunE: runNewsList,
}

var newsRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Collect news for every category and region",
	Args:  cobra.NoArgs,
	RunE:  runNewsRefresh,
}

var newsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show stored news statistics",
	Args:  cobra.NoArgs,
	RunE:  runNewsStats,
}

var newsCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete articles older than the retention period",
	Args:  cobra.NoArgs,
	RunE:  runNewsClean,
}

func init() {
	newsListCmd.Flags().Float64Var(&newsLat, "lat", 0, "latitude in decimal degrees")
	newsListCmd.Flags().Float64Var(&newsLon, "lon", 0, "longitude in decimal degrees")
	newsListCmd.Flags().StringVarP(&newsCategory, "category", "c", "all", "news category")
	newsListCmd.Flags().IntVarP(&newsLimit, "limit", "n", domain.DefaultNewsLimit, "maximum number of articles")
	newsListCmd.Flags().BoolVar(&newsJSON, "json", false, "output as JSON")
	_ = newsListCmd.MarkFlagRequired("lat")
	_ = newsListCmd.MarkFlagRequired("lon")

	newsCmd.AddCommand(newsListCmd)
	newsCmd.AddCommand(newsRefreshCmd)
	newsCmd.AddCommand(newsStatsCmd)
	newsCmd.AddCommand(newsCleanCmd)
	rootCmd.AddCommand(newsCmd)
}

func runNewsList(cmd *cobra.Command, _ []string) error {
	if newsService == nil {
		return errors.New("news service not configured")
	}

	result, err := newsService.Local(cmd.Context(), domain.NewsQuery{
		Lat:      newsLat,
		Lon:      newsLon,
		Category: newsCategory,
		Limit:    newsLimit,
	})
	if err != nil {
		return fmt.Errorf("news lookup failed: %w", err)
	}

	if newsJSON {
		return printJSON(cmd, result)
	}

	loc := result.Location
	where := loc.Country
	if loc.City != "" {
		where = fmt.Sprintf("%s, %s", loc.City, loc.State)
	}

	if len(result.Articles) == 0 {
		cmd.Printf("No news for %s.\n", where)
		return nil
	}

	now := time.Now()
	cmd.Printf("%d articles for %s (%s):\n\n", len(result.Articles), where, result.Freshness)
	for i := range result.Articles {
		a := &result.Articles[i]
		cmd.Printf("[%d] %s\n", i+1, a.Title)
		cmd.Printf("    %s, %s\n", a.SourceName, formatAge(a.PublishedAt, now))
		cmd.Printf("    %s\n", a.URL)
	}
	return nil
}

func runNewsRefresh(cmd *cobra.Command, _ []string) error {
	if newsService == nil {
		return errors.New("news service not configured")
	}

	cmd.Println("Refreshing news...")
	report, err := newsService.RefreshAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("news refresh failed: %w", err)
	}

	cmd.Printf("Fetched %d articles, stored %d", report.TotalArticles, report.StoredArticles)
	if report.FailedQueries > 0 {
		cmd.Printf(" (%d queries failed)", report.FailedQueries)
	}
	cmd.Printf(" in %s\n", report.Duration.Round(time.Millisecond))
	return nil
}

func runNewsStats(cmd *cobra.Command, _ []string) error {
	if newsService == nil {
		return errors.New("news service not configured")
	}

	stats, err := newsService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("news stats failed: %w", err)
	}

	now := time.Now()
	cmd.Printf("Total articles:  %d\n", stats.TotalArticles)
	cmd.Printf("Last 24 hours:   %d\n", stats.RecentArticles)
	if stats.LastRefresh != nil {
		cmd.Printf("Last refresh:    %s\n", formatAge(*stats.LastRefresh, now))
	} else {
		cmd.Println("Last refresh:    never")
	}

	if len(stats.Locations) > 0 {
		cmd.Println()
		cmd.Println("By location:")
		for _, l := range stats.Locations {
			cmd.Printf("  %-20s %-4s %5d  latest %s\n", l.City, l.State, l.Count, formatAge(l.LatestNews, now))
		}
	}
	return nil
}

func runNewsClean(cmd *cobra.Command, _ []string) error {
	if newsService == nil {
		return errors.New("news service not configured")
	}

	removed, err := newsService.Clean(cmd.Context())
	if err != nil {
		return fmt.Errorf("news clean failed: %w", err)
	}

	cmd.Printf("Removed %d old articles\n", removed)
	return nil
}
