// Package nominatim discovers points of interest through the OpenStreetMap
// Nominatim search API.
package nominatim

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/geocache/internal/core/domain"
	"github.com/custodia-labs/geocache/internal/core/ports/driven"
	"github.com/custodia-labs/geocache/internal/providers/httpclient"
)

// Ensure Provider implements the interface.
var _ driven.PlacesProvider = (*Provider)(nil)

// Default configuration values.
const (
	Name           = "nominatim"
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
	DefaultTimeout = 15 * time.Second
	DefaultLimit   = 20

	// maxViewbox caps the half-width of the search box in degrees.
	maxViewbox = 0.3

	osmBaseURL = "https://www.openstreetmap.org"
)

// searchTerms are the free-text phrases used per category.
var searchTerms = map[domain.PlaceCategory]string{
	domain.CategoryTourism:       "tourist attraction",
	domain.CategoryRestaurant:    "restaurant",
	domain.CategoryAccommodation: "hotel",
	domain.CategoryShopping:      "shopping mall",
	domain.CategoryEntertainment: "cinema",
	domain.CategoryHealthcare:    "hospital",
	domain.CategoryEducation:     "school",
	domain.CategoryTransport:     "station",
}

// SearchTerm returns the phrase searched for a category.
func SearchTerm(category domain.PlaceCategory) string {
	if term, ok := searchTerms[category]; ok {
		return term
	}
	return "attraction"
}

// Config holds configuration for the Nominatim provider.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Limiter   driven.RateLimiter
	Limit     int
}

// Provider runs bounded Nominatim searches.
type Provider struct {
	client *httpclient.Client
	limit  int
	now    func() time.Time
}

// New creates a Nominatim provider. Calls share the nominatim rate limiter
// channel; the public instance allows at most one request per second.
func New(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	return &Provider{
		client: httpclient.New(httpclient.Config{
			BaseURL:   cfg.BaseURL,
			Timeout:   cfg.Timeout,
			UserAgent: cfg.UserAgent,
			Limiter:   cfg.Limiter,
			Channel:   domain.ChannelNominatim,
		}),
		limit: cfg.Limit,
		now:   time.Now,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return Name }

type searchResult struct {
	PlaceID     int64             `json:"place_id"`
	OSMType     string            `json:"osm_type"`
	OSMID       int64             `json:"osm_id"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Class       string            `json:"class"`
	Type        string            `json:"type"`
	Address     map[string]string `json:"address"`
	ExtraTags   map[string]string `json:"extratags"`
}

// Viewbox returns the bounded search box "left,top,right,bottom" for q.
func Viewbox(q domain.PlacesQuery) string {
	size := math.Min(q.Radius/domain.MetersPerDegreeLat, maxViewbox)
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	return strings.Join([]string{
		f(q.Lon - size), f(q.Lat + size), f(q.Lon + size), f(q.Lat - size),
	}, ",")
}

// Fetch returns places around the query point within its radius.
func (p *Provider) Fetch(ctx context.Context, q domain.PlacesQuery) ([]domain.Place, error) {
	query := url.Values{
		"q":              {SearchTerm(q.Category)},
		"format":         {"jsonv2"},
		"addressdetails": {"1"},
		"extratags":      {"1"},
		"bounded":        {"1"},
		"limit":          {strconv.Itoa(p.limit)},
		"viewbox":        {Viewbox(q)},
	}

	var results []searchResult
	if err := p.client.GetJSON(ctx, "/search", query, &results); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}

	center := q.Center()
	now := p.now().UTC()
	places := make([]domain.Place, 0, len(results))
	for _, r := range results {
		place, ok := toPlace(r, center, now)
		if !ok || place.Distance > q.Radius {
			continue
		}
		place.SearchRadius = q.Radius
		places = append(places, place)
	}
	return places, nil
}

func toPlace(r searchResult, center domain.Coordinates, now time.Time) (domain.Place, bool) {
	lat, errLat := strconv.ParseFloat(r.Lat, 64)
	lon, errLon := strconv.ParseFloat(r.Lon, 64)
	if errLat != nil || errLon != nil || r.DisplayName == "" {
		return domain.Place{}, false
	}

	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = strings.TrimSpace(strings.Split(r.DisplayName, ",")[0])
	}
	if name == "" {
		return domain.Place{}, false
	}

	tags := make(map[string]string, len(r.ExtraTags)+1)
	for k, v := range r.ExtraTags {
		tags[k] = v
	}
	if r.Class != "" && r.Type != "" {
		tags[r.Class] = r.Type
	}
	placeType := domain.ClassifyTags(tags)

	loc := domain.NewGeoPoint(lat, lon)
	place := domain.Place{
		Name:         name,
		Address:      formatAddress(r),
		Category:     domain.CategoryForType(placeType),
		Type:         placeType,
		Location:     loc,
		Distance:     domain.Distance(center, loc.LatLon()),
		OpeningHours: r.ExtraTags["opening_hours"],
		Source:       Name,
		SourceID:     strconv.FormatInt(r.PlaceID, 10),
		Tags:         tags,
		SearchCenter: center,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if r.OSMType != "" && r.OSMID != 0 {
		place.SourceURL = osmBaseURL + "/" + r.OSMType + "/" + strconv.FormatInt(r.OSMID, 10)
	}
	return place, true
}

func formatAddress(r searchResult) string {
	if len(r.Address) > 0 {
		city := r.Address["city"]
		if city == "" {
			city = r.Address["town"]
		}
		var parts []string
		for _, part := range []string{r.Address["house_number"], r.Address["road"], city, r.Address["country"]} {
			if part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ", ")
		}
	}
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return domain.AddressUnavailable
}
