// Package overpass discovers points of interest through the OpenStreetMap
// Overpass API.
package overpass

import (
	"context"
	"fmt"
	"net/http"
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
	Name           = "overpass"
	DefaultBaseURL = "https://overpass-api.de/api"
	DefaultTimeout = 30 * time.Second

	// osmBaseURL prefixes element links used as a dedup identity.
	osmBaseURL = "https://www.openstreetmap.org"
)

// Config holds configuration for the Overpass provider.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Limiter   driven.RateLimiter
}

// Provider runs Overpass QL radius queries.
type Provider struct {
	client *httpclient.Client
	now    func() time.Time
}

// New creates an Overpass provider. Calls share the overpass rate limiter
// channel.
func New(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Provider{
		client: httpclient.New(httpclient.Config{
			BaseURL:   cfg.BaseURL,
			Timeout:   cfg.Timeout,
			UserAgent: cfg.UserAgent,
			Limiter:   cfg.Limiter,
			Channel:   domain.ChannelOverpass,
		}),
		now: time.Now,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return Name }

type element struct {
	Type   string   `json:"type"`
	ID     int64    `json:"id"`
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
	Center *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"center"`
	Tags map[string]string `json:"tags"`
}

type interpreterResponse struct {
	Elements []element `json:"elements"`
}

// BuildQuery renders the Overpass QL for a radius search over the
// category's tag filters.
func BuildQuery(q domain.PlacesQuery) string {
	lat := strconv.FormatFloat(q.Lat, 'f', -1, 64)
	lon := strconv.FormatFloat(q.Lon, 'f', -1, 64)
	radius := strconv.Itoa(int(q.Radius))

	var b strings.Builder
	b.WriteString("[out:json][timeout:60];\n(\n")
	for _, tag := range domain.SearchTags(q.Category) {
		fmt.Fprintf(&b, "  nwr[%s](around:%s,%s,%s);\n", tag, radius, lat, lon)
	}
	b.WriteString(");\nout center meta;\n")
	return b.String()
}

// Fetch returns named places around the query point.
func (p *Provider) Fetch(ctx context.Context, q domain.PlacesQuery) ([]domain.Place, error) {
	resp, err := p.client.Do(ctx, &httpclient.Request{
		Method:      http.MethodPost,
		Path:        "/interpreter",
		Body:        strings.NewReader(BuildQuery(q)),
		ContentType: "text/plain",
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}

	var body interpreterResponse
	if err := resp.JSON(&body); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}

	center := q.Center()
	now := p.now().UTC()
	places := make([]domain.Place, 0, len(body.Elements))
	for _, el := range body.Elements {
		place, ok := toPlace(el, center, now)
		if !ok {
			continue
		}
		place.SearchRadius = q.Radius
		places = append(places, place)
	}
	return places, nil
}

func toPlace(el element, center domain.Coordinates, now time.Time) (domain.Place, bool) {
	name := strings.TrimSpace(el.Tags["name"])
	if name == "" {
		return domain.Place{}, false
	}

	var lat, lon float64
	switch {
	case el.Lat != nil && el.Lon != nil:
		lat, lon = *el.Lat, *el.Lon
	case el.Center != nil:
		lat, lon = el.Center.Lat, el.Center.Lon
	default:
		return domain.Place{}, false
	}

	placeType := domain.ClassifyTags(el.Tags)
	loc := domain.NewGeoPoint(lat, lon)
	sourceID := el.Type + "/" + strconv.FormatInt(el.ID, 10)

	return domain.Place{
		Name:         name,
		Address:      domain.FormatAddress(el.Tags),
		Category:     domain.CategoryForType(placeType),
		Type:         placeType,
		Location:     loc,
		Distance:     domain.Distance(center, loc.LatLon()),
		Rating:       domain.ParseRating(el.Tags),
		OpeningHours: el.Tags["opening_hours"],
		Source:       Name,
		SourceID:     sourceID,
		SourceURL:    osmBaseURL + "/" + sourceID,
		Tags:         el.Tags,
		SearchCenter: center,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, true
}
