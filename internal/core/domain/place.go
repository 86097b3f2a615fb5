package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// PlaceCategory groups places for filtering.
type PlaceCategory string

// Known place categories.
const (
	CategoryAll           PlaceCategory = "all"
	CategoryTourism       PlaceCategory = "tourism"
	CategoryRestaurant    PlaceCategory = "restaurant"
	CategoryAccommodation PlaceCategory = "accommodation"
	CategoryShopping      PlaceCategory = "shopping"
	CategoryEntertainment PlaceCategory = "entertainment"
	CategoryHealthcare    PlaceCategory = "healthcare"
	CategoryEducation     PlaceCategory = "education"
	CategoryTransport     PlaceCategory = "transport"
)

// TypeAttraction is the place type assigned when no tag rule matches.
const TypeAttraction = "attraction"

// AddressUnavailable is used when a provider returns no usable address.
const AddressUnavailable = "Address not available"

// AllPlaceCategories returns every category accepted by PlacesQuery.
func AllPlaceCategories() []PlaceCategory {
	return []PlaceCategory{
		CategoryAll,
		CategoryTourism,
		CategoryRestaurant,
		CategoryAccommodation,
		CategoryShopping,
		CategoryEntertainment,
		CategoryHealthcare,
		CategoryEducation,
		CategoryTransport,
	}
}

// IsValid returns true if the category is recognised.
func (c PlaceCategory) IsValid() bool {
	for _, known := range AllPlaceCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (c PlaceCategory) String() string {
	return string(c)
}

// Place is a point of interest.
type Place struct {
	ID           string            `json:"id" msgpack:"id"`
	Name         string            `json:"name" msgpack:"name"`
	Address      string            `json:"address" msgpack:"address"`
	Category     PlaceCategory     `json:"category" msgpack:"category"`
	Type         string            `json:"type" msgpack:"type"`
	Location     GeoPoint          `json:"location" msgpack:"location"`
	Distance     float64           `json:"distance" msgpack:"distance"`
	Rating       *float64          `json:"rating,omitempty" msgpack:"rating,omitempty"`
	OpeningHours string            `json:"opening_hours,omitempty" msgpack:"opening_hours,omitempty"`
	Source       string            `json:"source" msgpack:"source"`
	SourceID     string            `json:"source_id,omitempty" msgpack:"source_id,omitempty"`
	SourceURL    string            `json:"source_url,omitempty" msgpack:"source_url,omitempty"`
	Tags         map[string]string `json:"tags,omitempty" msgpack:"tags,omitempty"`
	SearchCenter Coordinates       `json:"search_center" msgpack:"search_center"`
	SearchRadius float64           `json:"search_radius" msgpack:"search_radius"`
	CreatedAt    time.Time         `json:"created_at" msgpack:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at" msgpack:"updated_at"`
}

// Lat returns the place latitude.
func (p Place) Lat() float64 { return p.Location.Lat() }

// Lon returns the place longitude.
func (p Place) Lon() float64 { return p.Location.Lon() }

// Coordinates returns the place position.
func (p Place) Coordinates() Coordinates { return p.Location.LatLon() }

// PlacesQuery describes a nearby-places request.
type PlacesQuery struct {
	Lat      float64
	Lon      float64
	Radius   float64
	Category PlaceCategory
}

// Place radius bounds in meters.
const (
	DefaultPlacesRadius = 5000.0
	MinPlacesRadius     = 1.0
	MaxPlacesRadius     = 50000.0
	DefaultPlacesLimit  = 50
)

// Normalize validates the query and fills defaults.
func (q PlacesQuery) Normalize() (PlacesQuery, error) {
	if _, err := ValidateCoordinates(q.Lat, q.Lon); err != nil {
		return PlacesQuery{}, err
	}
	if q.Radius == 0 {
		q.Radius = DefaultPlacesRadius
	}
	if math.IsNaN(q.Radius) || q.Radius < MinPlacesRadius || q.Radius > MaxPlacesRadius {
		return PlacesQuery{}, fmt.Errorf("%w: radius must be between %.0f and %.0f meters",
			ErrInvalidInput, MinPlacesRadius, MaxPlacesRadius)
	}
	if q.Category == "" {
		q.Category = CategoryAll
	}
	q.Category = PlaceCategory(strings.ToLower(string(q.Category)))
	if !q.Category.IsValid() {
		return PlacesQuery{}, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, q.Category)
	}
	return q, nil
}

// Center returns the query center.
func (q PlacesQuery) Center() Coordinates {
	return Coordinates{Lat: q.Lat, Lon: q.Lon}
}

// ScopeKey identifies the cache scope for a query. Coordinates are rounded
// to three decimals so nearby requests share one refresh.
func (q PlacesQuery) ScopeKey() string {
	return fmt.Sprintf("places_%.3f_%.3f_%d_%s", q.Lat, q.Lon, int(q.Radius), q.Category)
}

// PlacesResult is the response to a nearby-places request.
type PlacesResult struct {
	Places    []Place   `json:"places"`
	Freshness Freshness `json:"freshness"`
	FetchedAt time.Time `json:"fetched_at"`
}

// searchTags lists the OSM tag filters used to discover each category.
var searchTags = map[PlaceCategory][]string{
	CategoryTourism: {
		"tourism=attraction", "tourism=museum", "tourism=gallery", "tourism=viewpoint",
		"historic=monument", "tourism=zoo", "tourism=theme_park", "historic=castle",
	},
	CategoryRestaurant: {
		"amenity=restaurant", "amenity=cafe", "amenity=fast_food", "amenity=bar",
		"amenity=pub", "amenity=food_court", "amenity=ice_cream",
	},
	CategoryAccommodation: {
		"tourism=hotel", "tourism=guest_house", "tourism=hostel", "tourism=motel",
		"tourism=resort", "amenity=homestay",
	},
	CategoryShopping: {
		"shop=mall", "shop=supermarket", "shop=convenience", "shop=department_store",
		"amenity=marketplace",
	},
	CategoryEntertainment: {
		"amenity=cinema", "amenity=theatre", "leisure=amusement_arcade",
		"tourism=theme_park", "leisure=bowling_alley",
	},
	CategoryHealthcare: {
		"amenity=hospital", "amenity=clinic", "amenity=pharmacy", "amenity=dentist",
	},
	CategoryEducation: {
		"amenity=school", "amenity=university", "amenity=college", "amenity=library",
	},
	CategoryTransport: {
		"amenity=fuel", "public_transport=station", "railway=station", "aeroway=aerodrome",
	},
}

var defaultSearchTags = []string{
	"tourism=attraction", "amenity=restaurant", "shop=mall", "leisure=park", "tourism=museum",
}

// SearchTags returns the OSM key=value filters for a category.
// Unknown categories and "all" use a broad default set.
func SearchTags(category PlaceCategory) []string {
	tags, ok := searchTags[category]
	if !ok {
		tags = defaultSearchTags
	}
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}

// ClassifyTags derives a place type from raw OSM tags.
func ClassifyTags(tags map[string]string) string {
	if amenity := tags["amenity"]; amenity != "" {
		switch amenity {
		case "restaurant", "cafe", "fast_food", "bar", "pub":
			return string(CategoryRestaurant)
		case "cinema", "theatre":
			return string(CategoryEntertainment)
		case "hospital", "clinic", "pharmacy":
			return string(CategoryHealthcare)
		case "school", "university", "college", "library":
			return string(CategoryEducation)
		case "fuel", "bus_station":
			return string(CategoryTransport)
		case "homestay":
			return string(CategoryAccommodation)
		}
	}
	if tourism := tags["tourism"]; tourism != "" {
		switch tourism {
		case "hotel", "guest_house", "hostel", "motel", "resort":
			return string(CategoryAccommodation)
		}
		return string(CategoryTourism)
	}
	switch {
	case tags["shop"] != "":
		return string(CategoryShopping)
	case tags["leisure"] != "":
		return string(CategoryEntertainment)
	case tags["historic"] != "":
		return string(CategoryTourism)
	}
	return TypeAttraction
}

// CategoryForType maps a place type onto a category. Types without a
// dedicated category fall into tourism.
func CategoryForType(placeType string) PlaceCategory {
	switch c := PlaceCategory(placeType); c {
	case CategoryRestaurant, CategoryAccommodation, CategoryTourism, CategoryShopping,
		CategoryEntertainment, CategoryHealthcare, CategoryEducation, CategoryTransport:
		return c
	}
	return CategoryTourism
}

// FormatAddress builds a display address from OSM addr:* tags.
func FormatAddress(tags map[string]string) string {
	if full := tags["addr:full"]; full != "" {
		return full
	}
	city := tags["addr:city"]
	if city == "" {
		city = tags["addr:town"]
	}
	var parts []string
	for _, part := range []string{tags["addr:housenumber"], tags["addr:street"], city, tags["addr:postcode"]} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return AddressUnavailable
	}
	return strings.Join(parts, ", ")
}

// ParseRating reads a numeric rating from the OSM stars tag.
func ParseRating(tags map[string]string) *float64 {
	stars, ok := tags["stars"]
	if !ok {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(stars), 64)
	if err != nil {
		return nil
	}
	return &v
}

// DedupeTolerance is the per-axis coordinate tolerance for duplicates.
const DedupeTolerance = 0.001

var nameFolder = cases.Fold()

// NormalizeName folds case and collapses whitespace for identity comparison.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(nameFolder.String(name)), " ")
}

// PlaceKey returns the storage identity of a place: its normalised name and
// coordinates rounded to three decimals.
func PlaceKey(p Place) string {
	return fmt.Sprintf("%s|%.3f|%.3f", NormalizeName(p.Name), p.Lat(), p.Lon())
}

// IsDuplicate reports whether b is the same real-world place as a.
func IsDuplicate(a, b Place) bool {
	if a.SourceURL != "" && a.SourceURL == b.SourceURL {
		return true
	}
	if NormalizeName(a.Name) != NormalizeName(b.Name) {
		return false
	}
	return math.Abs(a.Lat()-b.Lat()) <= DedupeTolerance &&
		math.Abs(a.Lon()-b.Lon()) <= DedupeTolerance
}

// DedupePlaces removes duplicates from places, keeping the first occurrence.
// Input order is provider priority, so earlier providers win.
func DedupePlaces(places []Place) []Place {
	out := make([]Place, 0, len(places))
	for _, candidate := range places {
		dup := false
		for _, kept := range out {
			if IsDuplicate(kept, candidate) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, candidate)
		}
	}
	return out
}
