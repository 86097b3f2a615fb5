package domain

import (
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NewsArticle is a news item stored against a city.
// (URL, City) is unique.
type NewsArticle struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	SourceName  string    `json:"source_name"`
	Content     string    `json:"content,omitempty"`
	Country     string    `json:"country"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Text returns the lowercased searchable text of the article.
func (a NewsArticle) Text() string {
	return strings.ToLower(a.Title + " " + a.Description + " " + a.Content)
}

// RemovedMarker is the placeholder NewsAPI uses for withdrawn articles.
const RemovedMarker = "[Removed]"

// IsUsable reports whether the article carries the fields needed for display.
func (a NewsArticle) IsUsable() bool {
	return a.Title != "" && a.Title != RemovedMarker &&
		a.Description != "" && a.Description != RemovedMarker &&
		a.URL != ""
}

// Region is a known city used to localise news.
type Region struct {
	City     string
	State    string
	Center   Coordinates
	Keywords []string
}

// NewsCountry is the country code attached to stored articles.
const NewsCountry = "MY"

// Major cities receive articles that match no specific region.
var majorCities = []string{"kuala lumpur", "george town", "johor bahru"}

// regions is keyed by lowercase city name.
var regions = []Region{
	{City: "kuala lumpur", State: "Federal Territory", Center: Coordinates{3.139, 101.6869},
		Keywords: []string{"kuala lumpur", "kl", "klang valley", "selangor"}},
	{City: "george town", State: "Penang", Center: Coordinates{5.4141, 100.3288},
		Keywords: []string{"george town", "penang", "pulau pinang"}},
	{City: "johor bahru", State: "Johor", Center: Coordinates{1.4927, 103.7414},
		Keywords: []string{"johor bahru", "jb", "johor", "southern malaysia"}},
	{City: "ipoh", State: "Perak", Center: Coordinates{4.5975, 101.0901},
		Keywords: []string{"ipoh", "perak"}},
	{City: "shah alam", State: "Selangor", Center: Coordinates{3.0733, 101.5185},
		Keywords: []string{"shah alam", "selangor", "klang valley"}},
	{City: "petaling jaya", State: "Selangor", Center: Coordinates{3.1073, 101.6067},
		Keywords: []string{"petaling jaya", "pj", "selangor", "klang valley"}},
	{City: "kota kinabalu", State: "Sabah", Center: Coordinates{5.9749, 116.0724},
		Keywords: []string{"kota kinabalu", "kk", "sabah", "east malaysia"}},
	{City: "kuching", State: "Sarawak", Center: Coordinates{1.5533, 110.3593},
		Keywords: []string{"kuching", "sarawak", "east malaysia"}},
	{City: "malacca", State: "Malacca", Center: Coordinates{2.2449, 102.2482},
		Keywords: []string{"malacca", "melaka", "historical city"}},
	{City: "alor setar", State: "Kedah", Center: Coordinates{6.1239, 100.3635},
		Keywords: []string{"alor setar", "kedah", "northern malaysia"}},
	{City: "kota bharu", State: "Kelantan", Center: Coordinates{6.1264, 102.2380},
		Keywords: []string{"kota bharu", "kelantan", "east coast"}},
	{City: "kuantan", State: "Pahang", Center: Coordinates{3.8077, 103.3260},
		Keywords: []string{"kuantan", "pahang", "east coast"}},
	{City: "seremban", State: "Negeri Sembilan", Center: Coordinates{2.7258, 101.9424},
		Keywords: []string{"seremban", "negeri sembilan"}},
	{City: "kangar", State: "Perlis", Center: Coordinates{6.4414, 100.1986},
		Keywords: []string{"kangar", "perlis", "northern malaysia"}},
	{City: "kuala terengganu", State: "Terengganu", Center: Coordinates{5.3302, 103.1408},
		Keywords: []string{"kuala terengganu", "terengganu", "east coast"}},
	{City: "putrajaya", State: "Federal Territory", Center: Coordinates{2.9264, 101.6964},
		Keywords: []string{"putrajaya", "administrative capital"}},
	{City: "labuan", State: "Federal Territory", Center: Coordinates{5.2767, 115.2417},
		Keywords: []string{"labuan", "offshore financial center"}},
}

// Regions returns the known news regions with display-cased city names.
func Regions() []Region {
	out := make([]Region, len(regions))
	for i, r := range regions {
		r.City = CityTitle(r.City)
		r.Keywords = append([]string(nil), r.Keywords...)
		out[i] = r
	}
	return out
}

// NationalCity is the city whose articles act as national news.
const NationalCity = "Kuala Lumpur"

// NationalState is the state of NationalCity.
const NationalState = "Federal Territory"

// NewsBounds is the bounding box inside which coordinates resolve to a
// specific city.
var NewsBounds = BoundingBox{MinLat: 0.8, MaxLat: 7.5, MinLon: 99.5, MaxLon: 119.5}

// Location is the outcome of resolving coordinates to a news region.
type Location struct {
	Country  string `json:"country"`
	City     string `json:"city"`
	State    string `json:"state"`
	InRegion bool   `json:"in_region"`
}

// LocateRegion resolves coordinates to the nearest known city using planar
// degree distance. Coordinates outside NewsBounds resolve to the national city.
func LocateRegion(c Coordinates) Location {
	inBounds := c.Lat >= NewsBounds.MinLat && c.Lat <= NewsBounds.MaxLat &&
		c.Lon >= NewsBounds.MinLon && c.Lon <= NewsBounds.MaxLon
	if !inBounds {
		return Location{Country: NewsCountry, City: NationalCity, State: NationalState}
	}

	best := Location{Country: NewsCountry, City: NationalCity, State: NationalState, InRegion: true}
	minDist := math.Inf(1)
	for _, r := range regions {
		d := math.Hypot(c.Lat-r.Center.Lat, c.Lon-r.Center.Lon)
		if d < minDist {
			minDist = d
			best.City = CityTitle(r.City)
			best.State = r.State
		}
	}
	return best
}

// LookupRegion finds a region by city name, case-insensitively.
func LookupRegion(city string) (Region, bool) {
	key := strings.ToLower(strings.TrimSpace(city))
	for _, r := range regions {
		if r.City == key {
			r.City = CityTitle(r.City)
			return r, true
		}
	}
	return Region{}, false
}

// relevanceKeywords decide whether an article concerns the covered country.
var relevanceKeywords = []string{
	"malaysia", "malaysian", "kuala lumpur", "penang", "johor", "sabah", "sarawak",
	"selangor", "perak", "kedah", "kelantan", "terengganu", "pahang", "melaka",
	"negeri sembilan", "perlis", "putrajaya", "labuan", "ringgit", "klang valley",
}

// IsRelevant reports whether the article mentions the covered country.
func IsRelevant(a NewsArticle) bool {
	text := a.Text()
	for _, kw := range relevanceKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// AssociateRegions returns the regions an article mentions. Articles that
// mention none are attached to the major cities.
func AssociateRegions(a NewsArticle) []Region {
	text := a.Text()
	var matched []Region
	for _, r := range regions {
		for _, kw := range r.Keywords {
			if strings.Contains(text, kw) {
				r.City = CityTitle(r.City)
				matched = append(matched, r)
				break
			}
		}
	}
	if len(matched) > 0 {
		return matched
	}
	for _, city := range majorCities {
		r, _ := LookupRegion(city)
		matched = append(matched, r)
	}
	return matched
}

// NewsCategoryQueries maps a news category to the search queries used to
// collect it.
var NewsCategoryQueries = []struct {
	Category string
	Queries  []string
}{
	{"general", []string{"Malaysia", "Malaysian news", "Malaysia today"}},
	{"economy", []string{"Malaysia economy", "Malaysian ringgit", "Malaysia business", "Malaysia trade"}},
	{"tourism", []string{"Malaysia tourism", "Visit Malaysia", "Malaysia travel", "Malaysian attractions"}},
	{"technology", []string{"Malaysia technology", "Malaysia digital", "Malaysia tech startup"}},
	{"politics", []string{"Malaysia politics", "Malaysian government", "Malaysia parliament"}},
	{"sports", []string{"Malaysia sports", "Malaysian athletes", "Malaysia football"}},
	{"culture", []string{"Malaysia culture", "Malaysian festival", "Malaysia heritage"}},
}

// NewsCategoryLocal marks articles collected by a per-city query.
const NewsCategoryLocal = "local"

var titleCaser = cases.Title(language.English)

// CityTitle converts a lowercase city key to its display form.
func CityTitle(city string) string {
	return titleCaser.String(city)
}

// NewsQuery describes a local news request.
type NewsQuery struct {
	Lat      float64
	Lon      float64
	Category string
	Limit    int
}

// DefaultNewsLimit caps local news results.
const DefaultNewsLimit = 50

// Normalize validates the query and fills defaults.
func (q NewsQuery) Normalize() (NewsQuery, error) {
	if _, err := ValidateCoordinates(q.Lat, q.Lon); err != nil {
		return NewsQuery{}, err
	}
	if q.Limit <= 0 || q.Limit > DefaultNewsLimit {
		q.Limit = DefaultNewsLimit
	}
	q.Category = strings.ToLower(strings.TrimSpace(q.Category))
	if q.Category == "" {
		q.Category = "all"
	}
	return q, nil
}

// NewsResult is the response to a local news request.
type NewsResult struct {
	Location  Location      `json:"location"`
	Articles  []NewsArticle `json:"articles"`
	Freshness Freshness     `json:"freshness"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// NewsRefreshReport summarises a full news refresh.
type NewsRefreshReport struct {
	TotalArticles  int           `json:"total_articles"`
	StoredArticles int           `json:"stored_articles"`
	FailedQueries  int           `json:"failed_queries"`
	Duration       time.Duration `json:"duration"`
	CompletedAt    time.Time     `json:"completed_at"`
}

// LocationCount is the per-city breakdown in NewsStats.
type LocationCount struct {
	City       string    `json:"city"`
	State      string    `json:"state"`
	Count      int       `json:"count"`
	LatestNews time.Time `json:"latest_news"`
}

// NewsStats summarises stored news.
type NewsStats struct {
	TotalArticles  int             `json:"total_articles"`
	RecentArticles int             `json:"recent_articles"`
	LastRefresh    *time.Time      `json:"last_refresh,omitempty"`
	Locations      []LocationCount `json:"locations"`
}
