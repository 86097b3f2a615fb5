package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateRegion_NearestCity(t *testing.T) {
	loc := LocateRegion(Coordinates{Lat: 5.41, Lon: 100.33})

	assert.Equal(t, "George Town", loc.City)
	assert.Equal(t, "Penang", loc.State)
	assert.Equal(t, NewsCountry, loc.Country)
	assert.True(t, loc.InRegion)
}

func TestLocateRegion_OutsideBounds(t *testing.T) {
	loc := LocateRegion(Coordinates{Lat: 51.5, Lon: -0.12})

	assert.Equal(t, NationalCity, loc.City)
	assert.Equal(t, NationalState, loc.State)
	assert.False(t, loc.InRegion)
}

func TestLookupRegion(t *testing.T) {
	r, ok := LookupRegion("  Kota Kinabalu ")
	require.True(t, ok)
	assert.Equal(t, "Kota Kinabalu", r.City)
	assert.Equal(t, "Sabah", r.State)

	_, ok = LookupRegion("Singapore")
	assert.False(t, ok)
}

func TestRegions_Copy(t *testing.T) {
	rs := Regions()
	require.Len(t, rs, 17)
	rs[0].Keywords[0] = "mutated"

	again := Regions()
	assert.Equal(t, "kuala lumpur", again[0].Keywords[0])
	assert.Equal(t, "Kuala Lumpur", again[0].City)
}

func TestIsRelevant(t *testing.T) {
	assert.True(t, IsRelevant(NewsArticle{Title: "Ringgit strengthens", Description: "markets"}))
	assert.False(t, IsRelevant(NewsArticle{Title: "Local football", Description: "Leeds win"}))
}

func TestAssociateRegions(t *testing.T) {
	regions := AssociateRegions(NewsArticle{Title: "Ipoh floods", Description: "Perak state alert"})
	require.Len(t, regions, 1)
	assert.Equal(t, "Ipoh", regions[0].City)

	fallback := AssociateRegions(NewsArticle{Title: "Malaysia GDP grows", Description: "economy"})
	var cities []string
	for _, r := range fallback {
		cities = append(cities, r.City)
	}
	assert.Equal(t, []string{"Kuala Lumpur", "George Town", "Johor Bahru"}, cities)
}

func TestNewsArticle_IsUsable(t *testing.T) {
	ok := NewsArticle{Title: "t", Description: "d", URL: "https://x"}
	assert.True(t, ok.IsUsable())

	removed := NewsArticle{Title: RemovedMarker, Description: "d", URL: "https://x"}
	assert.False(t, removed.IsUsable())

	noURL := NewsArticle{Title: "t", Description: "d"}
	assert.False(t, noURL.IsUsable())
}

func TestNewsQuery_Normalize(t *testing.T) {
	q, err := NewsQuery{Lat: 3.1, Lon: 101.6, Limit: 500, Category: " Sports "}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, DefaultNewsLimit, q.Limit)
	assert.Equal(t, "sports", q.Category)

	_, err = NewsQuery{Lat: -100, Lon: 0}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCityTitle(t *testing.T) {
	assert.Equal(t, "Kuala Terengganu", CityTitle("kuala terengganu"))
}
