package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geocache/internal/core/domain"
)

func TestPlacesCmd_Flags(t *testing.T) {
	radius := placesCmd.Flags().Lookup("radius")
	require.NotNil(t, radius)
	assert.Equal(t, "r", radius.Shorthand)
	assert.Equal(t, "5000", radius.DefValue)

	category := placesCmd.Flags().Lookup("category")
	require.NotNil(t, category)
	assert.Equal(t, "all", category.DefValue)
}

func TestPlacesCmd_LongListsCategories(t *testing.T) {
	for _, c := range domain.AllPlaceCategories() {
		assert.Contains(t, placesCmd.Long, c.String())
	}
}

func TestPlacesCmd_ForwardsQuery(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()

	svc.places.result = &domain.PlacesResult{
		Places: []domain.Place{
			{Name: "Joe's Pizza", Category: domain.PlaceCategory("restaurant"), Distance: 120, Address: "7 Carmine St"},
			{Name: "Central Park", Category: domain.PlaceCategory("park"), Distance: 2400},
		},
		Freshness: domain.FreshnessFresh,
	}

	out, err := executeCommand("places", "--lat", "40.73", "--lon", "-74.0", "-r", "3000", "-c", "restaurant")

	require.NoError(t, err)
	assert.False(t, svc.places.refreshed)
	assert.InDelta(t, 40.73, svc.places.query.Lat, 1e-9)
	assert.InDelta(t, 3000, svc.places.query.Radius, 1e-9)
	assert.Equal(t, domain.PlaceCategory("restaurant"), svc.places.query.Category)

	assert.Contains(t, out, "2 places (fresh)")
	assert.Contains(t, out, "[1] Joe's Pizza (restaurant) - 120 m")
	assert.Contains(t, out, "7 Carmine St")
	assert.Contains(t, out, "[2] Central Park (park) - 2.4 km")
}

func TestPlacesCmd_Refresh(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()

	svc.places.result = &domain.PlacesResult{Freshness: domain.FreshnessFresh}

	out, err := executeCommand("places", "--lat", "1", "--lon", "2", "--refresh")

	require.NoError(t, err)
	assert.True(t, svc.places.refreshed)
	assert.Contains(t, out, "No places found.")
}

func TestPlacesCmd_InvalidInput(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()

	svc.places.err = domain.ErrInvalidInput

	_, err := executeCommand("places", "--lat", "1", "--lon", "2", "-c", "castles")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "0 m", formatDistance(0))
	assert.Equal(t, "999 m", formatDistance(999))
	assert.Equal(t, "1.0 km", formatDistance(1000))
	assert.Equal(t, "12.3 km", formatDistance(12345))
}
