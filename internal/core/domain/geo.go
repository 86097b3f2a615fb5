package domain

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean Earth radius used by Distance.
const EarthRadiusMeters = 6371000.0

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// String formats the coordinates as "lat,lon".
func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// GeoPoint stores a position in GeoJSON order: [longitude, latitude].
// Callers read it through Lat and Lon.
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewGeoPoint builds a GeoJSON point from latitude/longitude.
func NewGeoPoint(lat, lon float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{lon, lat}}
}

// Lat returns the point latitude.
func (p GeoPoint) Lat() float64 { return p.Coordinates[1] }

// Lon returns the point longitude.
func (p GeoPoint) Lon() float64 { return p.Coordinates[0] }

// LatLon returns the point as Coordinates.
func (p GeoPoint) LatLon() Coordinates {
	return Coordinates{Lat: p.Lat(), Lon: p.Lon()}
}

// ValidateCoordinates rejects out-of-range or non-finite coordinates.
func ValidateCoordinates(lat, lon float64) (Coordinates, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return Coordinates{}, fmt.Errorf("%w: coordinates must be finite", ErrInvalidInput)
	}
	if lat < -90 || lat > 90 {
		return Coordinates{}, fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidInput, lat)
	}
	if lon < -180 || lon > 180 {
		return Coordinates{}, fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidInput, lon)
	}
	return Coordinates{Lat: lat, Lon: lon}, nil
}

// Distance returns the great-circle distance in meters between a and b
// using the haversine formula with R = 6371000 m.
func Distance(a, b Coordinates) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	dPhi := (b.Lat - a.Lat) * math.Pi / 180
	dLambda := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// MetersPerDegreeLat is the approximate length of one degree of latitude.
const MetersPerDegreeLat = 111320.0

// BoundingBox is an axis-aligned lat/lon rectangle.
type BoundingBox struct {
	MinLat, MinLon, MaxLat, MaxLon float64
}

// BoundsAround returns the box enclosing a circle of radius meters around c.
// Longitude bounds may fall outside [-180, 180] when the circle crosses the
// antimeridian; callers wrap them as needed.
func BoundsAround(c Coordinates, radius float64) BoundingBox {
	angular := radius / EarthRadiusMeters
	dLat := angular * 180 / math.Pi

	dLon := 180.0
	cosLat := math.Cos(c.Lat * math.Pi / 180)
	if ratio := math.Sin(angular) / cosLat; cosLat > 1e-12 && ratio < 1 && angular < math.Pi/2 {
		dLon = math.Asin(ratio) * 180 / math.Pi
	}

	return BoundingBox{
		MinLat: math.Max(c.Lat-dLat, -90),
		MaxLat: math.Min(c.Lat+dLat, 90),
		MinLon: c.Lon - dLon,
		MaxLon: c.Lon + dLon,
	}
}
