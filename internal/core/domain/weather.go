package domain

import (
	"fmt"
	"time"
)

// Weather is the current conditions at a coordinate.
type Weather struct {
	Lat         float64   `json:"lat" msgpack:"lat"`
	Lon         float64   `json:"lon" msgpack:"lon"`
	Temp        float64   `json:"temp" msgpack:"temp"`
	Description string    `json:"description" msgpack:"description"`
	Icon        string    `json:"icon" msgpack:"icon"`
	Humidity    int       `json:"humidity" msgpack:"humidity"`
	City        string    `json:"city" msgpack:"city"`
	Country     string    `json:"country" msgpack:"country"`
	Source      string    `json:"source" msgpack:"source"`
	FetchedAt   time.Time `json:"fetched_at" msgpack:"fetched_at"`

	// Freshness is set on the way out and never persisted.
	Freshness Freshness `json:"freshness" msgpack:"-"`
}

// WeatherKey returns the cache key for weather at c.
func WeatherKey(c Coordinates) string {
	return fmt.Sprintf("weather_%.4f_%.4f", c.Lat, c.Lon)
}
