// Package config loads process configuration that lives outside the
// TOML file, i.e. environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/custodia-labs/geocache/internal/core/domain"
)

// Env holds the environment variables geocache reads.
// Empty values leave the file or default setting untouched.
type Env struct {
	OpenWeatherAPIKey string        `env:"OPENWEATHER_API_KEY"`
	NewsAPIKey        string        `env:"NEWS_API_KEY"`
	Addr              string        `env:"GEOCACHE_ADDR"`
	DataDir           string        `env:"GEOCACHE_DATA_DIR"`
	ConfigDir         string        `env:"GEOCACHE_CONFIG_DIR"`
	HTTPTimeout       time.Duration `env:"GEOCACHE_HTTP_TIMEOUT"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnv reads Env from the process environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}

// EnvOverride returns a settings override applying environment variables
// on top of file values. The environment is read on every call so a
// settings reload also picks up changed variables.
func EnvOverride() func(*domain.AppSettings) error {
	return func(s *domain.AppSettings) error {
		e, err := LoadEnv()
		if err != nil {
			return err
		}
		e.Apply(s)
		return nil
	}
}

// Apply copies the non-empty values of e into s.
func (e Env) Apply(s *domain.AppSettings) {
	if e.OpenWeatherAPIKey != "" {
		s.Providers.OpenWeather.APIKey = e.OpenWeatherAPIKey
	}
	if e.NewsAPIKey != "" {
		s.Providers.NewsAPI.APIKey = e.NewsAPIKey
	}
	if e.Addr != "" {
		s.Server.Addr = e.Addr
	}
	if e.HTTPTimeout > 0 {
		s.Providers.Timeout = e.HTTPTimeout
	}
}
