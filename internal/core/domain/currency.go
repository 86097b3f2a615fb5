package domain

import (
	"fmt"
	"strings"
	"time"
)

// ExchangeRate is a quote for one unit of Base expressed in Target.
type ExchangeRate struct {
	Base      string    `json:"base" msgpack:"base"`
	Target    string    `json:"target" msgpack:"target"`
	Rate      float64   `json:"rate" msgpack:"rate"`
	Source    string    `json:"source" msgpack:"source"`
	FetchedAt time.Time `json:"fetched_at" msgpack:"fetched_at"`

	// Freshness is set on the way out and never persisted.
	Freshness Freshness `json:"freshness" msgpack:"-"`
}

// IsFallback reports whether the rate came from the fixed table.
func (r ExchangeRate) IsFallback() bool {
	return r.Source == FallbackSource
}

// CurrencyPair identifies a conversion.
type CurrencyPair struct {
	Base   string
	Target string
}

// String returns the pair as BASE_TARGET.
func (p CurrencyPair) String() string {
	return p.Base + "_" + p.Target
}

// CacheKey returns the cache key for the pair.
func (p CurrencyPair) CacheKey() string {
	return "currency_" + p.String()
}

// FallbackSource names rates served from the fixed table.
const FallbackSource = "fallback"

// fallbackRates is used when every live provider fails.
var fallbackRates = map[string]float64{
	"USD_EUR": 0.93,
	"EUR_USD": 1.07,
	"USD_GBP": 0.79,
	"GBP_USD": 1.27,
	"USD_JPY": 147.50,
	"JPY_USD": 0.0068,
	"USD_MYR": 4.68,
	"MYR_USD": 0.21,
}

// FallbackRate looks up the fixed rate for a pair.
func FallbackRate(p CurrencyPair) (float64, bool) {
	rate, ok := fallbackRates[p.String()]
	return rate, ok
}

// FallbackPairs returns the pairs covered by the fixed table.
func FallbackPairs() []string {
	out := make([]string, 0, len(fallbackRates))
	for pair := range fallbackRates {
		out = append(out, pair)
	}
	return out
}

// NormalizeCurrency upper-cases and validates an ISO 4217 style code.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", fmt.Errorf("%w: currency code %q must be three letters", ErrInvalidInput, code)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%w: currency code %q must be three letters", ErrInvalidInput, code)
		}
	}
	return code, nil
}

// NewCurrencyPair validates both codes.
func NewCurrencyPair(base, target string) (CurrencyPair, error) {
	b, err := NormalizeCurrency(base)
	if err != nil {
		return CurrencyPair{}, err
	}
	t, err := NormalizeCurrency(target)
	if err != nil {
		return CurrencyPair{}, err
	}
	return CurrencyPair{Base: b, Target: t}, nil
}
