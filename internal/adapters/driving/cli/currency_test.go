package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geocache/internal/core/domain"
)

func TestCurrencyCmd_RequiresTwoArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("currency", "USD")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestCurrencyCmd_PrintsConversion(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()

	svc.currency.rate = &domain.ExchangeRate{
		Base: "USD", Target: "EUR", Rate: 0.92, Source: "frankfurter", Freshness: domain.FreshnessFresh,
	}

	out, err := executeCommand("currency", "usd", "eur", "--amount", "10")

	require.NoError(t, err)
	assert.Equal(t, "usd", svc.currency.base)
	assert.Equal(t, "eur", svc.currency.target)
	assert.Contains(t, out, "10 USD = 9.2000 EUR")
	assert.Contains(t, out, "frankfurter (fresh)")
	assert.NotContains(t, out, "built-in rate table")
}

func TestCurrencyCmd_Fallback(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()

	svc.currency.rate = &domain.ExchangeRate{
		Base: "JPY", Target: "USD", Rate: 0.0068, Source: domain.FallbackSource, Freshness: domain.FreshnessFresh,
	}

	out, err := executeCommand("currency", "JPY", "USD")

	require.NoError(t, err)
	assert.Contains(t, out, "built-in rate table")
}

func TestCurrencyCmd_JSON(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()

	svc.currency.rate = &domain.ExchangeRate{Base: "GBP", Target: "USD", Rate: 1.27, Source: "erapi"}

	out, err := executeCommand("currency", "GBP", "USD", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"rate": 1.27`)
	assert.Contains(t, out, `"source": "erapi"`)
}

func TestCurrencyCmd_InvalidCode(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()

	svc.currency.err = domain.ErrInvalidInput

	_, err := executeCommand("currency", "US", "EUR")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "rate lookup failed")
}
