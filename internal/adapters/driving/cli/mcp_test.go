package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geocache/internal/adapters/driving/mcp"
)

func TestMCPCmd_Structure(t *testing.T) {
	assert.Equal(t, "mcp", mcpCmd.Use)

	var found bool
	for _, c := range mcpCmd.Commands() {
		if c.Name() == "serve" {
			found = true
		}
	}
	assert.True(t, found)

	port := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "p", port.Shorthand)
	assert.Equal(t, "0", port.DefValue)
}

func TestMCPPorts_UsesInjectedServices(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()

	ports := mcpPorts()

	require.NoError(t, ports.Validate())
	assert.Same(t, svc.weather, ports.Weather)
	assert.Same(t, svc.places, ports.Places)
	assert.Same(t, svc.currency, ports.Currency)
	assert.Same(t, svc.news, ports.News)
}

func TestMCPServe_MissingService(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	currencyService = nil

	_, err := executeCommand("mcp", "serve")

	require.Error(t, err)
	assert.ErrorIs(t, err, mcp.ErrMissingService)
}
