package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUpstreamUnavailable", ErrUpstreamUnavailable},
		{"ErrPersistenceDegraded", ErrPersistenceDegraded},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrProviderNotConfigured", ErrProviderNotConfigured},
		{"ErrMalformedResponse", ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrNotFound tests ErrNotFound error
func TestErrNotFound(t *testing.T) {
	assert.Equal(t, "not found", ErrNotFound.Error())
	assert.True(t, errors.Is(ErrNotFound, ErrNotFound))
	assert.False(t, errors.Is(ErrNotFound, ErrInvalidInput))
}

// TestErrInvalidInput tests ErrInvalidInput error
func TestErrInvalidInput(t *testing.T) {
	assert.Equal(t, "invalid input", ErrInvalidInput.Error())
	assert.True(t, errors.Is(ErrInvalidInput, ErrInvalidInput))
	assert.False(t, errors.Is(ErrInvalidInput, ErrNotFound))
}

// TestErrUpstreamUnavailable tests ErrUpstreamUnavailable error
func TestErrUpstreamUnavailable(t *testing.T) {
	assert.Equal(t, "upstream unavailable", ErrUpstreamUnavailable.Error())
	assert.False(t, errors.Is(ErrUpstreamUnavailable, ErrPersistenceDegraded))
}

func TestErrors_Joined(t *testing.T) {
	providerErr := fmt.Errorf("frankfurter: %w", ErrRateLimited)
	err := errors.Join(ErrUpstreamUnavailable, providerErr)

	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.False(t, errors.Is(err, ErrInvalidInput))
}

func TestErrors_Wrapped(t *testing.T) {
	err := fmt.Errorf("%w: latitude out of range", ErrInvalidInput)

	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), "invalid input")
}
