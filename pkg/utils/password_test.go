package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	h, err := HashPassword("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123", h)
	assert.True(t, CheckPassword("Secret123", h))
	assert.False(t, CheckPassword("secret123", h))
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("Secret123")
	require.NoError(t, err)
	b, err := HashPassword("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNewID_Unique(t *testing.T) {
	assert.Len(t, NewID(), 36)
	assert.NotEqual(t, NewID(), NewID())
}
