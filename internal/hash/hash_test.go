package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("password123")
	require.NoError(t, err)
	require.NotEmpty(t, h)
	require.NotEqual(t, "password123", h)

	h2, err := HashPassword("password123")
	require.NoError(t, err)
	require.NotEqual(t, h, h2, "bcrypt output must be salted")
}

func TestCheckPassword(t *testing.T) {
	h, err := HashPassword("password123")
	require.NoError(t, err)

	require.True(t, CheckPassword(h, "password123"))
	require.False(t, CheckPassword(h, "password124"))
	require.False(t, CheckPassword(h, ""))
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	require.False(t, CheckPassword("not-a-bcrypt-hash", "password123"))
	require.False(t, CheckPassword("", "password123"))
}
