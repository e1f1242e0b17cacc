package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessToken_RoundTrip(t *testing.T) {
	at, err := NewAccessToken("s3cret", "organizer", RoleAdmin, 15)
	require.NoError(t, err)
	assert.NotEmpty(t, at.Token)

	tok, err := jwt.Parse(at.Token, func(*jwt.Token) (interface{}, error) { return []byte("s3cret"), nil })
	require.NoError(t, err)
	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, "organizer", claims["sub"])
	assert.Equal(t, RoleAdmin, claims["role"])
}
