package utils

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	JwtKey = []byte("test-secret")

	token, err := GenerateJWT("user-1", "customer")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "customer", claims.Role)

	// Tokens are valid for 24 hours.
	expiry := time.Unix(claims.ExpiresAt, 0)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiry, time.Minute)
}

func TestParseJWTRejectsExpired(t *testing.T) {
	JwtKey = []byte("test-secret")

	claims := &Claims{
		UserID: "user-1",
		Role:   "customer",
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(-time.Hour).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(JwtKey)
	require.NoError(t, err)

	_, err = ParseJWT(signed)
	assert.Error(t, err)
}

func TestParseJWTRejectsWrongKey(t *testing.T) {
	JwtKey = []byte("test-secret")
	token, err := GenerateJWT("user-1", "customer")
	require.NoError(t, err)

	JwtKey = []byte("different-secret")
	_, err = ParseJWT(token)
	assert.Error(t, err)
}
