// server/internal/auth/auth_test.go
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("relief-secret-1")
	require.NoError(t, err)
	assert.NotEqual(t, "relief-secret-1", hash)

	assert.True(t, CheckPasswordHash("relief-secret-1", hash))
	assert.False(t, CheckPasswordHash("wrong-password", hash))
	assert.False(t, CheckPasswordHash("relief-secret-1", "not-a-bcrypt-hash"))
}

func TestJWTRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateJWT(secret, time.Hour, "VOL-1A2B3C4D", "arun@relief.local", "Arun", "volunteer")
	require.NoError(t, err)

	claims, err := ParseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "VOL-1A2B3C4D", claims.UserID)
	assert.Equal(t, "arun@relief.local", claims.Email)
	assert.Equal(t, "Arun", claims.Name)
	assert.Equal(t, "volunteer", claims.Role)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateJWT([]byte("right-secret"), time.Hour, "VOL-1", "a@b.c", "A", "volunteer")
	require.NoError(t, err)

	_, err = ParseToken([]byte("wrong-secret"), token)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateJWT(secret, -time.Minute, "VOL-1", "a@b.c", "A", "volunteer")
	require.NoError(t, err)

	_, err = ParseToken(secret, token)
	assert.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken([]byte("test-secret"), "not.a.token")
	assert.Error(t, err)
}
