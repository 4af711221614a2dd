package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m, err := NewManager("secret", 7*24*time.Hour)
	require.NoError(t, err)

	token, err := m.GenerateToken("user-1", "a@b.com", "Buyer", "A", "B")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "Buyer", claims.Role)
	assert.Equal(t, "A", claims.FirstName)
	assert.Equal(t, "B", claims.LastName)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestValidateRejectsBadTokens(t *testing.T) {
	m, err := NewManager("secret", time.Hour)
	require.NoError(t, err)
	other, err := NewManager("other-secret", time.Hour)
	require.NoError(t, err)

	foreign, err := other.GenerateToken("user-1", "a@b.com", "Agent", "A", "B")
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":     "",
		"malformed": "not.a.jwt",
		"signature": foreign,
	} {
		_, err := m.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	m, err := NewManager("secret", time.Hour)
	require.NoError(t, err)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.GenerateToken("user-1", "a@b.com", "Agent", "A", "B")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsNoneAlgorithm(t *testing.T) {
	m, err := NewManager("secret", time.Hour)
	require.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role:             "Admin",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager("", time.Hour)
	assert.Error(t, err)
}
