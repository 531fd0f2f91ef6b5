package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)

	token, err := m.GenerateAccessToken("user-1", "anna")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "anna", claims.Username)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "storefront", claims.Issuer)
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager(testSecret, time.Minute)
	m.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }

	token, err := m.GenerateAccessToken("user-1", "anna")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Date(2025, 1, 1, 0, 5, 0, 0, time.UTC) }
	_, err = m.ValidateAccessToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	token, err := NewJWTManager(testSecret, time.Hour).GenerateAccessToken("user-1", "anna")
	require.NoError(t, err)

	_, err = NewJWTManager("another-secret-entirely-different", time.Hour).ValidateAccessToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTManager_RejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTManager(testSecret, time.Hour).ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTManager_RejectsForeignIssuer(t *testing.T) {
	claims := &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewJWTManager(testSecret, time.Hour).ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTManager_TokenValidator(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)
	token, err := m.GenerateAccessToken("user-1", "anna")
	require.NoError(t, err)

	claims, err := m.TokenValidator()(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "anna", claims.Username)

	_, err = m.TokenValidator()("garbage")
	assert.Error(t, err)
}
