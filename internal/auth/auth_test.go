package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCfg = Config{Secret: "test-secret", Issuer: "https://auth.example.com"}

func TestSignAndParse(t *testing.T) {
	user := uuid.New()
	token, err := Sign(testCfg, user, "ana@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := Parse(token, testCfg)
	require.NoError(t, err)
	assert.Equal(t, user, claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "authenticated", claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestParseRejects(t *testing.T) {
	user := uuid.New()
	expired, err := Sign(testCfg, user, "", -time.Minute)
	require.NoError(t, err)
	wrongSecret, err := Sign(Config{Secret: "other", Issuer: testCfg.Issuer}, user, "", time.Hour)
	require.NoError(t, err)
	wrongIssuer, err := Sign(Config{Secret: testCfg.Secret, Issuer: "https://evil.example.com"}, user, "", time.Hour)
	require.NoError(t, err)
	notUUID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "service-account", "iss": testCfg.Issuer, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testCfg.Secret))
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.String(), "iss": testCfg.Issuer,
	}).SignedString([]byte(testCfg.Secret))
	require.NoError(t, err)

	tests := map[string]string{
		"expired":      expired,
		"wrong secret": wrongSecret,
		"wrong issuer": wrongIssuer,
		"subject":      notUUID,
		"no expiry":    noExpiry,
		"garbage":      "not.a.token",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(token, testCfg)
			assert.True(t, errors.Is(err, ErrInvalidToken), "got %v", err)
		})
	}

	_, err = Parse("  ", testCfg)
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestParseWithoutIssuer(t *testing.T) {
	cfg := Config{Secret: "s"}
	token, err := Sign(Config{Secret: "s", Issuer: "anything"}, uuid.New(), "", time.Hour)
	require.NoError(t, err)
	_, err = Parse(token, cfg)
	assert.NoError(t, err)
}

func TestFromRequest(t *testing.T) {
	user := uuid.New()
	token, err := Sign(testCfg, user, "", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err = FromRequest(req, testCfg)
	assert.ErrorIs(t, err, ErrMissingToken)

	req.Header.Set("Authorization", "Basic abc")
	_, err = FromRequest(req, testCfg)
	assert.ErrorIs(t, err, ErrInvalidToken)

	req.Header.Set("Authorization", "Bearer "+token)
	claims, err := FromRequest(req, testCfg)
	require.NoError(t, err)
	assert.Equal(t, user, claims.UserID)
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	claims := &Claims{UserID: uuid.New()}
	got, ok := FromContext(WithClaims(context.Background(), claims))
	require.True(t, ok)
	assert.Same(t, claims, got)
}
