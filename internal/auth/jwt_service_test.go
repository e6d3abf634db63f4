package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJWTServiceIssueAndValidate(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{Secret: "test-secret", Issuer: "conexa"})
	require.NoError(t, err)

	token, err := svc.GenerateSessionToken("member-1", "a@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateSessionToken(token)
	require.NoError(t, err)
	require.Equal(t, "member-1", claims.MemberID)
	require.Equal(t, "a@x.com", claims.Email)
}

func TestJWTServiceRejectsExpiredToken(t *testing.T) {
	current := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }

	svc, err := NewJWTService(JWTConfig{
		Secret:     "test-secret",
		Issuer:     "conexa",
		SessionTTL: time.Minute,
		Clock:      clock,
	})
	require.NoError(t, err)

	token, err := svc.GenerateSessionToken("member-1", "")
	require.NoError(t, err)

	current = current.Add(2 * time.Minute)
	_, err = svc.ValidateSessionToken(token)
	require.Error(t, err)
}

func TestJWTServiceRejectsWrongIssuer(t *testing.T) {
	issuer, err := NewJWTService(JWTConfig{Secret: "s", Issuer: "other"})
	require.NoError(t, err)

	token, err := issuer.GenerateSessionToken("member-1", "")
	require.NoError(t, err)

	verifier, err := NewJWTService(JWTConfig{Secret: "s", Issuer: "conexa"})
	require.NoError(t, err)

	_, err = verifier.ValidateSessionToken(token)
	require.Error(t, err)
}

func TestJWTServiceRequiresSecret(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	require.Error(t, err)
}
