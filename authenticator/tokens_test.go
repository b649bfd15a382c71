package authenticator

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", "timetable-server")
	require.NoError(t, err)

	token, expiresAt, err := issuer.IssueAccess(7, "ada@example.org", "Ada", "admin")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.org", claims.Email)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "7", claims.Subject)
}

func TestTokenIssuerRejectsWrongSecret(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", "timetable-server")
	require.NoError(t, err)

	other, err := NewTokenIssuer("other-secret", "timetable-server")
	require.NoError(t, err)

	token, _, err := issuer.IssueAccess(1, "a@example.org", "A", "staff")
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestTokenIssuerRejectsWrongIssuer(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", "someone-else")
	require.NoError(t, err)

	verifier, err := NewTokenIssuer("test-secret", "timetable-server")
	require.NoError(t, err)

	token, _, err := issuer.IssueAccess(1, "a@example.org", "A", "staff")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestTokenIssuerRejectsExpiredToken(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", "timetable-server")
	require.NoError(t, err)

	claims := APIClaims{
		Email: "a@example.org",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "timetable-server",
			Subject:   "1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = issuer.Verify(expired)
	assert.Error(t, err)
}

func TestTokenIssuerRequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer("", "timetable-server")
	assert.Error(t, err)
}

func TestClaimsAccessors(t *testing.T) {
	claims := Claims{"email": "ada@example.org", "name": "Ada", "sub": "oidc|123"}

	assert.Equal(t, "ada@example.org", claims.Email())
	assert.Equal(t, "Ada", claims.Name())
	assert.Equal(t, "oidc|123", claims.Subject())

	empty := Claims{}
	assert.Equal(t, "", empty.Email())
	assert.Equal(t, "", empty.Name())
	assert.Equal(t, "", empty.Subject())
}
