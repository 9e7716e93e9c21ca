package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/house-aratus/membership-api/internal/config"
	"github.com/house-aratus/membership-api/internal/db/models"
)

func TestIssueAndParse(t *testing.T) {
	issuer := newTestIssuer()

	user := &models.User{
		ID:       42,
		Username: "jdoe",
		Email:    "jdoe@housearatus.space",
		Roles:    []string{models.RoleUser},
		Groups: []models.Group{
			{Name: "pilots", Roles: []string{"ROLE_PILOT"}},
			{Name: "officers"},
		},
	}

	tokenString, err := issuer.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := issuer.Parse(tokenString)
	require.NoError(t, err)

	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "jdoe", claims.Subject)
	assert.Equal(t, "jdoe@housearatus.space", claims.Email)
	assert.Equal(t, "membership-api-test", claims.Issuer)
	assert.Equal(t, []string{"ROLE_PILOT", models.RoleUser}, claims.Roles)
	assert.Equal(t, []string{"officers", "pilots"}, claims.Groups)
}

func TestIssueMergesGroupRoles(t *testing.T) {
	issuer := newTestIssuer()

	user := &models.User{
		ID:       1,
		Username: "jdoe",
		Roles:    []string{models.RoleUser},
		Groups: []models.Group{
			{Name: "officers", Roles: []string{"ROLE_OFFICER", models.RoleUser}},
		},
	}

	tokenString, err := issuer.Issue(user)
	require.NoError(t, err)

	claims, err := issuer.Parse(tokenString)
	require.NoError(t, err)

	// Duplicates across user and group roles collapse.
	assert.Equal(t, []string{"ROLE_OFFICER", models.RoleUser}, claims.Roles)
}

func TestIssueProducesUniqueTokens(t *testing.T) {
	issuer := newTestIssuer()
	user := &models.User{ID: 1, Username: "jdoe"}

	first, err := issuer.Issue(user)
	require.NoError(t, err)

	second, err := issuer.Issue(user)
	require.NoError(t, err)

	// Tokens double as refresh token lookup keys, so two tokens issued in
	// the same second must still differ.
	assert.NotEqual(t, first, second)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := newTestIssuer()

	tokenString, err := issuer.Issue(&models.User{ID: 1, Username: "jdoe"})
	require.NoError(t, err)

	other := NewTokenIssuer(config.JWT{Secret: "other-secret", Issuer: "membership-api-test"})

	_, err = other.Parse(tokenString)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	issuer := newTestIssuer()
	issuer.now = func() time.Time {
		return time.Now().Add(-2 * time.Minute)
	}

	tokenString, err := issuer.Issue(&models.User{ID: 1, Username: "jdoe"})
	require.NoError(t, err)

	_, err = issuer.Parse(tokenString)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseRejectsUnexpectedSigningMethod(t *testing.T) {
	issuer := newTestIssuer()

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "jdoe"})

	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.Parse(tokenString)
	assert.Error(t, err)
}

func TestNewTokenIssuerDefaultTTL(t *testing.T) {
	issuer := NewTokenIssuer(config.JWT{Secret: "s"})

	assert.Equal(t, defaultAccessTokenTTL, issuer.ttl)
}
