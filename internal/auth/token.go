package auth

import (
	"fmt"
	"sort"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/house-aratus/membership-api/internal/config"
	"github.com/house-aratus/membership-api/internal/db/models"
	"github.com/house-aratus/membership-api/internal/uniuri"
)

// defaultAccessTokenTTL is used when no lifetime is configured.
const defaultAccessTokenTTL = 15 * time.Minute

// jtiLen is the length of the random token id. The jti keeps two tokens
// issued within the same second from colliding, which matters because the
// token value doubles as the refresh token lookup key.
const jtiLen = 16

// AccessClaims are the claims carried by an issued access token.
type AccessClaims struct {
	UserID uint64   `json:"uid"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	Groups []string `json:"groups"`
	jwt.RegisteredClaims
}

// TokenIssuer produces signed access tokens for authenticated users.
// Issue is a pure function of the user's identity and role/group set at
// call time; it persists nothing.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a token issuer from the JWT configuration.
func NewTokenIssuer(cfg config.JWT) *TokenIssuer {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultAccessTokenTTL
	}

	return &TokenIssuer{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs an access token for the user. Every issued token is unique
// through its jti, even for an unchanged user within the same second.
func (i *TokenIssuer) Issue(user *models.User) (string, error) {
	now := i.now()

	claims := AccessClaims{
		UserID: user.ID,
		Email:  user.Email,
		Roles:  collectRoles(user),
		Groups: collectGroupNames(user),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uniuri.NewLen(jtiLen),
			Issuer:    i.issuer,
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return signed, nil
}

// Parse validates an access token's signature and expiry and returns its claims.
func (i *TokenIssuer) Parse(tokenString string) (*AccessClaims, error) {
	claims := new(AccessClaims)

	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(*jwt.Token) (interface{}, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}

	return claims, nil
}

// collectRoles merges the user's direct roles with the roles granted
// through group membership, deduplicated and sorted for a stable claim set.
func collectRoles(user *models.User) []string {
	seen := make(map[string]bool)

	for _, role := range user.Roles {
		seen[role] = true
	}

	for _, group := range user.Groups {
		for _, role := range group.Roles {
			seen[role] = true
		}
	}

	roles := make([]string, 0, len(seen))
	for role := range seen {
		roles = append(roles, role)
	}

	sort.Strings(roles)

	return roles
}

// collectGroupNames returns the user's group names, sorted for a stable claim set.
func collectGroupNames(user *models.User) []string {
	names := make([]string, 0, len(user.Groups))
	for _, group := range user.Groups {
		names = append(names, group.Name)
	}

	sort.Strings(names)

	return names
}
