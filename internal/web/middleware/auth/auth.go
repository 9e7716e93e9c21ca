package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/house-aratus/membership-api/internal/auth"
)

// ClaimsKey is the fiber.Locals key carrying the verified access claims.
const ClaimsKey = "claims"

// bearerPrefix is the expected Authorization header scheme.
const bearerPrefix = "Bearer "

// New creates a Fiber middleware that requires a valid bearer access token.
// Verified claims are placed in fiber.Locals under ClaimsKey.
func New(issuer *auth.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := TokenFromHeader(c)
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		claims, err := issuer.Parse(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid bearer token")
		}

		c.Locals(ClaimsKey, claims)

		return c.Next()
	}
}

// TokenFromHeader extracts the bearer token from the Authorization header.
// It returns the empty string when the header is absent or malformed.
func TokenFromHeader(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}

	return strings.TrimPrefix(header, bearerPrefix)
}

// Claims returns the verified claims placed by the middleware, or nil when
// the request did not pass through it.
func Claims(c *fiber.Ctx) *auth.AccessClaims {
	claims, _ := c.Locals(ClaimsKey).(*auth.AccessClaims)
	return claims
}
