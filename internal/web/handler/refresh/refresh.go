package refresh

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/house-aratus/membership-api/internal/auth"
	"github.com/house-aratus/membership-api/internal/config"
	"github.com/house-aratus/membership-api/internal/web/handler"
	authmw "github.com/house-aratus/membership-api/internal/web/middleware/auth"
)

const (
	// Path is the path of the token refresh endpoint.
	Path = "/refresh"
)

// Response is the refresh response body carrying the new access token.
type Response struct {
	Token string `json:"token"`
}

// Service is the token refresh handler service.
type Service struct {
	handler.Service
	cfg  *config.Config
	auth *auth.Service
}

// Handler is the token refresh handler.
var Handler = Service{}

// Init initializes the token refresh handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, authService *auth.Service) error {
	if app == nil || cfg == nil || authService == nil {
		return errors.New(handler.ErrNilACSFatalLogMsg)
	}

	s.cfg = cfg
	s.auth = authService

	app.Post(Path, s.Post)

	return nil
}

// Post exchanges the presented bearer token for a fresh one. The token is
// resolved against the stored refresh tokens, not parsed locally, so a token
// that was rotated away is rejected even if its signature is still valid.
func (s *Service) Post(c *fiber.Ctx) error {
	token := authmw.TokenFromHeader(c)
	if token == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
	}

	refreshed, err := s.auth.Refresh(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenNotFound) || errors.Is(err, auth.ErrInvalidToken) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid refresh token")
		}

		return fiber.NewError(fiber.StatusInternalServerError, "token refresh failed")
	}

	return c.JSON(Response{Token: refreshed})
}
