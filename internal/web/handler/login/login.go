package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/house-aratus/membership-api/internal/auth"
	"github.com/house-aratus/membership-api/internal/config"
	"github.com/house-aratus/membership-api/internal/web/handler"
)

const (
	// Path is the path of the login endpoint.
	Path = "/login"
)

// Request is the login request body.
type Request struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Response is the login response body carrying the signed access token.
type Response struct {
	Token string `json:"token"`
}

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg  *config.Config
	auth *auth.Service
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, authService *auth.Service) error {
	if app == nil || cfg == nil || authService == nil {
		return errors.New(handler.ErrNilACSFatalLogMsg)
	}

	s.cfg = cfg
	s.auth = authService

	app.Post(Path, s.Post)

	return nil
}

// Post handles the credential login. Every failure yields the same 401; the
// cause is logged server side only.
func (s *Service) Post(c *fiber.Ctx) error {
	var req Request

	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Username == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "username and password are required")
	}

	token, err := s.auth.Login(req.Username, req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication failed")
	}

	return c.JSON(Response{Token: token})
}
