package register

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/house-aratus/membership-api/internal/auth"
	"github.com/house-aratus/membership-api/internal/config"
	"github.com/house-aratus/membership-api/internal/web/handler"
)

const (
	// Path is the path of the registration endpoint.
	Path = "/register"
)

// Request is the registration request body. The repeated password must
// match; the directory enforces username uniqueness.
type Request struct {
	Email          string `json:"email" validate:"required,email"`
	Username       string `json:"username" validate:"required,min=2,max=100"`
	Password       string `json:"password" validate:"required,min=8"`
	PasswordRepeat string `json:"passwordRepeat" validate:"required,eqfield=Password"`
}

// Service is the registration handler service.
type Service struct {
	handler.Service
	cfg      *config.Config
	auth     *auth.Service
	validate *validator.Validate
}

// Handler is the registration handler.
var Handler = Service{}

// Init initializes the registration handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, authService *auth.Service) error {
	if app == nil || cfg == nil || authService == nil {
		return errors.New(handler.ErrNilACSFatalLogMsg)
	}

	s.cfg = cfg
	s.auth = authService
	s.validate = validator.New()

	app.Post(Path, s.Post)

	return nil
}

// Post creates a new member entry in the directory. The local account
// appears on the member's first login, not here.
func (s *Service) Post(c *fiber.Ctx) error {
	var req Request

	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := s.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid registration data")
	}

	if err := s.auth.Register(req.Email, req.Username, req.Password); err != nil {
		return fiber.NewError(fiber.StatusConflict, "registration failed")
	}

	return c.SendStatus(fiber.StatusCreated)
}
