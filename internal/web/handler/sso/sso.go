package sso

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/house-aratus/membership-api/internal/auth"
	"github.com/house-aratus/membership-api/internal/config"
	"github.com/house-aratus/membership-api/internal/web/handler"
	"github.com/house-aratus/membership-api/internal/web/session"
)

const (
	// Path is the base path of the SSO endpoints.
	Path = "/sso"

	// LoginPath starts the character link flow for a user.
	LoginPath = "/login/:user"

	// CallbackPath completes the flow when the provider redirects back.
	CallbackPath = "/callback"

	// CookieName is the session cookie tying the callback to the browser
	// that started the flow.
	CookieName = "sso_session"
)

// Service is the SSO handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	sso *auth.SsoClient
}

// Handler is the SSO handler.
var Handler = Service{}

// Init initializes the SSO handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, ssoClient *auth.SsoClient) error {
	if app == nil || cfg == nil || ssoClient == nil {
		return errors.New(handler.ErrNilACSFatalLogMsg)
	}

	s.cfg = cfg
	s.sso = ssoClient

	app.Route(Path, func(router fiber.Router) {
		router.Get(LoginPath, s.Login)
		router.Get(CallbackPath, s.Callback)
	})

	return nil
}

// Login starts the character link flow: it binds a fresh session to the
// browser via a cookie and redirects to the provider's authorize URL.
func (s *Service) Login(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("user"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate sso session id")

		return fiber.NewError(fiber.StatusInternalServerError, "failed to start sso flow")
	}

	authorizeURL, err := s.sso.AuthorizeURL(sessionID, userID, c.Query("redirect"))
	if err != nil {
		log.Error().Err(err).Msg("failed to build authorize url")

		return fiber.NewError(fiber.StatusInternalServerError, "failed to start sso flow")
	}

	cookie := &fiber.Cookie{
		Name:     CookieName,
		Value:    sessionID,
		MaxAge:   int(s.stateTTL().Seconds()),
		Secure:   !s.cfg.DevMode,
		HTTPOnly: true,
		SameSite: "Lax",
	}

	c.Cookie(cookie)

	return c.Redirect(authorizeURL, fiber.StatusFound)
}

// Callback completes the flow: it validates the state against the session
// cookie, exchanges the code, verifies the character and links it to the
// user, then sends the browser back to the frontend.
//
// HandleCallback runs before any other request validation so the pending
// state is consumed on the first callback for a session, whatever the
// outcome; a rejected callback must not leave a replayable state behind.
func (s *Service) Callback(c *fiber.Ctx) error {
	sessionID := c.Cookies(CookieName)
	if sessionID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing sso session")
	}

	data, err := s.sso.HandleCallback(c.Context(), sessionID, c.Query("code"), c.Query("state"))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidState) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid sso state")
		}

		log.Error().Err(err).Msg("sso callback failed")

		return fiber.NewError(fiber.StatusBadGateway, "sso provider error")
	}

	userID, err := strconv.ParseUint(c.Query("userId"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	if _, err = s.sso.UpsertCharacter(userID, data); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}

		log.Error().Err(err).Msg("failed to link character")

		return fiber.NewError(fiber.StatusInternalServerError, "failed to link character")
	}

	c.ClearCookie(CookieName)

	return c.Redirect(s.cfg.Webserver.FrontURL+c.Query("redirect"), fiber.StatusFound)
}

// stateTTL is the cookie lifetime, aligned with the pending state lifetime.
func (s *Service) stateTTL() time.Duration {
	if s.cfg.Auth.Sso.StateTTL > 0 {
		return s.cfg.Auth.Sso.StateTTL
	}

	return config.DefaultStateTTL
}
