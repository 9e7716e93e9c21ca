package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/house-aratus/membership-api/internal/auth"
	"github.com/house-aratus/membership-api/internal/config"
	"github.com/house-aratus/membership-api/internal/web/handler/character"
	"github.com/house-aratus/membership-api/internal/web/handler/login"
	"github.com/house-aratus/membership-api/internal/web/handler/profile"
	"github.com/house-aratus/membership-api/internal/web/handler/refresh"
	"github.com/house-aratus/membership-api/internal/web/handler/register"
	ssohandler "github.com/house-aratus/membership-api/internal/web/handler/sso"
	authmw "github.com/house-aratus/membership-api/internal/web/middleware/auth"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the web service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// checkAlive reports liveness; it flips to 503 during the graceful
// shutdown window so load balancers drain this instance.
func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendStatus(fiber.StatusOK)
}

// New creates a new web service with the given configuration and wires all
// handlers. Routes behind the bearer token middleware require a valid
// access token.
func New(
	cfg *config.Config,
	db *gorm.DB,
	authService *auth.Service,
	ssoClient *auth.SsoClient,
	issuer *auth.TokenIssuer,
) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	service := &Service{
		cfg:         cfg,
		App:         app,
		db:          db,
		authService: authService,
	}

	service.alive.Store(true)
	app.Get("/checkalive", service.checkAlive)

	// public surface
	if err := login.Handler.Init(app, cfg, authService); err != nil {
		log.Fatal().Err(err).Msg("failed to init login handler")
	}

	if err := refresh.Handler.Init(app, cfg, authService); err != nil {
		log.Fatal().Err(err).Msg("failed to init refresh handler")
	}

	if err := register.Handler.Init(app, cfg, authService); err != nil {
		log.Fatal().Err(err).Msg("failed to init register handler")
	}

	if err := ssohandler.Handler.Init(app, cfg, ssoClient); err != nil {
		log.Fatal().Err(err).Msg("failed to init sso handler")
	}

	// authenticated surface
	api := app.Group("", authmw.New(issuer))

	if err := profile.Handler.Init(api, cfg, db); err != nil {
		log.Fatal().Err(err).Msg("failed to init profile handler")
	}

	if err := character.Handler.Init(api, cfg, db, ssoClient); err != nil {
		log.Fatal().Err(err).Msg("failed to init character handler")
	}

	return service
}
