package daemon

import (
	"fmt"

	"github.com/gofiber/storage/memory/v2"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/house-aratus/membership-api/internal/auth"
	"github.com/house-aratus/membership-api/internal/config"
	"github.com/house-aratus/membership-api/internal/db/dsn"
	"github.com/house-aratus/membership-api/internal/db/models"
	"github.com/house-aratus/membership-api/internal/directory"
	"github.com/house-aratus/membership-api/internal/web"
	"github.com/house-aratus/membership-api/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	addr       string
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until shutdown.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(d.addr)
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	dbDriver := gormmysql.Open(dsn.Create(cfg)) // open db with gorm mysql driver

	db, err := gorm.Open(dbDriver, &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	if err = db.SetupJoinTable(&models.User{}, "Groups", &models.UserGroup{}); err != nil {
		log.Fatal().Err(err).Msg("failed to set up join table")
	}

	if err = db.AutoMigrate(
		&models.Group{},
		&models.User{},
		&models.UserGroup{},
		&models.Character{},
		&models.RefreshToken{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	seed(cfg, db)

	// Pending SSO states live in process memory; a restart aborts any flow
	// that is mid-flight, which is acceptable for a short-lived state.
	stateTTL := cfg.Auth.Sso.StateTTL
	if stateTTL == 0 {
		stateTTL = config.DefaultStateTTL
	}

	states := session.NewStateStore(memory.New(), stateTTL)

	dirClient := directory.NewClient(&directory.Config{
		Host:         cfg.Auth.Directory.Host,
		Port:         cfg.Auth.Directory.Port,
		UseSSL:       cfg.Auth.Directory.UseSSL,
		UseTLS:       cfg.Auth.Directory.UseTLS,
		SkipVerify:   cfg.Auth.Directory.SkipVerify,
		BindDN:       cfg.Auth.Directory.BindDN,
		BindPassword: cfg.Auth.Directory.BindPassword,
		PeopleBranch: cfg.Auth.Directory.PeopleBranch,
		GroupBranch:  cfg.Auth.Directory.GroupBranch,
		MemberGroup:  cfg.Auth.Directory.MemberGroup,
		Timeout:      cfg.Auth.Directory.Timeout,
	})

	issuer := auth.NewTokenIssuer(cfg.Auth.JWT)
	authService := auth.NewService(db, dirClient, issuer)
	ssoClient := auth.NewSsoClient(cfg.Auth.Sso, states, db)

	return &Daemon{
		addr:       fmt.Sprintf(":%d", cfg.Webserver.Port),
		webService: web.New(cfg, db, authService, ssoClient, issuer),
	}
}
