package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/house-aratus/membership-api/internal/db/models"
	"github.com/house-aratus/membership-api/internal/directory"
)

// Directory is the set of directory operations the service depends on.
type Directory interface {
	// Authenticate binds with the member's credentials and returns the
	// person entry including its group names.
	Authenticate(username, password string) (*directory.UserEntry, error)
	// EnsureGroupMember idempotently adds the member to the canonical group.
	EnsureGroupMember(username string) error
	// CreateUser creates a new person entry under the people branch.
	CreateUser(email, username, password string) error
}

// Service orchestrates the login, refresh and register flows.
type Service struct {
	db      *gorm.DB
	dir     Directory
	issuer  *TokenIssuer
	refresh *RefreshTokenStore
}

// NewService creates the authentication service with its collaborators.
func NewService(db *gorm.DB, dir Directory, issuer *TokenIssuer) *Service {
	return &Service{
		db:      db,
		dir:     dir,
		issuer:  issuer,
		refresh: NewRefreshTokenStore(db),
	}
}

// Login authenticates the member against the directory, mirrors group
// memberships, persists the user and returns a signed access token. The
// same token value is stored as the user's refresh token, replacing any
// previous one.
//
// Every inner failure is collapsed into ErrAuthenticationFailed towards the
// caller; the cause stays wrapped and is logged here.
func (s *Service) Login(username, password string) (string, error) {
	entry, err := s.dir.Authenticate(username, password)
	if err != nil {
		log.Warn().Err(err).Str("username", username).Msg("directory authentication failed")

		return "", fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}

	token, err := s.completeLogin(entry, password)
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("login flow failed")

		return "", fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}

	return token, nil
}

// completeLogin runs the post-bind part of the login flow: canonical group
// membership, group sync, user persistence and token issuance.
//
// Everything touching the database runs in one transaction: a failure in
// group sync, the user save or the refresh rotation rolls the whole login
// back, so a first login can never leave a persisted user without its
// group memberships.
func (s *Service) completeLogin(entry *directory.UserEntry, password string) (string, error) {
	if err := s.dir.EnsureGroupMember(entry.Username); err != nil {
		return "", err
	}

	var token string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		user, errTx := s.materializeUser(tx, entry, password)
		if errTx != nil {
			return errTx
		}

		if _, errTx = NewGroupSynchronizer(tx).Sync(user, entry.Groups); errTx != nil {
			return errTx
		}

		now := time.Now()
		user.LastLogin = &now

		if errTx = tx.Omit(clause.Associations).Save(user).Error; errTx != nil {
			return fmt.Errorf("failed to save user: %w", errTx)
		}

		if token, errTx = s.issuer.Issue(user); errTx != nil {
			return errTx
		}

		_, errTx = NewRefreshTokenStore(tx).Rotate(user, token)

		return errTx
	})
	if err != nil {
		return "", err
	}

	return token, nil
}

// materializeUser loads the local user for a directory entry, creating it
// on first login. The directory password is never stored; only a local
// Argon2id hash derived here, kept for display and administrative purposes.
func (s *Service) materializeUser(tx *gorm.DB, entry *directory.UserEntry, password string) (*models.User, error) {
	var user models.User

	err := tx.Preload("Groups").Where("username = ?", entry.Username).First(&user).Error
	if err == nil {
		return &user, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	user = models.User{
		Enabled:  true,
		Username: entry.Username,
		Email:    entry.Email,
		Password: models.HashPassword(password),
		Roles:    []string{models.RoleUser},
	}

	if errCreate := tx.Create(&user).Error; errCreate != nil {
		return nil, fmt.Errorf("failed to create user: %w", errCreate)
	}

	return &user, nil
}

// Refresh exchanges a valid refresh token for a new access token and
// rotates the stored refresh token to the new value.
func (s *Service) Refresh(tokenString string) (string, error) {
	user, err := s.refresh.Validate(tokenString)
	if err != nil {
		return "", err
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if _, err = s.refresh.Rotate(user, token); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return token, nil
}

// Register creates a new member entry in the directory. No local user row
// is created here; it is materialized lazily on the first login.
func (s *Service) Register(email, username, password string) error {
	if err := s.dir.CreateUser(email, username, password); err != nil {
		log.Error().Err(err).Str("username", username).Msg("directory registration failed")

		return fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	return nil
}
