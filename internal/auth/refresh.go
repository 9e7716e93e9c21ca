package auth

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/house-aratus/membership-api/internal/db/models"
)

// RefreshTokenStore persists the single long-lived refresh token per user.
type RefreshTokenStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRefreshTokenStore creates a refresh token store on the given database.
func NewRefreshTokenStore(db *gorm.DB) *RefreshTokenStore {
	return &RefreshTokenStore{db: db, now: time.Now}
}

// Rotate overwrites the user's refresh token value and validity, creating
// the row if the user has none yet. Validity is one month from the moment
// of rotation. The write is one transaction and the unique index on
// user_id keeps a concurrent rotation from producing a second row.
func (s *RefreshTokenStore) Rotate(user *models.User, value string) (*models.RefreshToken, error) {
	var token models.RefreshToken

	err := s.db.Transaction(func(tx *gorm.DB) error {
		errFind := tx.Where("user_id = ?", user.ID).First(&token).Error

		switch {
		case errors.Is(errFind, gorm.ErrRecordNotFound):
			token = models.RefreshToken{UserID: user.ID}
		case errFind != nil:
			return fmt.Errorf("failed to query refresh token: %w", errFind)
		}

		token.Token = value
		token.ValidUntil = s.now().AddDate(0, 1, 0)

		if errSave := tx.Save(&token).Error; errSave != nil {
			return fmt.Errorf("failed to save refresh token: %w", errSave)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &token, nil
}

// Validate resolves a refresh token value to its owning user. An unknown
// value yields ErrTokenNotFound; a known but expired one yields
// ErrInvalidToken. A token is accepted through its ValidUntil instant
// inclusive and rejected strictly after it.
func (s *RefreshTokenStore) Validate(value string) (*models.User, error) {
	var token models.RefreshToken

	err := s.db.Preload("User").Preload("User.Groups").
		Where("token = ?", value).
		First(&token).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTokenNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query refresh token: %w", err)
	}

	if s.now().After(token.ValidUntil) {
		return nil, ErrInvalidToken
	}

	return &token.User, nil
}
