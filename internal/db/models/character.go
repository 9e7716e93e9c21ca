package models

import (
	"fmt"
	"time"
)

// avatarURLFormat renders the EVE image server portrait URL for a character.
const avatarURLFormat = "https://image.eveonline.com/Character/%d_512.jpg"

// Character represents an EVE Online character linked to a user via the SSO
// flow. The external character id is globally unique: relinking an already
// known character moves it to the last user that completed the flow.
type Character struct {
	// ID is the unique identifier for the character row.
	ID uint64 `gorm:"primaryKey"`
	// CharacterID is the id of the character as issued by the EVE SSO.
	CharacterID int64 `gorm:"uniqueIndex;not null"`
	// CharacterName is the display name of the character.
	CharacterName string `gorm:"size:255;not null"`
	// Scopes are the ESI scopes granted during the SSO flow.
	Scopes []string `gorm:"serializer:json"`
	// TokenType is the token type reported by the SSO verify endpoint.
	TokenType string `gorm:"size:255"`
	// OwnerHash is a stable fingerprint identifying the character across
	// token refreshes; it changes when the character changes account owner.
	OwnerHash string `gorm:"size:255"`
	// RefreshToken is the SSO provider's refresh token for this character.
	RefreshToken string `gorm:"type:text"`
	// AccessToken is the SSO provider's last access token for this character.
	AccessToken string `gorm:"size:2048"`
	// Avatar is the portrait URL derived from the external character id.
	Avatar string `gorm:"size:2048"`
	// UserID is the owning user.
	UserID uint64 `gorm:"index;not null"`
	// User is the owning user; characters die with the user (CASCADE).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp when the character was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the character was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Character model.
func (Character) TableName() string {
	return "characters"
}

// AvatarURL returns the deterministic portrait URL for an external character id.
func AvatarURL(characterID int64) string {
	return fmt.Sprintf(avatarURLFormat, characterID)
}
