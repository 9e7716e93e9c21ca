package models

import "time"

// RefreshToken is a user's single long-lived refresh token. The unique index
// on UserID enforces the one-row-per-user invariant at the data layer, not
// just in application logic: a concurrent second insert fails instead of
// producing a second live token.
type RefreshToken struct {
	// ID is the unique identifier for the token row.
	ID uint64 `gorm:"primaryKey"`
	// Token is the token value presented by clients on refresh.
	Token string `gorm:"uniqueIndex;size:512;not null"`
	// ValidUntil is the instant the token expires. The token is accepted
	// through this instant inclusive and rejected strictly after it.
	ValidUntil time.Time `gorm:"not null"`
	// UserID is the owning user; exactly one token per user.
	UserID uint64 `gorm:"uniqueIndex;not null"`
	// User is the owning user; the token dies with the user (CASCADE).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp when the row was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp of the last rotation (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the RefreshToken model.
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}
