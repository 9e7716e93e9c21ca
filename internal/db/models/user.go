package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// RoleUser is the role every member receives on first login.
const RoleUser = "ROLE_USER"

// User represents a member account in the system.
// Accounts are materialized lazily on the first successful directory login;
// registration only creates the directory entry.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Enabled indicates whether the account may log in.
	Enabled bool
	// Username is the unique directory username.
	Username string `gorm:"unique;size:100;not null"`
	// Email is the user's email address as read from the directory.
	Email string `gorm:"unique;size:255;not null"`
	// Password is an Argon2id hash of the directory password captured at first
	// login. It exists for display and administrative purposes only; it is
	// never consulted during authentication (the directory is).
	Password string `gorm:"size:255"`
	// Roles are the security roles assigned directly to this user.
	Roles []string `gorm:"serializer:json"`
	// LastLogin is set on every successful login.
	LastLogin *time.Time
	// Groups are the directory groups this user belongs to.
	Groups []Group `gorm:"many2many:user_groups"`
	// Characters are the EVE characters linked to this user via SSO.
	Characters []Character `gorm:"foreignKey:UserID"`
	// RefreshToken is the user's single long-lived refresh token, if any.
	RefreshToken *RefreshToken `gorm:"foreignKey:UserID"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the stored hash.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}

// HasGroup reports whether the user already carries the named group.
func (u *User) HasGroup(name string) bool {
	for _, g := range u.Groups {
		if g.Name == name {
			return true
		}
	}

	return false
}

// AddGroup attaches a group to the user with set semantics: attaching a
// group the user already has is a no-op.
func (u *User) AddGroup(group Group) {
	if u.HasGroup(group.Name) {
		return
	}

	u.Groups = append(u.Groups, group)
}
