package models

import "time"

// Group represents a directory group mirrored into local persistence.
// Groups are created lazily when the directory reports a name with no local
// counterpart and are never deleted (sync is additive only).
type Group struct {
	// ID is the unique identifier for the group.
	ID uint `gorm:"primaryKey"`
	// Name is the unique directory group name (cn).
	Name string `gorm:"unique;size:100;not null"`
	// Roles are the security roles granted through membership of this group.
	Roles []string `gorm:"serializer:json"`
	// CreatedAt is the timestamp when the group was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the group was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Group model.
func (Group) TableName() string {
	return "groups"
}
