package daemon

import (
	"gorm.io/gorm"

	"github.com/house-aratus/membership-api/internal/config"
	"github.com/house-aratus/membership-api/internal/db/models"
)

func seed(cfg *config.Config, db *gorm.DB) {
	// Seed the canonical member group if the group table is empty. User
	// rows are never seeded; they materialize on the first directory login.

	name := cfg.Auth.Directory.MemberGroup
	if name == "" {
		name = "harat-users"
	}

	var count int64
	db.Model(&models.Group{}).Count(&count)

	if count == 0 {
		db.Create(
			&models.Group{
				Name:  name,
				Roles: []string{models.RoleUser},
			},
		)
	}
}
