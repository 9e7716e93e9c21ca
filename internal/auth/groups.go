package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/house-aratus/membership-api/internal/db/models"
)

// GroupSynchronizer reconciles directory group names against locally
// persisted groups. Sync is additive only: groups the directory no longer
// reports stay attached locally.
type GroupSynchronizer struct {
	db *gorm.DB
}

// NewGroupSynchronizer creates a group synchronizer on the given database.
func NewGroupSynchronizer(db *gorm.DB) *GroupSynchronizer {
	return &GroupSynchronizer{db: db}
}

// Sync creates a local group for every directory group name that has no
// counterpart yet and attaches every reported group to the user. The join
// table's composite key makes re-attaching an existing membership a no-op,
// so calling Sync twice with an unchanged directory set changes nothing.
// It returns the groups that were newly created.
func (s *GroupSynchronizer) Sync(user *models.User, directoryGroups []string) ([]models.Group, error) {
	var created []models.Group

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, name := range directoryGroups {
			var group models.Group

			errFind := tx.Where("name = ?", name).First(&group).Error

			switch {
			case errFind == nil:
				// exists
			case errors.Is(errFind, gorm.ErrRecordNotFound):
				group = models.Group{Name: name}
				if errCreate := tx.Create(&group).Error; errCreate != nil {
					return fmt.Errorf("failed to create group %s: %w", name, errCreate)
				}

				created = append(created, group)
			default:
				return fmt.Errorf("failed to query group %s: %w", name, errFind)
			}

			if errAttach := attachGroup(tx, user, group); errAttach != nil {
				return errAttach
			}

			user.AddGroup(group)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// attachGroup inserts the membership row unless it already exists.
func attachGroup(tx *gorm.DB, user *models.User, group models.Group) error {
	membership := models.UserGroup{UserID: user.ID, GroupID: group.ID}

	err := tx.Where("user_id = ? AND group_id = ?", user.ID, group.ID).
		FirstOrCreate(&membership).Error
	if err != nil {
		return fmt.Errorf("failed to attach group %s: %w", group.Name, err)
	}

	return nil
}
