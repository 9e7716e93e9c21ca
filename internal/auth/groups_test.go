package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/house-aratus/membership-api/internal/db/models"
)

func TestSyncCreatesAndAttachesGroups(t *testing.T) {
	db := newTestDB(t)
	sync := NewGroupSynchronizer(db)
	user := seedUser(t, db, "jdoe")

	created, err := sync.Sync(user, []string{"pilots", "officers"})
	require.NoError(t, err)
	require.Len(t, created, 2)

	assert.Equal(t, int64(2), countRows(t, db, &models.Group{}))
	assert.Equal(t, int64(2), countRows(t, db, &models.UserGroup{}))

	assert.True(t, user.HasGroup("pilots"))
	assert.True(t, user.HasGroup("officers"))
}

func TestSyncReusesExistingGroups(t *testing.T) {
	db := newTestDB(t)
	sync := NewGroupSynchronizer(db)
	user := seedUser(t, db, "jdoe")

	existing := models.Group{Name: "pilots"}
	require.NoError(t, db.Create(&existing).Error)

	created, err := sync.Sync(user, []string{"pilots", "officers"})
	require.NoError(t, err)

	// Only the group without a local counterpart gets created.
	require.Len(t, created, 1)
	assert.Equal(t, "officers", created[0].Name)
	assert.Equal(t, int64(2), countRows(t, db, &models.Group{}))
}

func TestSyncIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	sync := NewGroupSynchronizer(db)
	user := seedUser(t, db, "jdoe")

	_, err := sync.Sync(user, []string{"pilots"})
	require.NoError(t, err)

	created, err := sync.Sync(user, []string{"pilots"})
	require.NoError(t, err)

	assert.Empty(t, created)
	assert.Equal(t, int64(1), countRows(t, db, &models.Group{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.UserGroup{}))
}

func TestSyncIsAdditiveOnly(t *testing.T) {
	db := newTestDB(t)
	sync := NewGroupSynchronizer(db)
	user := seedUser(t, db, "jdoe")

	_, err := sync.Sync(user, []string{"pilots", "officers"})
	require.NoError(t, err)

	// The directory no longer reports officers; the local membership stays.
	_, err = sync.Sync(user, []string{"pilots"})
	require.NoError(t, err)

	assert.Equal(t, int64(2), countRows(t, db, &models.UserGroup{}))
}

func TestSyncSharedGroupAcrossUsers(t *testing.T) {
	db := newTestDB(t)
	sync := NewGroupSynchronizer(db)
	first := seedUser(t, db, "jdoe")
	second := seedUser(t, db, "asmith")

	_, err := sync.Sync(first, []string{"pilots"})
	require.NoError(t, err)

	created, err := sync.Sync(second, []string{"pilots"})
	require.NoError(t, err)

	assert.Empty(t, created)
	assert.Equal(t, int64(1), countRows(t, db, &models.Group{}))
	assert.Equal(t, int64(2), countRows(t, db, &models.UserGroup{}))
}
