package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/house-aratus/membership-api/internal/db/models"
)

func TestRotateAndValidate(t *testing.T) {
	db := newTestDB(t)
	store := NewRefreshTokenStore(db)
	user := seedUser(t, db, "jdoe")

	token, err := store.Rotate(user, "value-one")
	require.NoError(t, err)
	assert.Equal(t, "value-one", token.Token)
	assert.Equal(t, user.ID, token.UserID)

	resolved, err := store.Validate("value-one")
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
	assert.Equal(t, "jdoe", resolved.Username)
}

func TestRotateKeepsSingleRowPerUser(t *testing.T) {
	db := newTestDB(t)
	store := NewRefreshTokenStore(db)
	user := seedUser(t, db, "jdoe")

	for _, value := range []string{"one", "two", "three"} {
		_, err := store.Rotate(user, value)
		require.NoError(t, err)
	}

	assert.Equal(t, int64(1), countRows(t, db, &models.RefreshToken{}))

	// Only the latest value resolves.
	_, err := store.Validate("two")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	_, err = store.Validate("three")
	assert.NoError(t, err)
}

func TestValidateUnknownToken(t *testing.T) {
	db := newTestDB(t)
	store := NewRefreshTokenStore(db)

	_, err := store.Validate("never-issued")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestValidateExpiredToken(t *testing.T) {
	db := newTestDB(t)
	store := NewRefreshTokenStore(db)
	user := seedUser(t, db, "jdoe")

	issued := time.Now()
	store.now = func() time.Time { return issued }

	_, err := store.Rotate(user, "stale")
	require.NoError(t, err)

	store.now = func() time.Time { return issued.AddDate(0, 1, 0).Add(time.Second) }

	_, err = store.Validate("stale")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAcceptsTokenAtExpiryInstant(t *testing.T) {
	db := newTestDB(t)
	store := NewRefreshTokenStore(db)
	user := seedUser(t, db, "jdoe")

	issued := time.Now()
	store.now = func() time.Time { return issued }

	token, err := store.Rotate(user, "boundary")
	require.NoError(t, err)

	store.now = func() time.Time { return token.ValidUntil }

	_, err = store.Validate("boundary")
	assert.NoError(t, err)
}

func TestValidatePreloadsGroups(t *testing.T) {
	db := newTestDB(t)
	store := NewRefreshTokenStore(db)
	user := seedUser(t, db, "jdoe")

	group := models.Group{Name: "pilots"}
	require.NoError(t, db.Create(&group).Error)
	require.NoError(t, db.Create(&models.UserGroup{UserID: user.ID, GroupID: group.ID}).Error)

	_, err := store.Rotate(user, "with-groups")
	require.NoError(t, err)

	resolved, err := store.Validate("with-groups")
	require.NoError(t, err)
	require.Len(t, resolved.Groups, 1)
	assert.Equal(t, "pilots", resolved.Groups[0].Name)
}
