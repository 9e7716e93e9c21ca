package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashAndVerifyPassword(t *testing.T) {
	user := User{Password: HashPassword("super-secret")}

	assert.NotEqual(t, "super-secret", user.Password)
	assert.True(t, user.VerifyPassword("super-secret"))
	assert.False(t, user.VerifyPassword("wrong"))
}

func TestVerifyPasswordEmptyHash(t *testing.T) {
	user := User{}

	assert.False(t, user.VerifyPassword("anything"))
}

func TestAddGroup(t *testing.T) {
	user := User{}

	user.AddGroup(Group{Name: "pilots"})
	user.AddGroup(Group{Name: "pilots"})
	user.AddGroup(Group{Name: "officers"})

	assert.Len(t, user.Groups, 2)
	assert.True(t, user.HasGroup("pilots"))
	assert.True(t, user.HasGroup("officers"))
	assert.False(t, user.HasGroup("recruits"))
}

func TestAvatarURL(t *testing.T) {
	assert.Equal(t,
		"https://image.eveonline.com/Character/95465499_512.jpg",
		AvatarURL(95465499),
	)
}
