package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRolePrivileges(t *testing.T) {
	assert.True(t, RoleMod.IsPrivileged())
	assert.True(t, RoleAdmin.IsPrivileged())

	assert.False(t, RoleUser.IsPrivileged())
	assert.False(t, RoleStudent.IsPrivileged())
	assert.False(t, RoleProfessor.IsPrivileged())
}

func TestRoleIsValid(t *testing.T) {
	for _, role := range []Role{RoleUser, RoleStudent, RoleProfessor, RoleMod, RoleAdmin} {
		assert.True(t, role.IsValid(), "role %s", role)
	}
	assert.False(t, Role("superuser").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestPublicOmitsSensitiveFields(t *testing.T) {
	u := &User{
		ID:           "u1",
		Username:     "alice_w",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		DisplayName:  "Alice",
		ProfilePic:   "avatars/u1/a.png",
	}

	pub := u.Public()
	assert.Equal(t, "u1", pub.ID)
	assert.Equal(t, "Alice", pub.DisplayName)
	assert.Equal(t, "avatars/u1/a.png", pub.ProfilePic)
}

func TestIsActive(t *testing.T) {
	assert.True(t, (&User{AccountStatus: StatusActive}).IsActive())
	assert.False(t, (&User{AccountStatus: StatusBanned}).IsActive())
	assert.False(t, (&User{}).IsActive())
}
