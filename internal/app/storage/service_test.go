package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowedAvatarType(t *testing.T) {
	assert.True(t, IsAllowedAvatarType("image/jpeg"))
	assert.True(t, IsAllowedAvatarType("image/png"))
	assert.True(t, IsAllowedAvatarType("image/webp"))

	assert.False(t, IsAllowedAvatarType("image/gif"))
	assert.False(t, IsAllowedAvatarType("application/octet-stream"))
	assert.False(t, IsAllowedAvatarType(""))
}

func TestAvatarKeyShape(t *testing.T) {
	key := AvatarKey("user-1", "image/png")

	assert.True(t, strings.HasPrefix(key, "avatars/user-1/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	// Fresh keys so re-uploads never collide with cached objects.
	assert.NotEqual(t, key, AvatarKey("user-1", "image/png"))
}
