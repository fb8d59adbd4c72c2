package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "perm:cases:user-1:*", Key("cases", "user-1", "*"))
	assert.Equal(t, "perm:", Key())
}
