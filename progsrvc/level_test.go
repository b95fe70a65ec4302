package progsrvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFromXp(t *testing.T) {
	assert.Equal(t, 1, Level(0))
	assert.Equal(t, 1, Level(99))
	assert.Equal(t, 2, Level(100))
	assert.Equal(t, 2, Level(399))
	assert.Equal(t, 3, Level(400))
	assert.Equal(t, 3, Level(899))
	assert.Equal(t, 4, Level(900))
}

func TestLevelNegativeXpClampsToOne(t *testing.T) {
	assert.Equal(t, 1, Level(-50))
}

func TestXpForLevelIsInverse(t *testing.T) {
	assert.Equal(t, 0, XpForLevel(1))
	assert.Equal(t, 100, XpForLevel(2))
	assert.Equal(t, 400, XpForLevel(3))
	assert.Equal(t, 900, XpForLevel(4))

	for level := 1; level <= 10; level++ {
		assert.Equal(t, level, Level(XpForLevel(level)), "level %d threshold", level)
		if level > 1 {
			assert.Equal(t, level-1, Level(XpForLevel(level)-1), "just below level %d", level)
		}
	}
}
