package colors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestColorFuncs verifies Reset leaves values untouched and colored values keep their text.
func TestColorFuncs(t *testing.T) {
	assert.Equal(t, "0x01", Reset("0x01"))
	assert.Equal(t, "42", Reset(42))

	for _, colorFunc := range []ColorFunc{Bold, GreenBold, CyanBold, BlueBold, YellowBold, RedBold} {
		assert.Contains(t, colorFunc("seed"), "seed")
	}
}
