package formula

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConditionals(t *testing.T) {
	assert.Equal(t, "yes", If(true, "yes", "no"))
	assert.Equal(t, "no", If("", "yes", "no"))
	assert.Equal(t, "yes", If(1.0, "yes", "no"))
	assert.Equal(t, "no", If(0, "yes", "no"))

	assert.Equal(t, "fallback", IfError(nil, "fallback"))
	assert.Equal(t, "fallback", IfError(math.NaN(), "fallback"))
	assert.Equal(t, 3.0, IfError(3.0, "fallback"))

	assert.Equal(t, "second", Ifs(false, "first", true, "second", true, "third"))
	assert.Nil(t, Ifs(false, "first"))
	assert.Nil(t, Ifs(true))

	assert.Equal(t, "two", Switch(2, 1, "one", 2.0, "two"))
	assert.Equal(t, "other", Switch("x", "a", "A", "other"))
	assert.Nil(t, Switch("x", "a", "A"))
	assert.Equal(t, "B", Switch("01", "1", "A", "01", "B"))

	assert.Equal(t, "b", Choose(2, "a", "b", "c"))
	assert.Nil(t, Choose(0, "a"))
	assert.Nil(t, Choose(4, "a"))
}

func TestLogic(t *testing.T) {
	assert.True(t, And(true, 1, "x"))
	assert.False(t, And(true, 0))
	assert.True(t, And())
	assert.True(t, Or(false, "y"))
	assert.False(t, Or())
	assert.True(t, Not(false))
	assert.True(t, Xor(true, false, false))
	assert.False(t, Xor(true, true))
	assert.True(t, Xor(true, true, true))
	assert.False(t, truthy([]any{}))
	assert.True(t, truthy(map[string]any{"k": 1}))
}
