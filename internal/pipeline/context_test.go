package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContext_Immutable(t *testing.T) {
	values := map[string]string{"a": "1"}
	ctx := NewContext(values)

	values["a"] = "changed"
	assert.Equal(t, "1", ctx.Get("a"))

	next := ctx.With("b", "2")
	_, ok := ctx.Lookup("b")
	assert.False(t, ok)
	assert.Equal(t, "2", next.Get("b"))
	assert.Equal(t, 1, ctx.Len())
	assert.Equal(t, 2, next.Len())
}

func TestContext_ZeroValue(t *testing.T) {
	var ctx Context

	_, ok := ctx.Lookup("a")
	assert.False(t, ok)
	assert.Equal(t, "", ctx.Get("a"))
	assert.Empty(t, ctx.Keys())
	assert.Equal(t, "1", ctx.With("a", "1").Get("a"))
}

func TestContext_Keys(t *testing.T) {
	ctx := NewContext(map[string]string{"b": "", "a": "", "c": ""})
	assert.Equal(t, []string{"a", "b", "c"}, ctx.Keys())
}
