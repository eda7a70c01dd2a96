package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/conduit-lang/extmodel/metadata"
)

func TestTypeCatalog_References(t *testing.T) {
	car := metadata.Object("org.acme.Car").Field("id", metadata.String()).Build()
	other := metadata.Object("org.acme.Other").Build()
	anonymous := metadata.Object("").Build()

	c := NewTypeCatalog([]string{"org.acme.Car"})
	assert.True(t, c.IsEligible("org.acme.Car"))
	assert.False(t, c.IsEligible("org.acme.Other"))

	ref, ok := c.WriteReference(car)
	assert.True(t, ok)
	assert.Equal(t, "@ref:org.acme.Car", ref)
	assert.True(t, c.HasBeenWritten(car))

	_, ok = c.WriteReference(other)
	assert.False(t, ok, "types outside the catalog are inlined")
	_, ok = c.WriteReference(anonymous)
	assert.False(t, ok)

	c.RegisterType(other)
	assert.True(t, c.HasBeenWritten(other))
	c.RegisterType(anonymous)
	assert.False(t, c.HasBeenWritten(anonymous))
}

func TestTypeCatalog_ReadReference(t *testing.T) {
	car := metadata.Object("org.acme.Car").Build()
	c := NewTypeCatalog(nil)
	c.RegisterType(car)

	got, ok := c.ReadReference("@ref:org.acme.Car")
	assert.True(t, ok)
	assert.Same(t, car, got)

	for _, ref := range []string{"@ref:", "org.acme.Car", "@ref:org.acme.Missing", ""} {
		_, ok := c.ReadReference(ref)
		assert.False(t, ok, ref)
	}
}

func TestRecursionGuard(t *testing.T) {
	g := newRecursionGuard()
	assert.False(t, g.contains("a"))

	popOuter := g.push("a")
	popInner := g.push("a")
	assert.True(t, g.contains("a"))

	popInner()
	assert.True(t, g.contains("a"), "still inside the outer definition")
	popOuter()
	assert.False(t, g.contains("a"))
	assert.Empty(t, g.active)
}
