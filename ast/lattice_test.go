package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatticeAccessorsAndImmutability(t *testing.T) {
	t.Parallel()

	base := rel("Weight")
	leq := rel("leq")
	l := NewLattice("MinWeight", base, leq, rel("lub"), rel("glb"), rel("bot"), rel("top"))

	assert.Equal(t, "MinWeight", l.Name())
	assert.True(t, l.Base().Equal(base))
	assert.True(t, l.Leq().Equal(leq))

	base[0] = "mutated"
	assert.Equal(t, "Weight", l.Base().String(), "NewLattice must clone its QualifiedName arguments")
}

func TestLatticeString(t *testing.T) {
	t.Parallel()

	l := NewLattice("W", rel("Weight"), rel("leq"), rel("lub"), rel("glb"), rel("bot"), rel("top"))
	assert.Equal(t, ".lattice W <Weight, leq, lub, glb, bot, top>", l.String())
}
