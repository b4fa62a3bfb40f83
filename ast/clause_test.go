package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClauseIsFact(t *testing.T) {
	t.Parallel()

	fact := NewFact(NewAtom(rel("base"), []Argument{StrConst("a")}, nil))
	rule := NewRule(NewAtom(rel("derived"), []Argument{Var("x")}, nil),
		NewAtom(rel("base"), []Argument{Var("x")}, nil))

	assert.True(t, fact.IsFact())
	assert.False(t, rule.IsFact())
}

func TestClauseHasPlan(t *testing.T) {
	t.Parallel()

	c := NewRule(NewAtom(rel("r"), nil, nil))
	assert.False(t, c.HasPlan())

	c.Plan = map[int][]int{0: {1, 0}}
	assert.True(t, c.HasPlan())
}

func TestClauseCloneIsIndependent(t *testing.T) {
	t.Parallel()

	original := NewRule(
		NewAtom(rel("derived"), []Argument{Var("x")}, nil),
		NewAtom(rel("base"), []Argument{Var("x")}, nil),
	)
	original.Plan = map[int][]int{0: {0}}

	clone := original.Clone()
	clone.Body[0] = NewAtom(rel("other"), []Argument{Var("y")}, nil)
	clone.Plan[0][0] = 99

	assert.True(t, LiteralsEqual(original.Body[0], NewAtom(rel("base"), []Argument{Var("x")}, nil)))
	assert.Equal(t, []int{0}, original.Plan[0])
}

func TestClauseWithBodyDoesNotMutateOriginal(t *testing.T) {
	t.Parallel()

	head := NewAtom(rel("derived"), []Argument{Var("x"), Var("y")}, nil)
	a := NewAtom(rel("a"), []Argument{Var("x")}, nil)
	b := NewAtom(rel("b"), []Argument{Var("y")}, nil)
	original := NewRule(head, a, b)

	reordered := original.WithBody([]Literal{b, a})

	assert.True(t, LiteralsEqual(original.Body[0], a))
	assert.True(t, LiteralsEqual(reordered.Body[0], b))
}

func TestClauseBodyAtomsSkipsNonAtoms(t *testing.T) {
	t.Parallel()

	head := NewAtom(rel("derived"), []Argument{Var("x")}, nil)
	a := NewAtom(rel("a"), []Argument{Var("x")}, nil)
	neg := Neg(NewAtom(rel("excluded"), []Argument{Var("x")}, nil))
	constraint := BinOp("!=", Var("x"), NumConst("0", NumericInt))
	b := NewAtom(rel("b"), []Argument{Var("x")}, nil)

	c := NewRule(head, a, neg, constraint, b)

	indices, atoms := c.BodyAtoms()
	assert.Equal(t, []int{0, 3}, indices)
	assert.Len(t, atoms, 2)
	assert.True(t, LiteralsEqual(atoms[0], a))
	assert.True(t, LiteralsEqual(atoms[1], b))
}

func TestClauseStringRendersRuleSeparator(t *testing.T) {
	t.Parallel()

	head := NewAtom(rel("derived"), []Argument{Var("x")}, nil)
	body := NewAtom(rel("base"), []Argument{Var("x")}, nil)
	c := NewRule(head, body)

	assert.Equal(t, "derived(x) :- base(x).", c.String())
}
