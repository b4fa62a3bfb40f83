package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgramAddRelationRejectsDuplicateName(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	r1 := NewRelation(rel("edge"), []Attribute{{Name: "x", TypeName: rel("number")}}, nil)
	r2 := NewRelation(rel("edge"), []Attribute{{Name: "y", TypeName: rel("number")}}, nil)

	assert.NoError(t, p.AddRelation(r1))
	err := p.AddRelation(r2)
	assert.Error(t, err)

	got, ok := p.Relation(rel("edge"))
	assert.True(t, ok)
	assert.Same(t, r1, got, "the first declaration must win")
}

func TestProgramRelationsPreservesDeclarationOrder(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	names := []string{"c", "a", "b"}
	for _, n := range names {
		assert.NoError(t, p.AddRelation(NewRelation(rel(n), nil, nil)))
	}

	got := p.Relations()
	assert.Len(t, got, 3)
	for i, n := range names {
		assert.Equal(t, n, got[i].Name.String())
	}
}

func TestProgramRemoveRelation(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	assert.NoError(t, p.AddRelation(NewRelation(rel("a"), nil, nil)))
	assert.NoError(t, p.AddRelation(NewRelation(rel("b"), nil, nil)))

	p.RemoveRelation(rel("a"))

	_, ok := p.Relation(rel("a"))
	assert.False(t, ok)
	assert.Len(t, p.Relations(), 1)
	assert.Equal(t, "b", p.Relations()[0].Name.String())
}

func TestProgramClausesForRelation(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	c1 := NewRule(NewAtom(rel("reach"), []Argument{Var("x")}, nil), NewAtom(rel("edge"), []Argument{Var("x")}, nil))
	c2 := NewFact(NewAtom(rel("edge"), []Argument{StrConst("a")}, nil))
	c3 := NewRule(NewAtom(rel("reach"), []Argument{Var("y")}, nil), NewAtom(rel("edge"), []Argument{Var("y")}, nil))

	p.AddClause(c1)
	p.AddClause(c2)
	p.AddClause(c3)

	reachClauses := p.ClausesForRelation(rel("reach"))
	assert.Len(t, reachClauses, 2)
	assert.Same(t, c1, reachClauses[0])
	assert.Same(t, c3, reachClauses[1])
}

func TestProgramAddDirectiveRejectsDuplicatePrintsize(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	err := p.AddDirective(IODirective{Kind: DirectivePrintsize, Relation: rel("out")})
	assert.NoError(t, err)

	err = p.AddDirective(IODirective{Kind: DirectivePrintsize, Relation: rel("out")})
	assert.Error(t, err)
}

func TestProgramAddDirectiveRejectsDuplicateLimitsize(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	assert.NoError(t, p.AddDirective(IODirective{Kind: DirectiveLimitsize, Relation: rel("out"), Limit: 10}))
	assert.Error(t, p.AddDirective(IODirective{Kind: DirectiveLimitsize, Relation: rel("out"), Limit: 20}))
}

func TestProgramAddDirectiveAllowsMultipleInputOutput(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	assert.NoError(t, p.AddDirective(IODirective{Kind: DirectiveInput, Relation: rel("a")}))
	assert.NoError(t, p.AddDirective(IODirective{Kind: DirectiveOutput, Relation: rel("a")}))
	assert.Len(t, p.Directives, 2)
}

func TestProgramAddDirectiveAllowsPrintsizeAcrossDifferentRelations(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	assert.NoError(t, p.AddDirective(IODirective{Kind: DirectivePrintsize, Relation: rel("a")}))
	assert.NoError(t, p.AddDirective(IODirective{Kind: DirectivePrintsize, Relation: rel("b")}))
}

func TestProgramRewriteAtomNamesRewritesHeadAndBody(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	head := NewAtom(rel("old"), []Argument{Var("x")}, nil)
	body := NewAtom(rel("old"), []Argument{Var("x")}, nil)
	c := NewRule(head, body)
	p.AddClause(c)

	p.RewriteAtomNames(map[string]QualifiedName{"old": rel("canonical")})

	assert.Equal(t, "canonical", c.Head.Name.String())
	assert.Equal(t, "canonical", c.Body[0].(Atom).Name.String())
}

func TestProgramRewriteAtomNamesLeavesUnmappedNamesAlone(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	c := NewFact(NewAtom(rel("keep"), []Argument{StrConst("x")}, nil))
	p.AddClause(c)

	p.RewriteAtomNames(map[string]QualifiedName{"old": rel("canonical")})

	assert.Equal(t, "keep", c.Head.Name.String())
}

func TestProgramHasQualifiedPrefix(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	assert.NoError(t, p.AddRelation(NewRelation(NewQualifiedName("comp", "a", "edge"), nil, nil)))

	assert.True(t, p.HasQualifiedPrefix(NewQualifiedName("comp", "a")))
	assert.False(t, p.HasQualifiedPrefix(NewQualifiedName("comp", "b")))
}

func TestProgramRewriteAtomNamesReachesIntoAggregatorBody(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	inner := NewAtom(rel("old"), []Argument{Var("x")}, nil)
	agg := Agg("count", nil, inner)
	head := NewAtom(rel("total"), []Argument{agg}, nil)
	c := NewFact(head)
	p.AddClause(c)

	p.RewriteAtomNames(map[string]QualifiedName{"old": rel("canonical")})

	rewrittenAgg := c.Head.Concrete[0].(Aggregator)
	assert.Equal(t, "canonical", rewrittenAgg.Body[0].(Atom).Name.String())
}
