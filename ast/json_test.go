package ast

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramJSONRoundTripsRelationAndFact(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	r := NewRelation(NewQualifiedName("p"), []Attribute{{Name: "x", TypeName: NewQualifiedName("number")}}, nil)
	r.Qualifiers[QualInput] = true
	require.NoError(t, p.AddRelation(r))
	p.AddClause(NewFact(NewAtom(NewQualifiedName("p"), []Argument{NumConst("1", NumericInt)}, nil)))

	data, err := json.Marshal(p)
	require.NoError(t, err)

	got := NewProgram()
	require.NoError(t, json.Unmarshal(data, got))

	gotRel, ok := got.Relation(NewQualifiedName("p"))
	require.True(t, ok)
	assert.True(t, gotRel.HasQualifier(QualInput))
	assert.Equal(t, "x", gotRel.Concrete[0].Name)

	clauses := got.Clauses()
	require.Len(t, clauses, 1)
	assert.True(t, clauses[0].IsFact())
	assert.Equal(t, "1", clauses[0].Head.Concrete[0].String())
}

func TestProgramJSONRoundTripsRuleWithNegationAndConstraint(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	head := NewAtom(NewQualifiedName("out"), []Argument{Var("x")}, nil)
	c := NewRule(head,
		NewAtom(NewQualifiedName("p"), []Argument{Var("x"), Var("y")}, nil),
		Neg(NewAtom(NewQualifiedName("q"), []Argument{Var("x")}, nil)),
		BinOp("<=", Var("y"), NumConst("10", NumericInt)),
	)
	p.AddClause(c)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	got := NewProgram()
	require.NoError(t, json.Unmarshal(data, got))

	clauses := got.Clauses()
	require.Len(t, clauses, 1)
	require.Len(t, clauses[0].Body, 3)

	_, ok := clauses[0].Body[0].(Atom)
	assert.True(t, ok)

	neg, ok := clauses[0].Body[1].(Negation)
	require.True(t, ok)
	assert.Equal(t, "q", neg.Atom.Name.String())

	bc, ok := clauses[0].Body[2].(BinaryConstraint)
	require.True(t, ok)
	assert.Equal(t, "<=", bc.Op)
}

func TestProgramJSONRoundTripsRecordAndFunctorArguments(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	head := NewAtom(NewQualifiedName("out"), []Argument{Var("x")}, nil)
	c := NewRule(head,
		NewAtom(NewQualifiedName("p"), []Argument{
			Record(Var("a"), Var("b")),
			Functor(NewQualifiedName("f"), Var("a")),
			Intrinsic("+", Var("a"), NumConst("1", NumericInt)),
		}, nil),
	)
	p.AddClause(c)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	got := NewProgram()
	require.NoError(t, json.Unmarshal(data, got))

	args := got.Clauses()[0].Body[0].(Atom).Concrete
	rec, ok := args[0].(RecordInit)
	require.True(t, ok)
	assert.Len(t, rec.Args, 2)

	fn, ok := args[1].(UserFunctor)
	require.True(t, ok)
	assert.Equal(t, "f", fn.Name.String())

	intr, ok := args[2].(IntrinsicFunctor)
	require.True(t, ok)
	assert.Equal(t, "+", intr.Op)
}

func TestProgramJSONRoundTripsAggregator(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	agg := Agg("count", nil, NewAtom(NewQualifiedName("q"), []Argument{Var("x")}, nil))
	head := NewAtom(NewQualifiedName("out"), []Argument{Var("c")}, nil)
	p.AddClause(NewRule(head, BinOp("=", Var("c"), agg)))

	data, err := json.Marshal(p)
	require.NoError(t, err)

	got := NewProgram()
	require.NoError(t, json.Unmarshal(data, got))

	bc := got.Clauses()[0].Body[0].(BinaryConstraint)
	gotAgg, ok := bc.RHS.(Aggregator)
	require.True(t, ok)
	assert.Equal(t, "count", gotAgg.Op)
	assert.Nil(t, gotAgg.Target)
	require.Len(t, gotAgg.Body, 1)
	assert.Equal(t, "q", gotAgg.Body[0].(Atom).Name.String())
}

func TestProgramJSONRoundTripsLatticeAndPlan(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	p.Lattices = append(p.Lattices, NewLattice("minint",
		NewQualifiedName("number"), NewQualifiedName("leq"), NewQualifiedName("lub"),
		NewQualifiedName("glb"), NewQualifiedName("bot"), NewQualifiedName("top")))

	head := NewAtom(NewQualifiedName("out"), []Argument{Var("x")}, nil)
	c := NewRule(head,
		NewAtom(NewQualifiedName("p"), []Argument{Var("x"), Var("y")}, nil),
		NewAtom(NewQualifiedName("q"), []Argument{Var("x")}, nil),
	)
	c.Plan = map[int][]int{0: {1, 0}}
	p.AddClause(c)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	got := NewProgram()
	require.NoError(t, json.Unmarshal(data, got))

	require.Len(t, got.Lattices, 1)
	assert.Equal(t, "minint", got.Lattices[0].Name())
	assert.Equal(t, "number", got.Lattices[0].Base().String())

	gotClause := got.Clauses()[0]
	require.True(t, gotClause.HasPlan())
	assert.Equal(t, []int{1, 0}, gotClause.Plan[0])
}

func TestProgramJSONRoundTripsDirectives(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	require.NoError(t, p.AddDirective(IODirective{Kind: DirectiveLimitsize, Relation: NewQualifiedName("p"), Limit: 100}))

	data, err := json.Marshal(p)
	require.NoError(t, err)

	got := NewProgram()
	require.NoError(t, json.Unmarshal(data, got))

	require.Len(t, got.Directives, 1)
	assert.Equal(t, DirectiveLimitsize, got.Directives[0].Kind)
	assert.Equal(t, int64(100), got.Directives[0].Limit)
}
