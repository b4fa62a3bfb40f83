package ram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlogc/dlc/ast"
	"github.com/dlogc/dlc/internal/collab"
	"github.com/dlogc/dlc/internal/config"
)

func atom(name string, args ...ast.Argument) ast.Atom {
	return ast.NewAtom(ast.NewQualifiedName(name), args, nil)
}

func TestLowerFactProjectsConstants(t *testing.T) {
	t.Parallel()

	c := ast.NewFact(atom("p", ast.NumConst("1", ast.NumericInt), ast.NumConst("2", ast.NumericInt)))
	q, err := Lower(c, config.Default(), collab.Set{})
	require.NoError(t, err)

	proj, ok := q.Root.(Project)
	require.True(t, ok)
	assert.Equal(t, "p", proj.Into.Name)
	assert.Equal(t, "1", proj.Concrete[0].String())
	assert.Equal(t, "2", proj.Concrete[1].String())
}

func TestLowerRuleScansEachAtomAndUnifiesSharedVariable(t *testing.T) {
	t.Parallel()

	c := ast.NewRule(atom("out", ast.Var("x")),
		atom("p", ast.Var("x"), ast.Var("y")),
		atom("q", ast.Var("y")),
	)
	q, err := Lower(c, config.Default(), collab.Set{})
	require.NoError(t, err)

	s := q.String()
	assert.Contains(t, s, "SCAN p AS t0")
	assert.Contains(t, s, "SCAN q AS t1")
	assert.Contains(t, s, "t0.t1 = t1.t0")
	assert.Contains(t, s, "PROJECT (t0.t0)")
}

func TestLowerNegationBecomesNegatedExistenceCheck(t *testing.T) {
	t.Parallel()

	c := ast.NewRule(atom("out", ast.Var("x")),
		atom("p", ast.Var("x")),
		ast.Neg(atom("q", ast.Var("x"))),
	)
	q, err := Lower(c, config.Default(), collab.Set{})
	require.NoError(t, err)

	s := q.String()
	assert.Contains(t, s, "NOT EXISTS q(t0.t0)")
}

func TestLowerRecordArgumentUnpacks(t *testing.T) {
	t.Parallel()

	c := ast.NewRule(atom("out", ast.Var("x")),
		atom("p", ast.Record(ast.Var("x"), ast.Var("y"))),
	)
	q, err := Lower(c, config.Default(), collab.Set{})
	require.NoError(t, err)

	s := q.String()
	assert.Contains(t, s, "UNPACK t0.t0 ARITY 2 AS t1")
	assert.Contains(t, s, "PROJECT (t1.t0)")
}

func TestLowerConstantArgumentTriggersIndexScan(t *testing.T) {
	t.Parallel()

	c := ast.NewRule(atom("out", ast.Var("x")),
		atom("p", ast.Var("x"), ast.StrConst("foo")),
	)
	q, err := Lower(c, config.Default(), collab.Set{})
	require.NoError(t, err)

	s := q.String()
	assert.Contains(t, s, "INDEXSCAN p(t0.t0,")
	assert.NotContains(t, s, "SCAN p AS t0")
}

func TestLowerAggregatorBecomesAggregateOperation(t *testing.T) {
	t.Parallel()

	agg := ast.Agg("count", nil, atom("q", ast.Var("x"), ast.Var("y")))
	c := ast.NewRule(atom("out", ast.Var("x"), ast.Var("c")),
		atom("p", ast.Var("x")),
		ast.BinOp("=", ast.Var("c"), agg),
	)
	q, err := Lower(c, config.Default(), collab.Set{})
	require.NoError(t, err)

	s := q.String()
	assert.Contains(t, s, "AGGREGATE t1 = count OVER q")
	assert.Contains(t, s, "SCAN p AS t0")
}

func TestLowerAggregatorBodyWithMoreThanOneAtomIsRejected(t *testing.T) {
	t.Parallel()

	agg := ast.Agg("count", nil, atom("q", ast.Var("x")), atom("r", ast.Var("x")))
	c := ast.NewRule(atom("out", ast.Var("c")),
		ast.BinOp("=", ast.Var("c"), agg),
	)
	_, err := Lower(c, config.Default(), collab.Set{})
	assert.Error(t, err)
}

func TestLowerRespectsExplicitPlanOverSipsPolicy(t *testing.T) {
	t.Parallel()

	c := ast.NewRule(atom("out", ast.Var("x")),
		atom("p", ast.Var("x"), ast.Var("y")),
		atom("q", ast.Var("x")),
	)
	c.Plan = map[int][]int{0: {1, 0}}

	q, err := Lower(c, config.Default(), collab.Set{})
	require.NoError(t, err)

	s := q.String()
	assert.Contains(t, s, "SCAN q AS t0")
	assert.Contains(t, s, "SCAN p AS t1")
}

type alwaysMultiResultFunctor struct{}

func (alwaysMultiResultFunctor) IsMultiResult(ast.QualifiedName) bool { return true }

func TestLowerRejectsMultiResultFunctor(t *testing.T) {
	t.Parallel()

	f := ast.Functor(ast.NewQualifiedName("f"), ast.Var("x"))
	c := ast.NewRule(atom("out", ast.Var("x")),
		atom("p", f),
	)
	_, err := Lower(c, config.Default(), collab.Set{Functor: alwaysMultiResultFunctor{}})
	assert.Error(t, err)
}
