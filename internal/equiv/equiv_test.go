package equiv

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlogc/dlc/ast"
	"github.com/dlogc/dlc/internal/normalize"
)

func q(name string) ast.QualifiedName { return ast.NewQualifiedName(name) }

func norm(c *ast.Clause) *ast.NormalisedClause {
	return normalize.NewNormalizer().Normalize(c)
}

func TestIdenticalClausesAreEquivalent(t *testing.T) {
	t.Parallel()

	head := ast.NewAtom(q("p"), []ast.Argument{ast.Var("x")}, nil)
	body := ast.NewAtom(q("q"), []ast.Argument{ast.Var("x")}, nil)
	c := ast.NewRule(head, body)

	ok, report := AreBijectivelyEquivalent(norm(c), norm(c))
	require.True(t, ok)
	assert.True(t, report.Matched)
}

// S2 — body-permutation equivalence, after alias resolution.
func TestBodyPermutationEquivalence(t *testing.T) {
	t.Parallel()

	build := func(head, a1, a2, x, y string) *ast.Clause {
		return ast.NewRule(
			ast.NewAtom(q("C"), []ast.Argument{ast.Var(head)}, nil),
			ast.NewAtom(q("A"), []ast.Argument{ast.Var(a1), ast.Var(y)}, []ast.Argument{ast.Var("l")}),
			ast.NewAtom(q("A"), []ast.Argument{ast.Var(a2), ast.Var(x)}, []ast.Argument{ast.Var("l")}),
			ast.BinOp("!=", ast.Var(x), ast.NumConst("3", ast.NumericInt)),
			ast.BinOp("<", ast.Var(x), ast.Var(y)),
			ast.Neg(ast.NewAtom(q("B"), []ast.Argument{ast.Var(x)}, nil)),
			ast.BinOp(">", ast.Var(y), ast.NumConst("3", ast.NumericInt)),
			ast.NewAtom(q("B"), []ast.Argument{ast.Var(y)}, nil),
		)
	}

	c1 := build("z", "z", "z", "x", "y")
	c2 := build("r", "r", "r", "x", "y")

	ok, report := AreBijectivelyEquivalent(norm(c1), norm(c2))
	require.True(t, ok, report.Reason)
}

// S3 — binding mismatch: distinct lattice-argument variables, not equivalent.
func TestBindingMismatchIsNotEquivalent(t *testing.T) {
	t.Parallel()

	c1 := ast.NewRule(
		ast.NewAtom(q("C"), []ast.Argument{ast.Var("z")}, nil),
		ast.NewAtom(q("A"), []ast.Argument{ast.Var("z"), ast.Var("y")}, []ast.Argument{ast.Var("l")}),
		ast.NewAtom(q("A"), []ast.Argument{ast.Var("z"), ast.Var("x")}, []ast.Argument{ast.Var("l")}),
	)
	c2 := ast.NewRule(
		ast.NewAtom(q("C"), []ast.Argument{ast.Var("z")}, nil),
		ast.NewAtom(q("A"), []ast.Argument{ast.Var("z"), ast.Var("y")}, []ast.Argument{ast.Var("l")}),
		ast.NewAtom(q("A"), []ast.Argument{ast.Var("z"), ast.Var("x")}, []ast.Argument{ast.Var("k")}),
	)

	ok, report := AreBijectivelyEquivalent(norm(c1), norm(c2))
	assert.False(t, ok)
	assert.NotEmpty(t, report.Reason)
}

// Invariant 2: clauses identical up to variable renaming and body
// permutation are bijectively equivalent.
func TestAlphaEquivalentPermutedClausesAreEquivalent(t *testing.T) {
	t.Parallel()

	c1 := ast.NewRule(
		ast.NewAtom(q("p"), []ast.Argument{ast.Var("x"), ast.Var("y")}, nil),
		ast.NewAtom(q("a"), []ast.Argument{ast.Var("x")}, nil),
		ast.NewAtom(q("b"), []ast.Argument{ast.Var("y")}, nil),
	)
	c2 := ast.NewRule(
		ast.NewAtom(q("p"), []ast.Argument{ast.Var("m"), ast.Var("n")}, nil),
		ast.NewAtom(q("b"), []ast.Argument{ast.Var("n")}, nil),
		ast.NewAtom(q("a"), []ast.Argument{ast.Var("m")}, nil),
	)

	ok, report := AreBijectivelyEquivalent(norm(c1), norm(c2))
	require.True(t, ok, report.Reason)
	assert.Len(t, report.Permutation, 3)
}

// Invariant 3: a clause with fullyNormalised = false is never equivalent to
// anything, in either argument position.
func TestFullyNormalisedFalseIsNeverEquivalent(t *testing.T) {
	t.Parallel()

	degraded := ast.NewFact(ast.NewAtom(q("p"), []ast.Argument{ast.UnhandledArgument{Printed: "<x>"}}, nil))
	clean := ast.NewFact(ast.NewAtom(q("p"), []ast.Argument{ast.StrConst("x")}, nil))

	ok1, _ := AreBijectivelyEquivalent(norm(degraded), norm(clean))
	ok2, _ := AreBijectivelyEquivalent(norm(clean), norm(degraded))
	assert.False(t, ok1)
	assert.False(t, ok2)
}

func TestConstantDifferenceBreaksEquivalence(t *testing.T) {
	t.Parallel()

	c1 := ast.NewFact(ast.NewAtom(q("A"), []ast.Argument{ast.NumConst("0", ast.NumericInt), ast.NumConst("0", ast.NumericInt)}, []ast.Argument{ast.NumConst("0", ast.NumericInt)}))
	c2 := ast.NewFact(ast.NewAtom(q("A"), []ast.Argument{ast.NumConst("0", ast.NumericInt), ast.NumConst("0", ast.NumericInt)}, []ast.Argument{ast.NumConst("1", ast.NumericInt)}))

	ok, _ := AreBijectivelyEquivalent(norm(c1), norm(c2))
	assert.False(t, ok)
}

func TestTextualNumericConstantsAreNotEqual(t *testing.T) {
	t.Parallel()

	c1 := ast.NewFact(ast.NewAtom(q("p"), []ast.Argument{ast.NumConst("1", ast.NumericInt)}, nil))
	c2 := ast.NewFact(ast.NewAtom(q("p"), []ast.Argument{ast.NumConst("01", ast.NumericInt)}, nil))

	ok, _ := AreBijectivelyEquivalent(norm(c1), norm(c2))
	assert.False(t, ok, `"1" and "01" must not be treated as equal constants`)
}

func TestPermutationIsDeterministicAcrossRuns(t *testing.T) {
	t.Parallel()

	c1 := ast.NewRule(
		ast.NewAtom(q("p"), []ast.Argument{ast.Var("x"), ast.Var("y")}, nil),
		ast.NewAtom(q("a"), []ast.Argument{ast.Var("x")}, nil),
		ast.NewAtom(q("b"), []ast.Argument{ast.Var("y")}, nil),
	)
	c2 := ast.NewRule(
		ast.NewAtom(q("p"), []ast.Argument{ast.Var("m"), ast.Var("n")}, nil),
		ast.NewAtom(q("b"), []ast.Argument{ast.Var("n")}, nil),
		ast.NewAtom(q("a"), []ast.Argument{ast.Var("m")}, nil),
	)

	_, first := AreBijectivelyEquivalent(norm(c1), norm(c2))
	_, second := AreBijectivelyEquivalent(norm(c1), norm(c2))

	if diff := cmp.Diff(first.Permutation, second.Permutation); diff != "" {
		t.Errorf("permutation search is not deterministic:\n%s", diff)
	}
}
