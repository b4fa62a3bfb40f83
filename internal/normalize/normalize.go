// Package normalize produces a canonical, variable-renaming- and
// constant-text-preserving representation of a clause suitable for
// equivalence testing.
package normalize

import (
	"fmt"
	"strconv"

	"github.com/dlogc/dlc/ast"
)

const (
	elemHead      = "@min:head"
	segAtom       = "@min:atom"
	segNeg        = "@min:neg"
	segOperator   = "@min:operator"
	cstStrPrefix  = "@min:cst:str"
	cstNumPrefix  = "@min:cst:num:"
	cstNilLiteral = "@min:cst:nil"
	unnamedPrefix = "@min:unnamed:"
	scopePrefix   = "@min:scope:"
	aggrtypePfx   = "@min:aggrtype:"
	unhandledArg  = "@min:unhandled:arg"
	unhandledLit  = "@min:unhandled:lit:"
)

// Normalizer holds the per-clause unnamed-variable and scope counters and
// the element, variable and constant sets under construction, all reset at
// the start of every Normalize call so normalisation stays pure in the
// clause and order-independent across calls.
type Normalizer struct {
	unnamed int
	scope   int

	elements  []ast.Element
	variables map[string]bool
	constants map[string]bool
	fully     bool
}

// NewNormalizer returns a ready-to-use Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize produces c's canonical form.
func (n *Normalizer) Normalize(c *ast.Clause) *ast.NormalisedClause {
	n.unnamed = 0
	n.scope = 0
	n.elements = nil
	n.variables = make(map[string]bool)
	n.constants = make(map[string]bool)
	n.fully = true

	// Reserve element 0 for the head before normalising its arguments, so
	// any aggregator elements they emit follow it.
	n.elements = append(n.elements, ast.Element{Name: elemHead})
	headConcrete := n.normalizeArgs(c.Head.Concrete)
	headLattice := n.normalizeArgs(c.Head.Lattice)
	n.elements[0].ConcreteParams = headConcrete
	n.elements[0].LatticeParams = headLattice

	for _, lit := range c.Body {
		n.normalizeLiteral(lit, 0)
	}

	return &ast.NormalisedClause{
		Elements:        n.elements,
		Variables:       n.variables,
		Constants:       n.constants,
		FullyNormalised: n.fully,
	}
}

func (n *Normalizer) normalizeArgs(args []ast.Argument) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = n.normalizeArgument(a)
	}
	return out
}

func (n *Normalizer) normalizeArgument(arg ast.Argument) string {
	switch a := arg.(type) {
	case ast.StringConstant:
		id := fmt.Sprintf(`%s"%s"`, cstStrPrefix, a.Text)
		n.constants[id] = true
		return id

	case ast.NumericConstant:
		id := cstNumPrefix + a.Text + ":" + a.Kind.String()
		n.constants[id] = true
		return id

	case ast.NilConstant:
		n.constants[cstNilLiteral] = true
		return cstNilLiteral

	case ast.Variable:
		n.variables[a.Name] = true
		return a.Name

	case ast.UnnamedVariable:
		id := unnamedPrefix + strconv.Itoa(n.unnamed)
		n.unnamed++
		n.variables[id] = true
		return id

	case ast.Aggregator:
		n.scope++
		scope := n.scope

		targetParams := []string{strconv.Itoa(scope)}
		if a.Target != nil {
			targetParams = append(targetParams, n.normalizeArgument(a.Target))
		}
		n.elements = append(n.elements, ast.Element{
			Name:           aggrtypePfx + a.Op,
			ConcreteParams: targetParams,
		})

		for _, lit := range a.Body {
			n.normalizeLiteral(lit, scope)
		}

		return scopePrefix + strconv.Itoa(scope)

	default:
		n.fully = false
		return unhandledArg
	}
}

func (n *Normalizer) normalizeLiteral(lit ast.Literal, scope int) {
	s := strconv.Itoa(scope)

	switch l := lit.(type) {
	case ast.Atom:
		n.elements = append(n.elements, ast.Element{
			Name:           l.Name.Prepend(segAtom).String(),
			ConcreteParams: append([]string{s}, n.normalizeArgs(l.Concrete)...),
			LatticeParams:  append([]string{s}, n.normalizeArgs(l.Lattice)...),
		})

	case ast.Negation:
		n.elements = append(n.elements, ast.Element{
			Name:           l.Atom.Name.Prepend(segNeg).String(),
			ConcreteParams: append([]string{s}, n.normalizeArgs(l.Atom.Concrete)...),
			LatticeParams:  append([]string{s}, n.normalizeArgs(l.Atom.Lattice)...),
		})

	case ast.BinaryConstraint:
		n.elements = append(n.elements, ast.Element{
			Name:           ast.NewQualifiedName(segOperator, l.Op).String(),
			ConcreteParams: []string{s, n.normalizeArgument(l.LHS), n.normalizeArgument(l.RHS)},
		})

	default:
		n.fully = false
		n.elements = append(n.elements, ast.Element{
			Name: unhandledLit + s + "/" + lit.String(),
		})
	}
}
