// Package sips implements Sideways-Information-Passing-Strategy-directed
// literal reordering: a greedy, policy-driven choice of which atom to
// evaluate next given the variables currently bound.
package sips

import "github.com/dlogc/dlc/ast"

// Strength is a variable's binding state at a point in the evaluation
// order.
type Strength int

const (
	Unbound Strength = iota
	Weakly
	Strongly
)

// BindingStore is a flat variable-name-to-Strength map — flat, not
// parent/child scoped, since a clause body has no nested lexical scope.
type BindingStore struct {
	bound map[string]Strength
}

// NewBindingStore returns an empty BindingStore.
func NewBindingStore() *BindingStore {
	return &BindingStore{bound: make(map[string]Strength)}
}

// Strength returns name's current binding strength, Unbound if never set.
func (bs *BindingStore) Strength(name string) Strength {
	return bs.bound[name]
}

// Bind records name as bound at s, never downgrading an existing stronger
// binding.
func (bs *BindingStore) Bind(name string, s Strength) {
	if bs.bound[name] < s {
		bs.bound[name] = s
	}
}

// Policy picks the index, among remaining's non-nil entries, of the next
// atom to place.
type Policy func(remaining []*ast.Atom, bs *BindingStore) int

var policies = map[string]Policy{
	"naive":           chooseNaive,
	"all-bound":       chooseAllBound,
	"max-bound":       chooseMaxBound,
	"max-ratio":       chooseMaxRatio,
	"least-free":      chooseLeastFree,
	"least-free-vars": chooseLeastFreeVars,
	"ast2ram":         chooseAllBound,
}

// PolicyByName looks up a named policy, falling back to the identity
// policy for an unregistered name — the same silent-skip behaviour an
// unknown rule name gets from a name-keyed rule registry.
func PolicyByName(name string) Policy {
	if p, ok := policies[name]; ok {
		return p
	}
	return chooseIdentity
}

func firstNonNil(remaining []*ast.Atom) int {
	for i, a := range remaining {
		if a != nil {
			return i
		}
	}
	return -1
}

func chooseIdentity(remaining []*ast.Atom, _ *BindingStore) int {
	return firstNonNil(remaining)
}

func chooseNaive(remaining []*ast.Atom, bs *BindingStore) int {
	for i, a := range remaining {
		if a == nil {
			continue
		}
		if len(a.Concrete) == 0 || numBoundArguments(*a, bs) >= 1 {
			return i
		}
	}
	return firstNonNil(remaining)
}

func chooseAllBound(remaining []*ast.Atom, bs *BindingStore) int {
	for i, a := range remaining {
		if a == nil {
			continue
		}
		if numBoundArguments(*a, bs) == len(a.Concrete) {
			return i
		}
	}
	return firstNonNil(remaining)
}

func chooseMaxBound(remaining []*ast.Atom, bs *BindingStore) int {
	best, bestIsProp, bestScore := -1, false, -1
	for i, a := range remaining {
		if a == nil {
			continue
		}
		prop := len(a.Concrete) == 0
		score := numBoundArguments(*a, bs)
		switch {
		case best == -1:
			best, bestIsProp, bestScore = i, prop, score
		case prop && !bestIsProp:
			best, bestIsProp, bestScore = i, prop, score
		case !prop && bestIsProp:
			// keep current proposition winner
		case score > bestScore:
			best, bestIsProp, bestScore = i, prop, score
		}
	}
	return best
}

func chooseMaxRatio(remaining []*ast.Atom, bs *BindingStore) int {
	best, bestIsProp := -1, false
	var bestBound, bestArity int
	for i, a := range remaining {
		if a == nil {
			continue
		}
		prop := len(a.Concrete) == 0
		bound := numBoundArguments(*a, bs)
		arity := len(a.Concrete)
		switch {
		case best == -1:
			best, bestIsProp, bestBound, bestArity = i, prop, bound, arity
		case prop && !bestIsProp:
			best, bestIsProp, bestBound, bestArity = i, prop, bound, arity
		case !prop && bestIsProp:
			// keep current proposition winner
		case !prop && bound*bestArity > bestBound*arity:
			best, bestIsProp, bestBound, bestArity = i, prop, bound, arity
		}
	}
	return best
}

func chooseLeastFree(remaining []*ast.Atom, bs *BindingStore) int {
	best, bestFree := -1, -1
	for i, a := range remaining {
		if a == nil {
			continue
		}
		free := len(a.Concrete) - numBoundArguments(*a, bs)
		if best == -1 || free < bestFree {
			best, bestFree = i, free
		}
	}
	return best
}

func chooseLeastFreeVars(remaining []*ast.Atom, bs *BindingStore) int {
	best, bestFree := -1, -1
	for i, a := range remaining {
		if a == nil {
			continue
		}
		free := countUnboundVariables(*a, bs)
		if best == -1 || free < bestFree {
			best, bestFree = i, free
		}
	}
	return best
}

// numBoundArguments counts concrete-argument positions that are grounded
// given bs: a Variable bound at any non-Unbound level, or a non-variable
// term whose free variables are all bound.
func numBoundArguments(atom ast.Atom, bs *BindingStore) int {
	n := 0
	for _, arg := range atom.Concrete {
		if isGrounded(arg, bs) {
			n++
		}
	}
	return n
}

func isGrounded(arg ast.Argument, bs *BindingStore) bool {
	for _, v := range freeVariables(arg) {
		if bs.Strength(v) == Unbound {
			return false
		}
	}
	return true
}

func countUnboundVariables(atom ast.Atom, bs *BindingStore) int {
	seen := make(map[string]bool)
	for _, arg := range atom.Concrete {
		for _, v := range freeVariables(arg) {
			if bs.Strength(v) == Unbound {
				seen[v] = true
			}
		}
	}
	return len(seen)
}

// freeVariables collects the Variable names occurring in arg. An
// Aggregator contributes none — its body is a self-contained scope and it
// always produces a value, so it never leaves a free variable behind.
func freeVariables(arg ast.Argument) []string {
	switch a := arg.(type) {
	case ast.Variable:
		return []string{a.Name}
	case ast.RecordInit:
		return freeVariablesInArgs(a.Args)
	case ast.IntrinsicFunctor:
		return freeVariablesInArgs(a.Args)
	case ast.UserFunctor:
		return freeVariablesInArgs(a.Args)
	default:
		return nil
	}
}

func freeVariablesInArgs(args []ast.Argument) []string {
	var out []string
	for _, a := range args {
		out = append(out, freeVariables(a)...)
	}
	return out
}

func bindArgumentVariables(arg ast.Argument, bs *BindingStore) {
	for _, v := range freeVariables(arg) {
		bs.Bind(v, Strongly)
	}
}

// Reorder runs the greedy consume-loop: repeatedly choose the next atom
// via policy, strongly-bind the Variables in its concrete arguments, and
// continue until every atom is placed. Returns, for each new position in
// order, the index of the chosen atom within c's atoms-only view.
func Reorder(c *ast.Clause, policy Policy, bs *BindingStore) []int {
	_, atoms := c.BodyAtoms()
	if len(atoms) == 0 {
		return nil
	}

	remaining := make([]*ast.Atom, len(atoms))
	for i := range atoms {
		remaining[i] = &atoms[i]
	}

	order := make([]int, 0, len(atoms))
	for len(order) < len(atoms) {
		choice := policy(remaining, bs)
		if choice < 0 {
			break
		}
		order = append(order, choice)
		chosen := atoms[choice]
		remaining[choice] = nil
		for _, arg := range chosen.Concrete {
			bindArgumentVariables(arg, bs)
		}
	}
	return order
}

// reorderAtoms maps an atoms-only reordering back onto the full body,
// leaving non-atom literals at their original positions so their
// relative interleaving with the atoms is preserved.
func reorderAtoms(body []ast.Literal, atomPositions []int, order []int) []ast.Literal {
	atoms := make([]ast.Atom, len(atomPositions))
	for i, pos := range atomPositions {
		atoms[i] = body[pos].(ast.Atom)
	}

	newBody := make([]ast.Literal, len(body))
	copy(newBody, body)

	for cursor, pos := range atomPositions {
		newBody[pos] = atoms[order[cursor]]
	}
	return newBody
}

func isIdentityOrder(order []int) bool {
	for i, v := range order {
		if v != i {
			return false
		}
	}
	return true
}

// bindPreBound seeds bs with variables the collaborator reports bound
// before the body begins: those appearing in an equality constraint
// against a constant.
func bindPreBound(c *ast.Clause, bs *BindingStore) {
	for _, lit := range c.Body {
		bc, ok := lit.(ast.BinaryConstraint)
		if !ok || bc.Op != "=" {
			continue
		}
		bindIfVariableAgainstConstant(bc.LHS, bc.RHS, bs)
		bindIfVariableAgainstConstant(bc.RHS, bc.LHS, bs)
	}
}

func bindIfVariableAgainstConstant(maybeVar, other ast.Argument, bs *BindingStore) {
	v, ok := maybeVar.(ast.Variable)
	if !ok || !isConstant(other) {
		return
	}
	bs.Bind(v.Name, Strongly)
}

func isConstant(arg ast.Argument) bool {
	switch arg.(type) {
	case ast.NumericConstant, ast.StringConstant, ast.NilConstant:
		return true
	default:
		return false
	}
}

// ReorderProgram reorders every clause's body in place per policyName,
// skipping facts and clauses carrying an explicit plan. Reports whether
// any clause was rewritten.
func ReorderProgram(prog *ast.Program, policyName string) bool {
	policy := PolicyByName(policyName)
	clauses := prog.Clauses()
	newClauses := make([]*ast.Clause, len(clauses))
	changed := false

	for i, c := range clauses {
		if c.IsFact() || c.HasPlan() {
			newClauses[i] = c
			continue
		}

		bs := NewBindingStore()
		bindPreBound(c, bs)
		atomPositions, _ := c.BodyAtoms()
		order := Reorder(c, policy, bs)

		if isIdentityOrder(order) {
			newClauses[i] = c
			continue
		}
		newClauses[i] = c.WithBody(reorderAtoms(c.Body, atomPositions, order))
		changed = true
	}

	if changed {
		prog.SetClauses(newClauses)
	}
	return changed
}
