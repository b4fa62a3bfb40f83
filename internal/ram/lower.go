package ram

import (
	"fmt"

	"github.com/dlogc/dlc/ast"
	"github.com/dlogc/dlc/internal/collab"
	"github.com/dlogc/dlc/internal/config"
	"github.com/dlogc/dlc/internal/sips"
)

type unpackPlan struct {
	Expr    Expression
	Arity   int
	TupleID int
}

// Lower translates a single clause into a RAM Query. It reorders the body
// first — via an explicit plan (version 0) when the clause carries one,
// otherwise via the SIPS policy named in cfg — then builds a value index
// mapping variables to tuple locations, emits equality and constraint
// filters, wraps every atom in a Scan (or IndexScan when one of its
// concrete arguments is a constant), and projects the head.
//
// Of the three collaborator contracts, only FunctorAnalysis is consulted
// here: a clause referencing a multi-result functor is rejected, since
// lowering one correctly needs a nested generator operation this package
// does not build.
func Lower(c *ast.Clause, cfg config.Config, deps collab.Set) (*Query, error) {
	if deps.Functor != nil {
		if name := firstMultiResultFunctor(c, deps.Functor); name != "" {
			return nil, fmt.Errorf("ram: lowering clause for %s: multi-result functor %q is unsupported", c.Head.Name, name)
		}
	}

	if c.IsFact() {
		return &Query{Root: Project{
			Into:     relationFor(c.Head),
			Concrete: translateArgsFlat(c.Head.Concrete, nil, nil),
			Lattice:  translateArgsFlat(c.Head.Lattice, nil, nil),
		}}, nil
	}

	_, atoms := c.BodyAtoms()
	order := bodyOrder(c, atoms, cfg)
	if len(order) != len(atoms) {
		return nil, fmt.Errorf("ram: lowering clause for %s: body order has %d entries for %d atoms", c.Head.Name, len(order), len(atoms))
	}

	orderedAtoms := make([]ast.Atom, len(atoms))
	for i, idx := range order {
		orderedAtoms[i] = atoms[idx]
	}

	aggs := findAggregators(c)
	aggLookup := make(map[string]TupleElement, len(aggs))
	aggNodes := make([]Aggregate, 0, len(aggs))
	nextID := len(orderedAtoms)
	for _, agg := range aggs {
		node, err := buildAggregateNode(agg, nextID)
		if err != nil {
			return nil, fmt.Errorf("ram: lowering clause for %s: %w", c.Head.Name, err)
		}
		aggLookup[agg.String()] = TupleElement{TupleID: nextID, Index: 0, Kind: Concrete}
		aggNodes = append(aggNodes, node)
		nextID++
	}

	valueIndex := make(map[string]TupleElement)
	var filters []Condition
	var unpacks []unpackPlan

	for i, atom := range orderedAtoms {
		for col, arg := range atom.Concrete {
			handleArgBinding(arg, i, col, Concrete, valueIndex, aggLookup, &filters, &unpacks, &nextID)
		}
		for col, arg := range atom.Lattice {
			handleArgBinding(arg, i, col, Lattice, valueIndex, aggLookup, &filters, &unpacks, &nextID)
		}
	}

	for _, lit := range c.Body {
		switch l := lit.(type) {
		case ast.BinaryConstraint:
			lhs := translateValueExpr(l.LHS, valueIndex, aggLookup)
			rhs := translateValueExpr(l.RHS, valueIndex, aggLookup)
			if l.Op == "<=" {
				filters = append(filters, LeqConstraint{LHS: lhs, RHS: rhs})
			} else {
				filters = append(filters, Constraint{Op: l.Op, LHS: lhs, RHS: rhs})
			}
		case ast.Negation:
			filters = append(filters, Not{Cond: ExistenceCheck{
				Relation:        relationFor(l.Atom),
				ConcretePattern: patternArgs(l.Atom.Concrete, valueIndex, aggLookup),
				LatticePattern:  patternArgs(l.Atom.Lattice, valueIndex, aggLookup),
			}})
		}
	}

	var op Operation = Project{
		Into:     relationFor(c.Head),
		Concrete: translateArgsFlat(c.Head.Concrete, valueIndex, aggLookup),
		Lattice:  translateArgsFlat(c.Head.Lattice, valueIndex, aggLookup),
	}

	for _, f := range filters {
		op = Filter{Cond: f, Body: op}
	}

	for _, node := range aggNodes {
		node.Body = op
		op = node
	}

	for _, u := range unpacks {
		op = UnpackRecord{Expr: u.Expr, Arity: u.Arity, TupleID: u.TupleID, Body: op}
	}

	for i := len(orderedAtoms) - 1; i >= 0; i-- {
		atom := orderedAtoms[i]
		rel := relationFor(atom)
		op = Filter{Cond: Not{Cond: EmptinessCheck{Relation: rel}}, Body: op}
		if atomHasConstantArg(atom) {
			op = IndexScan{Relation: rel, TupleID: i, Pattern: patternArgs(atom.Concrete, valueIndex, aggLookup), Body: op}
		} else {
			op = Scan{Relation: rel, TupleID: i, Body: op}
		}
	}

	return &Query{Root: op}, nil
}

func bodyOrder(c *ast.Clause, atoms []ast.Atom, cfg config.Config) []int {
	if c.HasPlan() {
		if plan, ok := c.Plan[0]; ok && len(plan) == len(atoms) {
			return plan
		}
	}
	bs := sips.NewBindingStore()
	return sips.Reorder(c, sips.PolicyByName(cfg.SIPSPolicy), bs)
}

func relationFor(atom ast.Atom) Relation {
	return Relation{
		Name:          atom.Name.String(),
		ConcreteArity: len(atom.Concrete),
		LatticeArity:  len(atom.Lattice),
	}
}

func atomHasConstantArg(atom ast.Atom) bool {
	for _, arg := range atom.Concrete {
		switch arg.(type) {
		case ast.NumericConstant, ast.StringConstant, ast.NilConstant:
			return true
		}
	}
	return false
}

// handleArgBinding updates valueIndex (and, for record arguments, unpacks)
// while walking an atom's argument list, and appends any equality filter
// the argument requires: a repeated variable, a constant, or a compound
// expression that must match the tuple column rather than bind it.
func handleArgBinding(
	arg ast.Argument,
	tupleID, col int,
	kind ElementKind,
	valueIndex map[string]TupleElement,
	aggLookup map[string]TupleElement,
	filters *[]Condition,
	unpacks *[]unpackPlan,
	nextID *int,
) {
	switch a := arg.(type) {
	case ast.Variable:
		if existing, ok := valueIndex[a.Name]; ok {
			*filters = append(*filters, Constraint{Op: "=", LHS: existing, RHS: TupleElement{TupleID: tupleID, Index: col, Kind: kind}})
			return
		}
		valueIndex[a.Name] = TupleElement{TupleID: tupleID, Index: col, Kind: kind}
	case ast.UnnamedVariable:
		// no binding and no constraint: any value matches a wildcard.
	case ast.RecordInit:
		freshID := *nextID
		*nextID++
		*unpacks = append(*unpacks, unpackPlan{
			Expr:    TupleElement{TupleID: tupleID, Index: col, Kind: kind},
			Arity:   len(a.Args),
			TupleID: freshID,
		})
		for subCol, sub := range a.Args {
			handleArgBinding(sub, freshID, subCol, Concrete, valueIndex, aggLookup, filters, unpacks, nextID)
		}
	default:
		expected := translateValueExpr(arg, valueIndex, aggLookup)
		*filters = append(*filters, Constraint{Op: "=", LHS: TupleElement{TupleID: tupleID, Index: col, Kind: kind}, RHS: expected})
	}
}

func patternArgs(args []ast.Argument, valueIndex map[string]TupleElement, aggLookup map[string]TupleElement) []Expression {
	out := make([]Expression, len(args))
	for i, a := range args {
		out[i] = patternExpr(a, valueIndex, aggLookup)
	}
	return out
}

// patternExpr translates an argument for use in an index or existence
// pattern, where an unbound variable is a wildcard rather than a fallback
// constant.
func patternExpr(arg ast.Argument, valueIndex map[string]TupleElement, aggLookup map[string]TupleElement) Expression {
	switch a := arg.(type) {
	case ast.Variable:
		if te, ok := valueIndex[a.Name]; ok {
			return te
		}
		return Undef{}
	case ast.UnnamedVariable:
		return Undef{}
	default:
		return translateValueExpr(arg, valueIndex, aggLookup)
	}
}

func translateArgsFlat(args []ast.Argument, valueIndex map[string]TupleElement, aggLookup map[string]TupleElement) []Expression {
	out := make([]Expression, len(args))
	for i, a := range args {
		out[i] = translateValueExpr(a, valueIndex, aggLookup)
	}
	return out
}

// translateValueExpr renders arg as a RAM expression given the bindings
// established so far. A variable with no binding falls back to a textual
// constant rather than failing lowering outright — a degenerate case this
// thin package does not reject, since catching every ill-bound clause is
// the type checker's job, not the lowering step's.
func translateValueExpr(arg ast.Argument, valueIndex map[string]TupleElement, aggLookup map[string]TupleElement) Expression {
	switch a := arg.(type) {
	case ast.Variable:
		if te, ok := valueIndex[a.Name]; ok {
			return te
		}
		return Constant{Text: a.Name}
	case ast.UnnamedVariable:
		return Undef{}
	case ast.NumericConstant, ast.StringConstant, ast.NilConstant:
		return Constant{Text: arg.String()}
	case ast.RecordInit:
		return Apply{Op: "record", Args: translateArgsFlat(a.Args, valueIndex, aggLookup)}
	case ast.IntrinsicFunctor:
		return Apply{Op: a.Op, Args: translateArgsFlat(a.Args, valueIndex, aggLookup)}
	case ast.UserFunctor:
		return Apply{Op: a.Name.String(), Args: translateArgsFlat(a.Args, valueIndex, aggLookup)}
	case ast.Aggregator:
		if te, ok := aggLookup[a.String()]; ok {
			return te
		}
		return Constant{Text: a.String()}
	case ast.UnhandledArgument:
		return Constant{Text: a.Printed}
	default:
		return Constant{Text: arg.String()}
	}
}

// findAggregators collects every distinct Aggregator (by printed form)
// reachable from the clause's head and body, in first-occurrence order.
func findAggregators(c *ast.Clause) []ast.Aggregator {
	var out []ast.Aggregator
	seen := make(map[string]bool)
	collectAggregatorsInAtom(c.Head, &out, seen)
	for _, lit := range c.Body {
		collectAggregatorsInLiteral(lit, &out, seen)
	}
	return out
}

func collectAggregatorsInLiteral(lit ast.Literal, out *[]ast.Aggregator, seen map[string]bool) {
	switch l := lit.(type) {
	case ast.Atom:
		collectAggregatorsInAtom(l, out, seen)
	case ast.Negation:
		collectAggregatorsInAtom(l.Atom, out, seen)
	case ast.BinaryConstraint:
		collectAggregators(l.LHS, out, seen)
		collectAggregators(l.RHS, out, seen)
	}
}

func collectAggregatorsInAtom(a ast.Atom, out *[]ast.Aggregator, seen map[string]bool) {
	for _, arg := range a.Concrete {
		collectAggregators(arg, out, seen)
	}
	for _, arg := range a.Lattice {
		collectAggregators(arg, out, seen)
	}
}

func collectAggregators(arg ast.Argument, out *[]ast.Aggregator, seen map[string]bool) {
	switch a := arg.(type) {
	case ast.Aggregator:
		key := a.String()
		if !seen[key] {
			seen[key] = true
			*out = append(*out, a)
		}
		if a.Target != nil {
			collectAggregators(a.Target, out, seen)
		}
	case ast.RecordInit:
		for _, sub := range a.Args {
			collectAggregators(sub, out, seen)
		}
	case ast.IntrinsicFunctor:
		for _, sub := range a.Args {
			collectAggregators(sub, out, seen)
		}
	case ast.UserFunctor:
		for _, sub := range a.Args {
			collectAggregators(sub, out, seen)
		}
	}
}

// buildAggregateNode lowers a single aggregator into its own Aggregate
// operation. The aggregator's body is a self-contained scope (it never
// references variables bound outside it, matching the same assumption
// internal/sips makes when computing free variables for an aggregator
// argument) and per the Datalog grammar must contain exactly one atom
// alongside any number of constraint literals.
func buildAggregateNode(agg ast.Aggregator, tupleID int) (Aggregate, error) {
	var bodyAtom *ast.Atom
	var constraints []ast.BinaryConstraint
	for _, lit := range agg.Body {
		switch l := lit.(type) {
		case ast.Atom:
			if bodyAtom != nil {
				return Aggregate{}, fmt.Errorf("aggregator body %q must contain exactly one atom", agg.String())
			}
			a := l
			bodyAtom = &a
		case ast.BinaryConstraint:
			constraints = append(constraints, l)
		}
	}
	if bodyAtom == nil {
		return Aggregate{}, fmt.Errorf("aggregator body %q must contain exactly one atom", agg.String())
	}

	subIndex := make(map[string]TupleElement)
	subAgg := make(map[string]TupleElement)
	var filters []Condition
	var unpacks []unpackPlan
	nextID := 1

	for col, arg := range bodyAtom.Concrete {
		handleArgBinding(arg, 0, col, Concrete, subIndex, subAgg, &filters, &unpacks, &nextID)
	}
	for col, arg := range bodyAtom.Lattice {
		handleArgBinding(arg, 0, col, Lattice, subIndex, subAgg, &filters, &unpacks, &nextID)
	}
	for _, bc := range constraints {
		lhs := translateValueExpr(bc.LHS, subIndex, subAgg)
		rhs := translateValueExpr(bc.RHS, subIndex, subAgg)
		if bc.Op == "<=" {
			filters = append(filters, LeqConstraint{LHS: lhs, RHS: rhs})
		} else {
			filters = append(filters, Constraint{Op: bc.Op, LHS: lhs, RHS: rhs})
		}
	}

	var cond Condition
	for _, f := range filters {
		if cond == nil {
			cond = f
			continue
		}
		cond = And{LHS: cond, RHS: f}
	}

	var target Expression
	if agg.Target != nil {
		target = translateValueExpr(agg.Target, subIndex, subAgg)
	}

	return Aggregate{
		TupleID:   tupleID,
		Op:        agg.Op,
		Relation:  relationFor(*bodyAtom),
		Target:    target,
		Condition: cond,
	}, nil
}

// firstMultiResultFunctor returns the qualified name of the first
// multi-result functor reachable from c, or "" if none is referenced.
func firstMultiResultFunctor(c *ast.Clause, functor collab.FunctorAnalysis) string {
	if name := firstMultiResultFunctorInAtom(c.Head, functor); name != "" {
		return name
	}
	for _, lit := range c.Body {
		var name string
		switch l := lit.(type) {
		case ast.Atom:
			name = firstMultiResultFunctorInAtom(l, functor)
		case ast.Negation:
			name = firstMultiResultFunctorInAtom(l.Atom, functor)
		case ast.BinaryConstraint:
			name = firstMultiResultFunctorInArg(l.LHS, functor)
			if name == "" {
				name = firstMultiResultFunctorInArg(l.RHS, functor)
			}
		}
		if name != "" {
			return name
		}
	}
	return ""
}

func firstMultiResultFunctorInAtom(a ast.Atom, functor collab.FunctorAnalysis) string {
	for _, arg := range a.Concrete {
		if name := firstMultiResultFunctorInArg(arg, functor); name != "" {
			return name
		}
	}
	for _, arg := range a.Lattice {
		if name := firstMultiResultFunctorInArg(arg, functor); name != "" {
			return name
		}
	}
	return ""
}

func firstMultiResultFunctorInArg(arg ast.Argument, functor collab.FunctorAnalysis) string {
	switch a := arg.(type) {
	case ast.UserFunctor:
		if functor.IsMultiResult(a.Name) {
			return a.Name.String()
		}
		for _, sub := range a.Args {
			if name := firstMultiResultFunctorInArg(sub, functor); name != "" {
				return name
			}
		}
	case ast.RecordInit:
		for _, sub := range a.Args {
			if name := firstMultiResultFunctorInArg(sub, functor); name != "" {
				return name
			}
		}
	case ast.IntrinsicFunctor:
		for _, sub := range a.Args {
			if name := firstMultiResultFunctorInArg(sub, functor); name != "" {
				return name
			}
		}
	case ast.Aggregator:
		if a.Target != nil {
			return firstMultiResultFunctorInArg(a.Target, functor)
		}
	}
	return ""
}
