package ast

import (
	"encoding/json"
	"fmt"
)

// This file implements JSON (de)serialisation for Program and the
// tagged-variant nodes it owns — the wire format the CLI reads instead of
// parsing Datalog source itself (parsing is an external collaborator's
// job, not this package's). Every Argument and Literal variant round-trips
// through a "kind"-tagged envelope, the same discriminated-union shape
// go/token positions are deliberately dropped from: a re-serialised
// Program has no source file to point back into.

type wireProgram struct {
	Relations  []wireRelation  `json:"relations"`
	Clauses    []wireClause    `json:"clauses"`
	Types      []QualifiedName `json:"types,omitempty"`
	Lattices   []wireLattice   `json:"lattices,omitempty"`
	Functors   []QualifiedName `json:"functors,omitempty"`
	Components []QualifiedName `json:"components,omitempty"`
	Instances  []wireComponent `json:"instances,omitempty"`
	Pragmas    []Pragma        `json:"pragmas,omitempty"`
	Directives []wireDirective `json:"directives,omitempty"`
}

type wireRelation struct {
	Name       QualifiedName    `json:"name"`
	Concrete   []Attribute      `json:"concrete,omitempty"`
	LatticeAtt []Attribute      `json:"lattice,omitempty"`
	Qualifiers []string         `json:"qualifiers,omitempty"`
	Repr       string           `json:"repr,omitempty"`
}

type wireLattice struct {
	Name string        `json:"name"`
	Base QualifiedName `json:"base"`
	Leq  QualifiedName `json:"leq"`
	Lub  QualifiedName `json:"lub"`
	Glb  QualifiedName `json:"glb"`
	Bot  QualifiedName `json:"bot"`
	Top  QualifiedName `json:"top"`
}

type wireComponent struct {
	Name      QualifiedName `json:"name"`
	Component QualifiedName `json:"component"`
}

type wireDirective struct {
	Kind     string        `json:"kind"`
	Relation QualifiedName `json:"relation"`
	Limit    int64         `json:"limit,omitempty"`
}

type wireClause struct {
	Head json.RawMessage   `json:"head"`
	Body []json.RawMessage `json:"body,omitempty"`
	Plan map[string][]int  `json:"plan,omitempty"`
}

// wireNode is the shared envelope every Argument and Literal variant
// marshals through: kind names the concrete Go type, the remaining fields
// are populated per kind.
type wireNode struct {
	Kind string `json:"kind"`

	// Variable / UnnamedVariable / NumericConstant / StringConstant
	Name string `json:"name,omitempty"`
	Text string `json:"text,omitempty"`
	NumKind string `json:"numericKind,omitempty"`

	// RecordInit / IntrinsicFunctor / UserFunctor args, Atom concrete/lattice
	Args     []json.RawMessage `json:"args,omitempty"`
	Concrete []json.RawMessage `json:"concrete,omitempty"`
	Lattice  []json.RawMessage `json:"lattice,omitempty"`

	Op       string            `json:"op,omitempty"`
	Func     QualifiedName     `json:"func,omitempty"`
	Relation QualifiedName     `json:"relation,omitempty"`

	// Aggregator
	Target json.RawMessage   `json:"target,omitempty"`
	Body   []json.RawMessage `json:"body,omitempty"`

	// BinaryConstraint
	LHS json.RawMessage `json:"lhs,omitempty"`
	RHS json.RawMessage `json:"rhs,omitempty"`

	// UnhandledArgument / UnhandledLiteral
	Printed string `json:"printed,omitempty"`
}

// MarshalJSON serialises prog's relations, clauses, and declaration sets.
// Source positions are not preserved.
func (p *Program) MarshalJSON() ([]byte, error) {
	w := wireProgram{}
	for _, t := range p.Types {
		w.Types = append(w.Types, t.Name)
	}
	for _, f := range p.Functors {
		w.Functors = append(w.Functors, f.Name)
	}
	for _, comp := range p.Components {
		w.Components = append(w.Components, comp.Name)
	}
	for _, r := range p.Relations() {
		wr := wireRelation{Name: r.Name, Concrete: r.Concrete, LatticeAtt: r.LatticeAtt, Repr: r.Repr.String()}
		for q := QualInput; q <= QualSuppressed; q++ {
			if r.HasQualifier(q) {
				wr.Qualifiers = append(wr.Qualifiers, q.String())
			}
		}
		w.Relations = append(w.Relations, wr)
	}
	for _, c := range p.clauses {
		wc, err := marshalClause(c)
		if err != nil {
			return nil, err
		}
		w.Clauses = append(w.Clauses, wc)
	}
	for _, l := range p.Lattices {
		w.Lattices = append(w.Lattices, wireLattice{
			Name: l.Name(), Base: l.Base(), Leq: l.Leq(), Lub: l.Lub(), Glb: l.Glb(), Bot: l.Bot(), Top: l.Top(),
		})
	}
	for _, inst := range p.Instances {
		w.Instances = append(w.Instances, wireComponent{Name: inst.Name, Component: inst.Component})
	}
	w.Pragmas = p.Pragmas
	for _, d := range p.Directives {
		w.Directives = append(w.Directives, wireDirective{Kind: directiveKindName(d.Kind), Relation: d.Relation, Limit: d.Limit})
	}
	return json.Marshal(w)
}

// UnmarshalJSON rebuilds a Program from the wire format MarshalJSON
// produces. p may be a fresh value from NewProgram or a zero Program; a
// zero Program is initialised as if by NewProgram before decoding.
func (p *Program) UnmarshalJSON(data []byte) error {
	var w wireProgram
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if p.relations == nil {
		*p = *NewProgram()
	}
	for _, wr := range w.Relations {
		r := NewRelation(wr.Name, wr.Concrete, wr.LatticeAtt)
		if repr, ok := representationByName(wr.Repr); ok {
			r.Repr = repr
		}
		for _, qname := range wr.Qualifiers {
			if q, ok := qualifierByName(qname); ok {
				r.Qualifiers[q] = true
			}
		}
		if err := p.AddRelation(r); err != nil {
			return err
		}
	}
	for _, wc := range w.Clauses {
		c, err := unmarshalClause(wc)
		if err != nil {
			return err
		}
		p.AddClause(c)
	}
	for _, name := range w.Types {
		p.Types = append(p.Types, TypeDecl{Name: name})
	}
	for _, name := range w.Functors {
		p.Functors = append(p.Functors, FunctorDecl{Name: name})
	}
	for _, name := range w.Components {
		p.Components = append(p.Components, ComponentDecl{Name: name})
	}
	p.Pragmas = w.Pragmas
	for _, wl := range w.Lattices {
		p.Lattices = append(p.Lattices, NewLattice(wl.Name, wl.Base, wl.Leq, wl.Lub, wl.Glb, wl.Bot, wl.Top))
	}
	for _, wi := range w.Instances {
		p.Instances = append(p.Instances, ComponentInst{Name: wi.Name, Component: wi.Component})
	}
	for _, wd := range w.Directives {
		kind, ok := directiveKindByName(wd.Kind)
		if !ok {
			return fmt.Errorf("ast: unknown directive kind %q", wd.Kind)
		}
		if err := p.AddDirective(IODirective{Kind: kind, Relation: wd.Relation, Limit: wd.Limit}); err != nil {
			return err
		}
	}
	return nil
}

func marshalClause(c *Clause) (wireClause, error) {
	head, err := marshalAtom(c.Head)
	if err != nil {
		return wireClause{}, err
	}
	wc := wireClause{Head: head}
	for _, lit := range c.Body {
		raw, err := marshalLiteral(lit)
		if err != nil {
			return wireClause{}, err
		}
		wc.Body = append(wc.Body, raw)
	}
	if c.Plan != nil {
		wc.Plan = make(map[string][]int, len(c.Plan))
		for version, order := range c.Plan {
			wc.Plan[fmt.Sprintf("%d", version)] = order
		}
	}
	return wc, nil
}

func unmarshalClause(wc wireClause) (*Clause, error) {
	headLit, err := unmarshalLiteral(wc.Head)
	if err != nil {
		return nil, err
	}
	head, ok := headLit.(Atom)
	if !ok {
		return nil, fmt.Errorf("ast: clause head is not an atom")
	}
	c := &Clause{Head: head}
	for _, raw := range wc.Body {
		lit, err := unmarshalLiteral(raw)
		if err != nil {
			return nil, err
		}
		c.Body = append(c.Body, lit)
	}
	if wc.Plan != nil {
		c.Plan = make(map[int][]int, len(wc.Plan))
		for k, v := range wc.Plan {
			var version int
			if _, err := fmt.Sscanf(k, "%d", &version); err != nil {
				return nil, fmt.Errorf("ast: invalid plan version %q: %w", k, err)
			}
			c.Plan[version] = v
		}
	}
	return c, nil
}

func marshalAtom(a Atom) (json.RawMessage, error) {
	concrete, err := marshalArgs(a.Concrete)
	if err != nil {
		return nil, err
	}
	lattice, err := marshalArgs(a.Lattice)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireNode{Kind: "atom", Relation: a.Name, Concrete: concrete, Lattice: lattice})
}

func marshalArgs(args []Argument) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(args))
	for i, a := range args {
		raw, err := marshalArgument(a)
		if err != nil {
			return nil, err
		}
		out[i] = raw
	}
	return out, nil
}

func marshalLiterals(lits []Literal) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(lits))
	for i, l := range lits {
		raw, err := marshalLiteral(l)
		if err != nil {
			return nil, err
		}
		out[i] = raw
	}
	return out, nil
}

func marshalLiteral(lit Literal) (json.RawMessage, error) {
	switch l := lit.(type) {
	case Atom:
		return marshalAtom(l)
	case Negation:
		inner, err := marshalAtom(l.Atom)
		if err != nil {
			return nil, err
		}
		return json.Marshal(wireNode{Kind: "negation", Body: []json.RawMessage{inner}})
	case BinaryConstraint:
		lhs, err := marshalArgument(l.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := marshalArgument(l.RHS)
		if err != nil {
			return nil, err
		}
		return json.Marshal(wireNode{Kind: "constraint", Op: l.Op, LHS: lhs, RHS: rhs})
	case UnhandledLiteral:
		return json.Marshal(wireNode{Kind: "unhandledLiteral", Printed: l.Printed})
	default:
		return nil, fmt.Errorf("ast: unsupported literal type %T", lit)
	}
}

func unmarshalLiteral(raw json.RawMessage) (Literal, error) {
	var n wireNode
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, err
	}
	switch n.Kind {
	case "atom":
		concrete, err := unmarshalArgs(n.Concrete)
		if err != nil {
			return nil, err
		}
		lattice, err := unmarshalArgs(n.Lattice)
		if err != nil {
			return nil, err
		}
		return Atom{Name: n.Relation, Concrete: concrete, Lattice: lattice}, nil
	case "negation":
		if len(n.Body) != 1 {
			return nil, fmt.Errorf("ast: negation must wrap exactly one atom")
		}
		inner, err := unmarshalLiteral(n.Body[0])
		if err != nil {
			return nil, err
		}
		atom, ok := inner.(Atom)
		if !ok {
			return nil, fmt.Errorf("ast: negation must wrap an atom")
		}
		return Negation{Atom: atom}, nil
	case "constraint":
		lhs, err := unmarshalArgument(n.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := unmarshalArgument(n.RHS)
		if err != nil {
			return nil, err
		}
		return BinaryConstraint{Op: n.Op, LHS: lhs, RHS: rhs}, nil
	case "unhandledLiteral":
		return UnhandledLiteral{Printed: n.Printed}, nil
	default:
		return nil, fmt.Errorf("ast: unknown literal kind %q", n.Kind)
	}
}

func marshalArgument(arg Argument) (json.RawMessage, error) {
	switch a := arg.(type) {
	case Variable:
		return json.Marshal(wireNode{Kind: "var", Name: a.Name})
	case UnnamedVariable:
		return json.Marshal(wireNode{Kind: "unnamed"})
	case NumericConstant:
		return json.Marshal(wireNode{Kind: "numeric", Text: a.Text, NumKind: a.Kind.String()})
	case StringConstant:
		return json.Marshal(wireNode{Kind: "string", Text: a.Text})
	case NilConstant:
		return json.Marshal(wireNode{Kind: "nil"})
	case RecordInit:
		args, err := marshalArgs(a.Args)
		if err != nil {
			return nil, err
		}
		return json.Marshal(wireNode{Kind: "record", Args: args})
	case IntrinsicFunctor:
		args, err := marshalArgs(a.Args)
		if err != nil {
			return nil, err
		}
		return json.Marshal(wireNode{Kind: "intrinsic", Op: a.Op, Args: args})
	case UserFunctor:
		args, err := marshalArgs(a.Args)
		if err != nil {
			return nil, err
		}
		return json.Marshal(wireNode{Kind: "functor", Func: a.Name, Args: args})
	case Aggregator:
		var target json.RawMessage
		if a.Target != nil {
			raw, err := marshalArgument(a.Target)
			if err != nil {
				return nil, err
			}
			target = raw
		}
		body, err := marshalLiterals(a.Body)
		if err != nil {
			return nil, err
		}
		return json.Marshal(wireNode{Kind: "aggregator", Op: a.Op, Target: target, Body: body})
	case UnhandledArgument:
		return json.Marshal(wireNode{Kind: "unhandledArgument", Printed: a.Printed})
	default:
		return nil, fmt.Errorf("ast: unsupported argument type %T", arg)
	}
}

func unmarshalArgs(raws []json.RawMessage) ([]Argument, error) {
	out := make([]Argument, len(raws))
	for i, raw := range raws {
		a, err := unmarshalArgument(raw)
		if err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}

func unmarshalArgument(raw json.RawMessage) (Argument, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var n wireNode
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, err
	}
	switch n.Kind {
	case "var":
		return Variable{Name: n.Name}, nil
	case "unnamed":
		return UnnamedVariable{}, nil
	case "numeric":
		kind, _ := numericKindByName(n.NumKind)
		return NumericConstant{Text: n.Text, Kind: kind}, nil
	case "string":
		return StringConstant{Text: n.Text}, nil
	case "nil":
		return NilConstant{}, nil
	case "record":
		args, err := unmarshalArgs(n.Args)
		if err != nil {
			return nil, err
		}
		return RecordInit{Args: args}, nil
	case "intrinsic":
		args, err := unmarshalArgs(n.Args)
		if err != nil {
			return nil, err
		}
		return IntrinsicFunctor{Op: n.Op, Args: args}, nil
	case "functor":
		args, err := unmarshalArgs(n.Args)
		if err != nil {
			return nil, err
		}
		return UserFunctor{Name: n.Func, Args: args}, nil
	case "aggregator":
		var target Argument
		if len(n.Target) > 0 {
			t, err := unmarshalArgument(n.Target)
			if err != nil {
				return nil, err
			}
			target = t
		}
		var body []Literal
		for _, raw := range n.Body {
			lit, err := unmarshalLiteral(raw)
			if err != nil {
				return nil, err
			}
			body = append(body, lit)
		}
		return Aggregator{Op: n.Op, Target: target, Body: body}, nil
	case "unhandledArgument":
		return UnhandledArgument{Printed: n.Printed}, nil
	default:
		return nil, fmt.Errorf("ast: unknown argument kind %q", n.Kind)
	}
}

func directiveKindName(k IODirectiveKind) string {
	switch k {
	case DirectiveInput:
		return "input"
	case DirectiveOutput:
		return "output"
	case DirectivePrintsize:
		return "printsize"
	case DirectiveLimitsize:
		return "limitsize"
	default:
		return "input"
	}
}

func directiveKindByName(name string) (IODirectiveKind, bool) {
	switch name {
	case "input":
		return DirectiveInput, true
	case "output":
		return DirectiveOutput, true
	case "printsize":
		return DirectivePrintsize, true
	case "limitsize":
		return DirectiveLimitsize, true
	default:
		return 0, false
	}
}

func qualifierByName(name string) (Qualifier, bool) {
	for q := QualInput; q <= QualSuppressed; q++ {
		if q.String() == name {
			return q, true
		}
	}
	return 0, false
}

func representationByName(name string) (Representation, bool) {
	switch name {
	case "btree":
		return RepBTree, true
	case "brie":
		return RepBrie, true
	case "eqrel":
		return RepEqrel, true
	case "default", "":
		return RepDefault, true
	default:
		return 0, false
	}
}

func numericKindByName(name string) (NumericKind, bool) {
	switch name {
	case "int":
		return NumericInt, true
	case "uint":
		return NumericUint, true
	case "float":
		return NumericFloat, true
	default:
		return NumericUnresolved, true
	}
}
