package ast

import (
	"go/token"
	"strings"
)

// Literal is a body element of a clause: an atom, a negated atom, or a
// binary constraint between two arguments.
type Literal interface {
	isLiteral()
	String() string
	Position() token.Pos
	Clone() Literal
}

// Atom is a relation reference `R(c1, ..., ck; l1, ..., lm)`.
type Atom struct {
	Name     QualifiedName
	Concrete []Argument
	Lattice  []Argument
	Pos      token.Pos
}

func (Atom) isLiteral()          {}
func (a Atom) Position() token.Pos { return a.Pos }
func (a Atom) String() string {
	var sb strings.Builder
	sb.WriteString(a.Name.String())
	sb.WriteString("(")
	for i, c := range a.Concrete {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.String())
	}
	if len(a.Lattice) > 0 {
		sb.WriteString(" ; ")
		for i, l := range a.Lattice {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(l.String())
		}
	}
	sb.WriteString(")")
	return sb.String()
}
func (a Atom) Clone() Literal {
	return Atom{
		Name:     a.Name.Clone(),
		Concrete: cloneArgs(a.Concrete),
		Lattice:  cloneArgs(a.Lattice),
		Pos:      a.Pos,
	}
}

// CloneAtom is a typed convenience wrapper around Atom.Clone used by
// callers (e.g. singleton-fold rewriting) that need the concrete type back.
func (a Atom) CloneAtom() Atom { return a.Clone().(Atom) }

func cloneArgs(args []Argument) []Argument {
	out := make([]Argument, len(args))
	for i, a := range args {
		out[i] = a.Clone()
	}
	return out
}

// Negation wraps exactly one Atom (§3 invariant).
type Negation struct {
	Atom Atom
	Pos  token.Pos
}

func (Negation) isLiteral()          {}
func (n Negation) Position() token.Pos { return n.Pos }
func (n Negation) String() string     { return "!" + n.Atom.String() }
func (n Negation) Clone() Literal {
	return Negation{Atom: n.Atom.CloneAtom(), Pos: n.Pos}
}

// BinaryConstraint is `lhs op rhs`; operands are never null (§3 invariant).
type BinaryConstraint struct {
	Op  string
	LHS Argument
	RHS Argument
	Pos token.Pos
}

func (BinaryConstraint) isLiteral()          {}
func (b BinaryConstraint) Position() token.Pos { return b.Pos }
func (b BinaryConstraint) String() string {
	return b.LHS.String() + " " + b.Op + " " + b.RHS.String()
}
func (b BinaryConstraint) Clone() Literal {
	return BinaryConstraint{Op: b.Op, LHS: b.LHS.Clone(), RHS: b.RHS.Clone(), Pos: b.Pos}
}

// UnhandledLiteral mirrors UnhandledArgument at the literal level.
type UnhandledLiteral struct {
	Printed string
	Pos     token.Pos
}

func (UnhandledLiteral) isLiteral()          {}
func (u UnhandledLiteral) Position() token.Pos { return u.Pos }
func (u UnhandledLiteral) String() string      { return u.Printed }
func (u UnhandledLiteral) Clone() Literal      { return u }

// Constructors.

func NewAtom(name QualifiedName, concrete, lattice []Argument) Atom {
	return Atom{Name: name, Concrete: concrete, Lattice: lattice}
}

func Neg(a Atom) Literal { return Negation{Atom: a} }

func BinOp(op string, lhs, rhs Argument) Literal {
	return BinaryConstraint{Op: op, LHS: lhs, RHS: rhs}
}

// LiteralsEqual reports deep structural equality between two literals,
// ignoring source position — used by reduceClauseBodies/removeRedundantClauses
// (§4.3a/b), which operate on "structurally equal" literals, not identity.
func LiteralsEqual(a, b Literal) bool {
	switch x := a.(type) {
	case Atom:
		y, ok := b.(Atom)
		return ok && atomsEqual(x, y)
	case Negation:
		y, ok := b.(Negation)
		return ok && atomsEqual(x.Atom, y.Atom)
	case BinaryConstraint:
		y, ok := b.(BinaryConstraint)
		return ok && x.Op == y.Op && ArgumentsEqual(x.LHS, y.LHS) && ArgumentsEqual(x.RHS, y.RHS)
	case UnhandledLiteral:
		y, ok := b.(UnhandledLiteral)
		return ok && x.Printed == y.Printed
	default:
		return false
	}
}

func atomsEqual(a, b Atom) bool {
	if !a.Name.Equal(b.Name) {
		return false
	}
	return argSliceEqual(a.Concrete, b.Concrete) && argSliceEqual(a.Lattice, b.Lattice)
}

func argSliceEqual(a, b []Argument) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ArgumentsEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// ArgumentsEqual reports deep structural equality between two arguments,
// ignoring source position.
func ArgumentsEqual(a, b Argument) bool {
	switch x := a.(type) {
	case Variable:
		y, ok := b.(Variable)
		return ok && x.Name == y.Name
	case UnnamedVariable:
		_, ok := b.(UnnamedVariable)
		return ok
	case NumericConstant:
		y, ok := b.(NumericConstant)
		return ok && x.Text == y.Text
	case StringConstant:
		y, ok := b.(StringConstant)
		return ok && x.Text == y.Text
	case NilConstant:
		_, ok := b.(NilConstant)
		return ok
	case RecordInit:
		y, ok := b.(RecordInit)
		return ok && argSliceEqual(x.Args, y.Args)
	case IntrinsicFunctor:
		y, ok := b.(IntrinsicFunctor)
		return ok && x.Op == y.Op && argSliceEqual(x.Args, y.Args)
	case UserFunctor:
		y, ok := b.(UserFunctor)
		return ok && x.Name.Equal(y.Name) && argSliceEqual(x.Args, y.Args)
	case Aggregator:
		y, ok := b.(Aggregator)
		if !ok || x.Op != y.Op || len(x.Body) != len(y.Body) {
			return false
		}
		if (x.Target == nil) != (y.Target == nil) {
			return false
		}
		if x.Target != nil && !ArgumentsEqual(x.Target, y.Target) {
			return false
		}
		for i := range x.Body {
			if !LiteralsEqual(x.Body[i], y.Body[i]) {
				return false
			}
		}
		return true
	case UnhandledArgument:
		y, ok := b.(UnhandledArgument)
		return ok && x.Printed == y.Printed
	default:
		return false
	}
}
