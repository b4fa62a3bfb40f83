package ast

import (
	"fmt"
	"go/token"
	"strings"
)

// NumericKind tags the inferred type of a NumericConstant. Final typing
// happens during type inference, an external collaborator; until then the
// tag reflects only the literal's surface form.
type NumericKind int

const (
	NumericUnresolved NumericKind = iota
	NumericInt
	NumericUint
	NumericFloat
)

func (k NumericKind) String() string {
	switch k {
	case NumericInt:
		return "int"
	case NumericUint:
		return "uint"
	case NumericFloat:
		return "float"
	default:
		return "unresolved"
	}
}

// Argument is a Datalog term: a variable, a constant, a record
// initializer, a functor application, or an aggregate.
type Argument interface {
	isArgument()
	String() string
	Position() token.Pos
	Clone() Argument
}

// Variable is a named variable occurrence.
type Variable struct {
	Name string
	Pos  token.Pos
}

func (Variable) isArgument()          {}
func (v Variable) String() string     { return v.Name }
func (v Variable) Position() token.Pos { return v.Pos }
func (v Variable) Clone() Argument    { return v }

// UnnamedVariable is the `_` wildcard; distinct occurrences within a clause
// are distinguished only by normalisation (§4.1), never by identity here.
type UnnamedVariable struct {
	Pos token.Pos
}

func (UnnamedVariable) isArgument()          {}
func (UnnamedVariable) String() string       { return "_" }
func (u UnnamedVariable) Position() token.Pos { return u.Pos }
func (u UnnamedVariable) Clone() Argument    { return u }

// NumericConstant is a numeric literal carrying its printed form and an
// inferred-type tag that is only final once an external type-inference
// pass has run.
type NumericConstant struct {
	Text string
	Kind NumericKind
	Pos  token.Pos
}

func (NumericConstant) isArgument()          {}
func (n NumericConstant) String() string     { return n.Text }
func (n NumericConstant) Position() token.Pos { return n.Pos }
func (n NumericConstant) Clone() Argument    { return n }

// StringConstant is a quoted string literal.
type StringConstant struct {
	Text string
	Pos  token.Pos
}

func (StringConstant) isArgument()          {}
func (s StringConstant) String() string     { return fmt.Sprintf("%q", s.Text) }
func (s StringConstant) Position() token.Pos { return s.Pos }
func (s StringConstant) Clone() Argument    { return s }

// NilConstant is the empty-record/nil literal.
type NilConstant struct {
	Pos token.Pos
}

func (NilConstant) isArgument()          {}
func (NilConstant) String() string       { return "nil" }
func (n NilConstant) Position() token.Pos { return n.Pos }
func (n NilConstant) Clone() Argument    { return n }

// RecordInit is a record constructor `[a1, a2, ...]`.
type RecordInit struct {
	Args []Argument
	Pos  token.Pos
}

func (RecordInit) isArgument()          {}
func (r RecordInit) Position() token.Pos { return r.Pos }
func (r RecordInit) String() string {
	parts := make([]string, len(r.Args))
	for i, a := range r.Args {
		parts[i] = a.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (r RecordInit) Clone() Argument {
	args := make([]Argument, len(r.Args))
	for i, a := range r.Args {
		args[i] = a.Clone()
	}
	return RecordInit{Args: args, Pos: r.Pos}
}

// IntrinsicFunctor is a built-in operator applied to arguments, e.g. `x + y`.
type IntrinsicFunctor struct {
	Op   string
	Args []Argument
	Pos  token.Pos
}

func (IntrinsicFunctor) isArgument()          {}
func (f IntrinsicFunctor) Position() token.Pos { return f.Pos }
func (f IntrinsicFunctor) String() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.String()
	}
	return f.Op + "(" + strings.Join(parts, ", ") + ")"
}
func (f IntrinsicFunctor) Clone() Argument {
	args := make([]Argument, len(f.Args))
	for i, a := range f.Args {
		args[i] = a.Clone()
	}
	return IntrinsicFunctor{Op: f.Op, Args: args, Pos: f.Pos}
}

// UserFunctor is a call to a user-declared functor.
type UserFunctor struct {
	Name QualifiedName
	Args []Argument
	Pos  token.Pos
}

func (UserFunctor) isArgument()          {}
func (f UserFunctor) Position() token.Pos { return f.Pos }
func (f UserFunctor) String() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.String()
	}
	return f.Name.String() + "(" + strings.Join(parts, ", ") + ")"
}
func (f UserFunctor) Clone() Argument {
	args := make([]Argument, len(f.Args))
	for i, a := range f.Args {
		args[i] = a.Clone()
	}
	return UserFunctor{Name: f.Name.Clone(), Args: args, Pos: f.Pos}
}

// Aggregator is `op target : { body }`, e.g. `count : { r(x) }`.
type Aggregator struct {
	Op     string
	Target Argument // optional; nil for count
	Body   []Literal
	Pos    token.Pos
}

func (Aggregator) isArgument()          {}
func (a Aggregator) Position() token.Pos { return a.Pos }
func (a Aggregator) String() string {
	var sb strings.Builder
	sb.WriteString(a.Op)
	if a.Target != nil {
		sb.WriteString(" " + a.Target.String())
	}
	sb.WriteString(" : { ")
	for i, l := range a.Body {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(l.String())
	}
	sb.WriteString(" }")
	return sb.String()
}
func (a Aggregator) Clone() Argument {
	var target Argument
	if a.Target != nil {
		target = a.Target.Clone()
	}
	body := make([]Literal, len(a.Body))
	for i, l := range a.Body {
		body[i] = l.Clone()
	}
	return Aggregator{Op: a.Op, Target: target, Body: body, Pos: a.Pos}
}

// UnhandledArgument represents a syntactic construct the AST model does not
// (yet) know how to represent losslessly. It round-trips its printed form
// so that normalisation can still degrade gracefully (§4.1, fullyNormalised).
type UnhandledArgument struct {
	Printed string
	Pos     token.Pos
}

func (UnhandledArgument) isArgument()          {}
func (u UnhandledArgument) String() string      { return u.Printed }
func (u UnhandledArgument) Position() token.Pos { return u.Pos }
func (u UnhandledArgument) Clone() Argument    { return u }

// Constructors for building Arguments without a literal struct at each call site.

func Var(name string) Argument              { return Variable{Name: name} }
func Unnamed() Argument                     { return UnnamedVariable{} }
func NumConst(text string, kind NumericKind) Argument {
	return NumericConstant{Text: text, Kind: kind}
}
func StrConst(text string) Argument { return StringConstant{Text: text} }
func Nil() Argument                 { return NilConstant{} }
func Record(args ...Argument) Argument {
	return RecordInit{Args: args}
}
func Intrinsic(op string, args ...Argument) Argument {
	return IntrinsicFunctor{Op: op, Args: args}
}
func Functor(name QualifiedName, args ...Argument) Argument {
	return UserFunctor{Name: name, Args: args}
}
func Agg(op string, target Argument, body ...Literal) Argument {
	return Aggregator{Op: op, Target: target, Body: body}
}
