package ast

import (
	"go/token"
	"strings"
)

// Clause is a head Atom, an ordered body of Literals, an optional
// execution plan, and a source location. A Clause with an empty body is
// a fact; otherwise it is a rule.
type Clause struct {
	Head Atom
	Body []Literal
	// Plan maps version index to an explicit atom evaluation order. A nil
	// Plan means "no explicit plan" — the reorderer (§4.4) is free to act.
	Plan map[int][]int
	Pos  token.Pos
}

// IsFact reports whether the clause has an empty body.
func (c *Clause) IsFact() bool { return len(c.Body) == 0 }

// HasPlan reports whether the clause carries an explicit execution plan,
// in which case the SIPS reorderer must skip it (§4.4 Scope).
func (c *Clause) HasPlan() bool { return c.Plan != nil }

func (c *Clause) String() string {
	var sb strings.Builder
	sb.WriteString(c.Head.String())
	if len(c.Body) > 0 {
		sb.WriteString(" :- ")
		for i, l := range c.Body {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(l.String())
		}
	}
	sb.WriteString(".")
	return sb.String()
}

// Clone returns a deep copy of the clause, including its body and plan.
func (c *Clause) Clone() *Clause {
	body := make([]Literal, len(c.Body))
	for i, l := range c.Body {
		body[i] = l.Clone()
	}
	var plan map[int][]int
	if c.Plan != nil {
		plan = make(map[int][]int, len(c.Plan))
		for k, v := range c.Plan {
			cp := make([]int, len(v))
			copy(cp, v)
			plan[k] = cp
		}
	}
	return &Clause{
		Head: c.Head.CloneAtom(),
		Body: body,
		Plan: plan,
		Pos:  c.Pos,
	}
}

// WithBody returns a clone of the clause with its body replaced, used by
// the SIPS reorder application step (§4.4) to install a permuted body
// without mutating the original in place.
func (c *Clause) WithBody(body []Literal) *Clause {
	clone := c.Clone()
	clone.Body = body
	return clone
}

// NewFact builds a fact clause (empty body).
func NewFact(head Atom) *Clause {
	return &Clause{Head: head}
}

// NewRule builds a rule clause with the given body literals, in order.
func NewRule(head Atom, body ...Literal) *Clause {
	return &Clause{Head: head, Body: body}
}

// BodyAtoms returns the indices and values of every Atom (not Negation,
// not BinaryConstraint) appearing in the body, in source order. This is
// the "atoms only" view the SIPS reorderer and the RAM lowering operate
// over (§4.4 Application).
func (c *Clause) BodyAtoms() (indices []int, atoms []Atom) {
	for i, lit := range c.Body {
		if a, ok := lit.(Atom); ok {
			indices = append(indices, i)
			atoms = append(atoms, a)
		}
	}
	return indices, atoms
}
