package ast

import (
	"fmt"

	"github.com/dlogc/dlc/internal/trie"
)

// IODirectiveKind tags the four directive forms §6 names.
type IODirectiveKind int

const (
	DirectiveInput IODirectiveKind = iota
	DirectiveOutput
	DirectivePrintsize
	DirectiveLimitsize
)

// IODirective attaches a directive to a relation, optionally carrying a
// limit value (used by limitsize).
type IODirective struct {
	Kind     IODirectiveKind
	Relation QualifiedName
	Limit    int64
}

// TypeDecl is an opaque type declaration; the core does not interpret type
// bodies (semantic type checking is a Non-goal), only names them.
type TypeDecl struct {
	Name QualifiedName
}

// FunctorDecl declares a user functor's name; its argument/return types are
// an external collaborator's concern.
type FunctorDecl struct {
	Name QualifiedName
}

// ComponentDecl and ComponentInst model `.comp`/component instantiation at
// the level the core needs: names only, since component expansion happens
// upstream of the transformations specified here.
type ComponentDecl struct {
	Name QualifiedName
}

type ComponentInst struct {
	Name      QualifiedName
	Component QualifiedName
}

// Pragma is a `#pragma` directive, name plus optional value text.
type Pragma struct {
	Name  string
	Value string
}

// Program is the top-level container: relations, clauses, and the
// declaration sets that accompany them.
type Program struct {
	relations map[string]*Relation
	// relationOrder preserves declaration order for deterministic iteration
	// and output, since Go map iteration order is unspecified.
	relationOrder []string

	clauses []*Clause

	Types      []TypeDecl
	Lattices   []Lattice
	Functors   []FunctorDecl
	Components []ComponentDecl
	Instances  []ComponentInst
	Pragmas    []Pragma
	Directives []IODirective

	names *trie.QualifiedNameIndex
}

// NewProgram returns an empty Program ready for construction via
// AddRelation/AddClause.
func NewProgram() *Program {
	return &Program{
		relations: make(map[string]*Relation),
		names:     trie.NewQualifiedNameIndex(),
	}
}

// AddRelation registers relation, enforcing name uniqueness (§3 invariant:
// "A mapping from relation name to Relation (unique)"). Returns a
// *RedefinitionError naming the earlier declaration's position on
// collision, matching the redefinition-error taxonomy of §7; the driver
// layer converts this into a structured diag.Report.
func (p *Program) AddRelation(r *Relation) error {
	key := r.Name.String()
	if existing, ok := p.relations[key]; ok {
		return &RedefinitionError{
			Relation: r.Name,
			Detail:   fmt.Sprintf("relation %s already declared at %v", key, existing.Pos),
		}
	}
	p.relations[key] = r
	p.relationOrder = append(p.relationOrder, key)
	p.names.InsertPayload(r.Name, r)
	return nil
}

// RedefinitionError reports that a declaration collided with an earlier
// one. AddRelation returns it for a duplicate relation name and
// AddDirective for a second printsize/limitsize directive on the same
// relation; type, lattice and functor declarations are not checked for
// collisions. It is a plain error type here since ast cannot import
// internal/diag (diag.Report itself references ast.QualifiedName).
type RedefinitionError struct {
	Relation QualifiedName
	Detail   string
}

func (e *RedefinitionError) Error() string { return e.Detail }

// HasQualifiedPrefix reports whether any declared relation name begins
// with prefix's segments — used when resolving a component-qualified
// relation reference to detect a shadowing collision before instantiation.
func (p *Program) HasQualifiedPrefix(prefix QualifiedName) bool {
	return p.names.StartsWith(prefix)
}

// HasQualifiedDescendant reports whether any declared relation name is
// properly nested under name's segments — used by the singleton-fold
// reduction to avoid renaming away a relation that a component-qualified
// family of other relations is nested under.
func (p *Program) HasQualifiedDescendant(name QualifiedName) bool {
	return p.names.HasDescendants(name)
}

// Relation looks up a relation by qualified name.
func (p *Program) Relation(name QualifiedName) (*Relation, bool) {
	r, ok := p.relations[name.String()]
	return r, ok
}

// RemoveRelation deletes a relation from the program (used by
// reduceSingletonRelations, §4.3d).
func (p *Program) RemoveRelation(name QualifiedName) {
	key := name.String()
	if _, ok := p.relations[key]; !ok {
		return
	}
	delete(p.relations, key)
	for i, k := range p.relationOrder {
		if k == key {
			p.relationOrder = append(p.relationOrder[:i], p.relationOrder[i+1:]...)
			break
		}
	}
}

// Relations returns every relation in declaration order.
func (p *Program) Relations() []*Relation {
	out := make([]*Relation, 0, len(p.relationOrder))
	for _, key := range p.relationOrder {
		out = append(out, p.relations[key])
	}
	return out
}

// AddClause appends clause to the program's clause set. Multiple clauses
// may share a head relation (§3: "the set of all clauses (head-relation
// may repeat)").
func (p *Program) AddClause(c *Clause) {
	p.clauses = append(p.clauses, c)
}

// Clauses returns every clause in the program, in insertion order.
func (p *Program) Clauses() []*Clause { return p.clauses }

// SetClauses replaces the program's clause set wholesale — used by
// internal/minimise once a reduction has computed the surviving set.
func (p *Program) SetClauses(cs []*Clause) { p.clauses = cs }

// ClausesForRelation returns, in order, every clause whose head names
// relation.
func (p *Program) ClausesForRelation(relation QualifiedName) []*Clause {
	var out []*Clause
	for _, c := range p.clauses {
		if c.Head.Name.Equal(relation) {
			out = append(out, c)
		}
	}
	return out
}

// AddDirective validates and records an I/O directive, enforcing "at most
// one printsize and one limitsize directive per relation" (§3 invariant).
func (p *Program) AddDirective(d IODirective) error {
	if d.Kind == DirectivePrintsize || d.Kind == DirectiveLimitsize {
		for _, existing := range p.Directives {
			if existing.Kind == d.Kind && existing.Relation.Equal(d.Relation) {
				return &RedefinitionError{
					Relation: d.Relation,
					Detail:   fmt.Sprintf("duplicate %v directive for relation %s", d.Kind, d.Relation),
				}
			}
		}
	}
	p.Directives = append(p.Directives, d)
	return nil
}

// RewriteAtomNames traverses every clause top-down and replaces any Atom
// whose qualified name is a key of rename with the mapped canonical name,
// preserving all other subnodes — the singleton-fold rewrite step of
// §4.3d.
func (p *Program) RewriteAtomNames(rename map[string]QualifiedName) {
	for _, c := range p.clauses {
		c.Head = rewriteAtom(c.Head, rename)
		for i, lit := range c.Body {
			c.Body[i] = rewriteLiteral(lit, rename)
		}
	}
}

func rewriteLiteral(lit Literal, rename map[string]QualifiedName) Literal {
	switch l := lit.(type) {
	case Atom:
		return rewriteAtom(l, rename)
	case Negation:
		return Negation{Atom: rewriteAtom(l.Atom, rename), Pos: l.Pos}
	default:
		return lit
	}
}

func rewriteAtom(a Atom, rename map[string]QualifiedName) Atom {
	if canonical, ok := rename[a.Name.String()]; ok {
		a.Name = canonical
	}
	for i, arg := range a.Concrete {
		a.Concrete[i] = rewriteArgument(arg, rename)
	}
	for i, arg := range a.Lattice {
		a.Lattice[i] = rewriteArgument(arg, rename)
	}
	return a
}

func rewriteArgument(arg Argument, rename map[string]QualifiedName) Argument {
	switch v := arg.(type) {
	case Aggregator:
		body := make([]Literal, len(v.Body))
		for i, l := range v.Body {
			body[i] = rewriteLiteral(l, rename)
		}
		v.Body = body
		return v
	default:
		return arg
	}
}
