// Package ast defines the abstract syntax tree for Datalog programs with
// lattice-valued relations: qualified names, arguments, literals, clauses,
// relations, lattice declarations, and the program that ties them together.
package ast

import "strings"

// QualifiedName is an ordered sequence of identifier segments, e.g. the
// "a.b.c" of a component-qualified relation reference.
type QualifiedName []string

// NewQualifiedName builds a QualifiedName from individual segments.
func NewQualifiedName(segments ...string) QualifiedName {
	out := make(QualifiedName, len(segments))
	copy(out, segments)
	return out
}

// Prepend returns a new QualifiedName with segment inserted at the front.
func (q QualifiedName) Prepend(segment string) QualifiedName {
	out := make(QualifiedName, 0, len(q)+1)
	out = append(out, segment)
	out = append(out, q...)
	return out
}

// Append returns a new QualifiedName with segment inserted at the back.
func (q QualifiedName) Append(segment string) QualifiedName {
	out := make(QualifiedName, 0, len(q)+1)
	out = append(out, q...)
	out = append(out, segment)
	return out
}

// Equal reports whether two qualified names have pointwise-equal segments.
func (q QualifiedName) Equal(other QualifiedName) bool {
	if len(q) != len(other) {
		return false
	}
	for i := range q {
		if q[i] != other[i] {
			return false
		}
	}
	return true
}

// Less defines a total order over qualified names: segment-wise lexical
// comparison, with a shorter name ordering before a longer one that shares
// its prefix.
func (q QualifiedName) Less(other QualifiedName) bool {
	n := len(q)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		if q[i] != other[i] {
			return q[i] < other[i]
		}
	}
	return len(q) < len(other)
}

// String renders the qualified name as dot-joined segments.
func (q QualifiedName) String() string {
	return strings.Join(q, ".")
}

// Clone returns an independent copy of the qualified name.
func (q QualifiedName) Clone() QualifiedName {
	out := make(QualifiedName, len(q))
	copy(out, q)
	return out
}
