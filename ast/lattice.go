package ast

// Lattice is a declaration of a lattice type: a base type plus the five
// operations that make it a lattice. It is immutable after construction
// (§3 invariant) — callers must build a new value rather than mutate one.
type Lattice struct {
	name string
	base QualifiedName
	leq  QualifiedName
	lub  QualifiedName
	glb  QualifiedName
	bot  QualifiedName
	top  QualifiedName
}

// NewLattice constructs an immutable Lattice declaration.
func NewLattice(name string, base, leq, lub, glb, bot, top QualifiedName) Lattice {
	return Lattice{
		name: name,
		base: base.Clone(),
		leq:  leq.Clone(),
		lub:  lub.Clone(),
		glb:  glb.Clone(),
		bot:  bot.Clone(),
		top:  top.Clone(),
	}
}

func (l Lattice) Name() string        { return l.name }
func (l Lattice) Base() QualifiedName { return l.base }
func (l Lattice) Leq() QualifiedName  { return l.leq }
func (l Lattice) Lub() QualifiedName  { return l.lub }
func (l Lattice) Glb() QualifiedName  { return l.glb }
func (l Lattice) Bot() QualifiedName  { return l.bot }
func (l Lattice) Top() QualifiedName  { return l.top }

func (l Lattice) String() string {
	return ".lattice " + l.name + " <" + l.base.String() + ", " + l.leq.String() +
		", " + l.lub.String() + ", " + l.glb.String() + ", " + l.bot.String() + ", " + l.top.String() + ">"
}
