// Package collab defines the narrow interfaces the core consumes from
// external collaborators — the parser, the type checker, and the
// profiler — without depending on their implementations.
package collab

import "github.com/dlogc/dlc/ast"

// IOAnalysis reports whether a relation is externally observable.
type IOAnalysis interface {
	IsIO(name ast.QualifiedName) bool
}

// ProfileAnalysis reports a relation's observed tuple count, when known.
type ProfileAnalysis interface {
	RelationSize(name ast.QualifiedName) (size int64, known bool)
}

// FunctorAnalysis reports whether a user functor can produce more than
// one result per invocation.
type FunctorAnalysis interface {
	IsMultiResult(name ast.QualifiedName) bool
}

// Set bundles the three collaborator contracts a transformer needs.
type Set struct {
	IO      IOAnalysis
	Profile ProfileAnalysis
	Functor FunctorAnalysis
}

// StaticIOAnalysis answers IsIO from a fixed set of relation names,
// computed once from a Program's own input/output/printsize/limitsize
// directives.
type StaticIOAnalysis struct {
	io map[string]bool
}

// NewStaticIOAnalysis builds a StaticIOAnalysis from prog's declared
// relations and directives: a relation is I/O when it carries the
// INPUT or OUTPUT qualifier, or appears as the target of an input,
// output, printsize, or limitsize directive.
func NewStaticIOAnalysis(prog *ast.Program) *StaticIOAnalysis {
	io := make(map[string]bool)
	for _, r := range prog.Relations() {
		if r.IsIODirective() {
			io[r.Name.String()] = true
		}
	}
	for _, d := range prog.Directives {
		io[d.Relation.String()] = true
	}
	return &StaticIOAnalysis{io: io}
}

func (s *StaticIOAnalysis) IsIO(name ast.QualifiedName) bool {
	return s.io[name.String()]
}

// NoMultiResultFunctors always answers false — the conservative default
// when no functor signature information is available.
type NoMultiResultFunctors struct{}

func (NoMultiResultFunctors) IsMultiResult(ast.QualifiedName) bool { return false }

// StaticProfileAnalysis answers RelationSize from a fixed table, typically
// decoded from a profile file by the CLI layer.
type StaticProfileAnalysis struct {
	sizes map[string]int64
}

// NewStaticProfileAnalysis wraps a name-to-size table.
func NewStaticProfileAnalysis(sizes map[string]int64) *StaticProfileAnalysis {
	return &StaticProfileAnalysis{sizes: sizes}
}

func (s *StaticProfileAnalysis) RelationSize(name ast.QualifiedName) (int64, bool) {
	size, ok := s.sizes[name.String()]
	return size, ok
}
