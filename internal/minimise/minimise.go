// Package minimise implements the program-minimisation pipeline: a fixed
// sequence of reductions — body deduplication, tautology removal, local
// equivalence reduction, and singleton-relation folding — iterated to a
// fixed point of observable progress.
package minimise

import (
	"github.com/dlogc/dlc/ast"
	"github.com/dlogc/dlc/internal/collab"
	"github.com/dlogc/dlc/internal/equiv"
	"github.com/dlogc/dlc/internal/normalize"
)

// cache memoises clause normalisation within a single Pipeline.Run call,
// invalidated in full whenever any reduction reports a change — cheaper
// than content-hash keying since the pipeline owns every clause pointer
// for the run's duration and mutations happen in place.
type cache struct {
	normalizer *normalize.Normalizer
	memo       map[*ast.Clause]*ast.NormalisedClause
}

func newCache() *cache {
	return &cache{normalizer: normalize.NewNormalizer(), memo: make(map[*ast.Clause]*ast.NormalisedClause)}
}

func (c *cache) normalised(cl *ast.Clause) *ast.NormalisedClause {
	if nc, ok := c.memo[cl]; ok {
		return nc
	}
	nc := c.normalizer.Normalize(cl)
	c.memo[cl] = nc
	return nc
}

func (c *cache) invalidate() {
	c.memo = make(map[*ast.Clause]*ast.NormalisedClause)
}

type reduction func(prog *ast.Program, deps *collab.Set, c *cache) bool

// Pipeline holds the four reductions in fixed order — not a name-keyed
// registry, since the order is mandatory, not a matter of configuration.
type Pipeline struct {
	reductions []reduction
}

// NewPipeline returns a Pipeline running the reductions in the required
// order: body dedup, tautology removal, local equivalence, singleton fold.
func NewPipeline() *Pipeline {
	return &Pipeline{
		reductions: []reduction{
			reduceClauseBodies,
			removeRedundantClauses,
			reduceLocallyEquivalentClauses,
			reduceSingletonRelations,
		},
	}
}

// Run applies the pipeline to prog until a full pass makes no change,
// invalidating the normalisation cache after every reduction that changed
// anything so downstream steps observe a self-consistent program state.
// Reports whether any pass changed the program.
func (p *Pipeline) Run(prog *ast.Program, deps *collab.Set) bool {
	c := newCache()
	overallChanged := false

	for {
		passChanged := false
		for _, r := range p.reductions {
			if r(prog, deps, c) {
				passChanged = true
				c.invalidate()
			}
		}
		if !passChanged {
			break
		}
		overallChanged = true
	}

	return overallChanged
}

// reduceClauseBodies drops every body literal that is structurally equal
// to a preceding body literal in the same clause.
func reduceClauseBodies(prog *ast.Program, _ *collab.Set, _ *cache) bool {
	changed := false
	for _, c := range prog.Clauses() {
		kept := make([]ast.Literal, 0, len(c.Body))
		for _, lit := range c.Body {
			dup := false
			for _, k := range kept {
				if ast.LiteralsEqual(lit, k) {
					dup = true
					break
				}
			}
			if !dup {
				kept = append(kept, lit)
			}
		}
		if len(kept) != len(c.Body) {
			c.Body = kept
			changed = true
		}
	}
	return changed
}

// removeRedundantClauses deletes clauses whose head appears
// structurally-equally as one of their own body literals.
func removeRedundantClauses(prog *ast.Program, _ *collab.Set, _ *cache) bool {
	var kept []*ast.Clause
	changed := false

	for _, c := range prog.Clauses() {
		redundant := false
		for _, lit := range c.Body {
			if ast.LiteralsEqual(c.Head, lit) {
				redundant = true
				break
			}
		}
		if redundant {
			changed = true
		} else {
			kept = append(kept, c)
		}
	}

	if changed {
		prog.SetClauses(kept)
	}
	return changed
}

// reduceLocallyEquivalentClauses partitions each relation's clause set
// into bijective-equivalence classes and keeps one representative per
// class, in source order.
func reduceLocallyEquivalentClauses(prog *ast.Program, _ *collab.Set, c *cache) bool {
	drop := make(map[*ast.Clause]bool)

	for _, rel := range prog.Relations() {
		clauses := prog.ClausesForRelation(rel.Name)
		var representatives []*ast.Clause
		for _, cl := range clauses {
			isDup := false
			for _, rep := range representatives {
				ok, _ := equiv.AreBijectivelyEquivalent(c.normalised(cl), c.normalised(rep))
				if ok {
					isDup = true
					break
				}
			}
			if isDup {
				drop[cl] = true
			} else {
				representatives = append(representatives, cl)
			}
		}
	}

	if len(drop) == 0 {
		return false
	}

	var kept []*ast.Clause
	for _, cl := range prog.Clauses() {
		if !drop[cl] {
			kept = append(kept, cl)
		}
	}
	prog.SetClauses(kept)
	return true
}

// reduceSingletonRelations folds a non-I/O relation into another
// bijectively-equivalent non-I/O relation, provided both have exactly one
// defining clause, then rewrites every remaining Atom reference.
func reduceSingletonRelations(prog *ast.Program, deps *collab.Set, c *cache) bool {
	isIO := func(name ast.QualifiedName) bool {
		return deps != nil && deps.IO != nil && deps.IO.IsIO(name)
	}

	var singleton []*ast.Relation
	for _, rel := range prog.Relations() {
		if isIO(rel.Name) {
			continue
		}
		if prog.HasQualifiedDescendant(rel.Name) {
			// A component-qualified family of other relations is nested
			// under this name; folding it away would orphan them.
			continue
		}
		if len(prog.ClausesForRelation(rel.Name)) == 1 {
			singleton = append(singleton, rel)
		}
	}

	redundant := make(map[string]bool)
	canonical := make(map[string]ast.QualifiedName)
	var redundantNames []ast.QualifiedName

	for i, p := range singleton {
		if redundant[p.Name.String()] {
			continue
		}
		pClause := prog.ClausesForRelation(p.Name)[0]

		for j := i + 1; j < len(singleton); j++ {
			q := singleton[j]
			if redundant[q.Name.String()] {
				continue
			}
			qClause := prog.ClausesForRelation(q.Name)[0]

			ok, _ := equiv.AreBijectivelyEquivalent(c.normalised(pClause), c.normalised(qClause))
			if ok {
				redundant[q.Name.String()] = true
				canonical[q.Name.String()] = p.Name
				redundantNames = append(redundantNames, q.Name)
			}
		}
	}

	if len(canonical) == 0 {
		return false
	}

	prog.RewriteAtomNames(canonical)
	for _, name := range redundantNames {
		prog.RemoveRelation(name)
	}
	return true
}
