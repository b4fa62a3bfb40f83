package sips

import (
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dlogc/dlc/ast"
	"github.com/dlogc/dlc/internal/collab"
)

// profileCost computes log(|R|) * (#free / #args) for atom, the metric
// the profile-guided second pass minimises. Propositions always cost 0,
// winning immediately. An atom whose size is unknown to the profile
// collaborator costs +Inf, so it is placed last rather than guessed at.
func profileCost(atom ast.Atom, bs *BindingStore, profile collab.ProfileAnalysis) float64 {
	arity := len(atom.Concrete)
	if arity == 0 {
		return 0
	}

	free := arity - numBoundArguments(atom, bs)

	size, known := profile.RelationSize(atom.Name)
	if !known || size <= 0 {
		return math.Inf(1)
	}
	return math.Log(float64(size)) * (float64(free) / float64(arity))
}

func chooseLowestCost(remaining []*ast.Atom, bs *BindingStore, profile collab.ProfileAnalysis) int {
	best := -1
	bestCost := math.Inf(1)
	for i, a := range remaining {
		if a == nil {
			continue
		}
		if len(a.Concrete) == 0 {
			return i
		}
		cost := profileCost(*a, bs, profile)
		if best == -1 || cost < bestCost {
			best, bestCost = i, cost
		}
	}
	return best
}

// ReorderWithProfile runs the same greedy consume-loop as Reorder but
// chooses the lowest-cost remaining atom by profile-use policy instead of
// a named Policy.
func ReorderWithProfile(c *ast.Clause, bs *BindingStore, profile collab.ProfileAnalysis) []int {
	_, atoms := c.BodyAtoms()
	if len(atoms) == 0 {
		return nil
	}

	remaining := make([]*ast.Atom, len(atoms))
	for i := range atoms {
		remaining[i] = &atoms[i]
	}

	order := make([]int, 0, len(atoms))
	for len(order) < len(atoms) {
		choice := chooseLowestCost(remaining, bs, profile)
		if choice < 0 {
			break
		}
		order = append(order, choice)
		chosen := atoms[choice]
		remaining[choice] = nil
		for _, arg := range chosen.Concrete {
			bindArgumentVariables(arg, bs)
		}
	}
	return order
}

// ReorderProgramProfile runs the profile-guided second pass over every
// clause already reordered by ReorderProgram. logger may be nil; when
// set, each rewritten clause is logged at debug level with its head
// relation and a freshly generated correlation id.
func ReorderProgramProfile(prog *ast.Program, deps *collab.Set, logger *zap.Logger) bool {
	if deps == nil || deps.Profile == nil {
		return false
	}

	clauses := prog.Clauses()
	newClauses := make([]*ast.Clause, len(clauses))
	changed := false

	for i, c := range clauses {
		if c.IsFact() || c.HasPlan() {
			newClauses[i] = c
			continue
		}

		bs := NewBindingStore()
		bindPreBound(c, bs)
		atomPositions, _ := c.BodyAtoms()
		order := ReorderWithProfile(c, bs, deps.Profile)

		if isIdentityOrder(order) {
			newClauses[i] = c
			continue
		}

		newClauses[i] = c.WithBody(reorderAtoms(c.Body, atomPositions, order))
		changed = true

		if logger != nil {
			logger.Debug("profile-guided reorder",
				zap.String("correlation_id", uuid.New().String()),
				zap.String("head", c.Head.Name.String()),
			)
		}
	}

	if changed {
		prog.SetClauses(newClauses)
	}
	return changed
}
