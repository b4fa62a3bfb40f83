// Package equiv decides bijective equivalence between two normalised
// clauses: whether one is obtainable from the other purely by variable
// renaming and body-literal permutation.
package equiv

import "github.com/dlogc/dlc/ast"

// Report carries the outcome of an equivalence check plus enough detail to
// diagnose a negative result.
type Report struct {
	Matched     bool
	Reason      string
	Permutation []int
}

// AreBijectivelyEquivalent runs the full decision procedure over l and r.
func AreBijectivelyEquivalent(l, r *ast.NormalisedClause) (bool, Report) {
	if !l.FullyNormalised || !r.FullyNormalised {
		return false, Report{Reason: "clause is not fully normalised"}
	}
	if len(l.Elements) != len(r.Elements) {
		return false, Report{Reason: "element count mismatch"}
	}
	n := len(l.Elements)
	if n == 0 {
		return false, Report{Reason: "empty normalised clause"}
	}

	head := l.Elements[0]
	otherHead := r.Elements[0]
	if len(head.ConcreteParams) != len(otherHead.ConcreteParams) ||
		len(head.LatticeParams) != len(otherHead.LatticeParams) {
		return false, Report{Reason: "head arity mismatch"}
	}
	if len(l.Variables) != len(r.Variables) {
		return false, Report{Reason: "variable count mismatch"}
	}
	if !setsEqual(l.Constants, r.Constants) {
		return false, Report{Reason: "constant set mismatch"}
	}

	matrix := candidateMatrix(l.Elements, r.Elements)

	used := make([]bool, n)
	perm := make([]int, n)
	phi := make(map[string]string)

	if search(0, n, matrix, l.Elements, r.Elements, l.Constants, used, perm, phi) {
		out := make([]int, n)
		copy(out, perm)
		return true, Report{Matched: true, Permutation: out}
	}
	return false, Report{Reason: "no consistent permutation found"}
}

// search performs depth-first enumeration over the candidate matrix,
// trying columns in ascending index order for determinism, backtracking
// the variable-unification map on failure.
func search(i, n int, matrix [][]bool, le, re []ast.Element, constantsL map[string]bool, used []bool, perm []int, phi map[string]string) bool {
	if i == n {
		return true
	}
	for j := 0; j < n; j++ {
		if used[j] || !matrix[i][j] {
			continue
		}
		var added []string
		if consistent(le[i], re[j], constantsL, phi, &added) {
			used[j] = true
			perm[i] = j
			if search(i+1, n, matrix, le, re, constantsL, used, perm, phi) {
				return true
			}
			used[j] = false
		}
		for _, k := range added {
			delete(phi, k)
		}
	}
	return false
}

// consistent checks whether mapping element le onto re extends phi without
// conflict, recording any newly-assigned mappings into added for rollback.
func consistent(le, re ast.Element, constantsL map[string]bool, phi map[string]string, added *[]string) bool {
	if len(le.ConcreteParams) != len(re.ConcreteParams) || len(le.LatticeParams) != len(re.LatticeParams) {
		return false
	}
	for k := range le.ConcreteParams {
		if !unify(le.ConcreteParams[k], re.ConcreteParams[k], constantsL, phi, added) {
			return false
		}
	}
	for k := range le.LatticeParams {
		if !unify(le.LatticeParams[k], re.LatticeParams[k], constantsL, phi, added) {
			return false
		}
	}
	return true
}

// unify maps lTok onto rTok, generalising "variable" to every non-constant
// identifier — variables, unnamed-variable markers, and aggregator scope
// tokens alike — since none of those are subject to literal-text equality,
// only constants are. A constant must map to itself.
func unify(lTok, rTok string, constantsL map[string]bool, phi map[string]string, added *[]string) bool {
	if constantsL[lTok] {
		return lTok == rTok
	}
	if existing, ok := phi[lTok]; ok {
		return existing == rTok
	}
	phi[lTok] = rTok
	*added = append(*added, lTok)
	return true
}

func candidateMatrix(le, re []ast.Element) [][]bool {
	n := len(le)
	m := make([][]bool, n)
	for i := range m {
		m[i] = make([]bool, n)
		for j := range m[i] {
			m[i][j] = le[i].Name == re[j].Name
		}
	}
	return m
}

func setsEqual(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
