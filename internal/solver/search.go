package solver

import "machine-solver/internal/rat"

// maxFreeColumns caps the enumeration depth. Systems with more free
// variables than this would need an astronomically large search space;
// they are reported as an error rather than left to run forever.
const maxFreeColumns = 16

// searcher enumerates integer assignments for the free columns within
// their derived bounds and evaluates the pivot variables by exact
// back-substitution.
type searcher struct {
	sys    *system
	bounds []bound
	assign []int64 // press count per free column, parallel to bounds
	best   int64
	found  bool
}

// searchMin returns the minimum total press count over all valid
// assignments, or ErrInfeasible when no assignment in the bounded space
// yields non-negative integer pivot values.
func (s *system) searchMin(bounds []bound) (int64, error) {
	if len(bounds) > maxFreeColumns {
		return 0, ErrSearchSpaceTooLarge
	}

	srch := &searcher{
		sys:    s,
		bounds: bounds,
		assign: make([]int64, len(bounds)),
	}
	srch.walk(0, 0)

	if !srch.found {
		return 0, ErrInfeasible
	}
	return srch.best, nil
}

func (srch *searcher) walk(depth int, partial int64) {
	// Pivot contributions cannot be negative, so a partial free sum at or
	// past the best total can be cut.
	if srch.found && partial >= srch.best {
		return
	}
	if depth == len(srch.bounds) {
		srch.evaluate(partial)
		return
	}
	b := srch.bounds[depth]
	for v := b.lo; v <= b.hi; v++ {
		srch.assign[depth] = v
		srch.walk(depth+1, partial+v)
	}
}

// evaluate back-substitutes the current free assignment into every pivot
// row and accepts it only if all pivot values are non-negative integers.
func (srch *searcher) evaluate(freeSum int64) {
	total := freeSum
	for row := range srch.sys.pivots {
		val := srch.sys.rhs(row)
		for i, b := range srch.bounds {
			coef := srch.sys.mat[row][b.col]
			if coef.IsZero() || srch.assign[i] == 0 {
				continue
			}
			val = val.Sub(coef.Mul(rat.FromInt(srch.assign[i])))
		}
		n, err := val.Int()
		if err != nil || n.Sign() < 0 {
			return
		}
		total += n.Int64()
	}

	if !srch.found || total < srch.best {
		srch.found = true
		srch.best = total
	}
}
