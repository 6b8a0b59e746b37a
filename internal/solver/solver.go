// Package solver finds minimum button-press solutions for machine
// puzzles. The joltage variant is an exact integer linear system: the
// augmented rational matrix is reduced to row-echelon form, tight
// non-negativity bounds are derived for the free columns, and the
// bounded assignment space is enumerated for the minimum total. The
// light variant is solved over GF(2). All arithmetic is exact.
package solver

import "errors"

// Common errors
var (
	// ErrInfeasible means no non-negative integer press assignment hits
	// every target exactly. Callers must not conflate it with a
	// zero-press solution.
	ErrInfeasible = errors.New("machine is infeasible")
	// ErrSearchSpaceTooLarge means the system has more free variables
	// than the solver will enumerate.
	ErrSearchSpaceTooLarge = errors.New("search space too large")
	// ErrTooManyButtons is returned by the GF(2) solver above its
	// bitmask width.
	ErrTooManyButtons = errors.New("too many buttons for toggle solver")
)

// Tier names which solver produced a result.
type Tier string

const (
	TierReduced    Tier = "reduced"
	TierExhaustive Tier = "exhaustive"
	TierToggle     Tier = "toggle"
)

// Solution is a solved machine: the minimum total press count and the
// tier that found it.
type Solution struct {
	Presses int64
	Tier    Tier
}

// Solve returns the minimum total number of button presses so that every
// counter reaches its target exactly, or ErrInfeasible. buttons[i] lists
// the counters button i increments by one per press; targets is indexed
// by counter. Pure function: the same input always yields the same
// result.
func Solve(buttons [][]int, targets []int) (Solution, error) {
	sys, err := newSystem(buttons, targets)
	if err != nil {
		return Solution{}, err
	}

	if err := sys.reduce(); err != nil {
		// An inconsistent row (0 = non-zero) is definite; no search can
		// recover from it.
		return Solution{}, err
	}

	// With only non-negative coefficients on the free columns the derived
	// bounds are exact necessary conditions and the bounded search is
	// complete. Negative coefficients let free variables compensate for
	// each other outside the per-column ranges, so those systems are
	// settled by the exhaustive tier, seeded with whatever the bounded
	// search found.
	benign := !sys.hasNegativeFreeCoef()

	bounds, err := deriveBounds(sys, buttons, targets)
	if err == nil {
		var min int64
		min, err = sys.searchMin(bounds)
		if err == nil {
			if benign {
				return Solution{Presses: min, Tier: TierReduced}, nil
			}
			if best, _ := exhaustiveMin(buttons, targets, min, true); best < min {
				return Solution{Presses: best, Tier: TierExhaustive}, nil
			}
			return Solution{Presses: min, Tier: TierReduced}, nil
		}
	}
	if !errors.Is(err, ErrInfeasible) {
		return Solution{}, err
	}
	if benign {
		return Solution{}, ErrInfeasible
	}

	if min, ok := exhaustiveMin(buttons, targets, 0, false); ok {
		return Solution{Presses: min, Tier: TierExhaustive}, nil
	}
	return Solution{}, ErrInfeasible
}

// MinPresses is the plain facade over Solve.
func MinPresses(buttons [][]int, targets []int) (int64, error) {
	sol, err := Solve(buttons, targets)
	if err != nil {
		return 0, err
	}
	return sol.Presses, nil
}
