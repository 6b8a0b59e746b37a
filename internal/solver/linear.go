package solver

import (
	"fmt"

	"machine-solver/internal/rat"
)

// system is the augmented rational matrix for one machine: one row per
// counter, one column per button, plus the target column on the right.
type system struct {
	rows int // counters
	cols int // buttons (the matrix has cols+1 columns)
	mat  [][]rat.Rat
	// pivots holds the pivot column chosen for each reduced row, in row
	// order. Populated by reduce.
	pivots []int
}

// newSystem builds the m×(n+1) augmented matrix: cell (j,i) is 1 when
// button i feeds counter j, and column n carries the targets.
func newSystem(buttons [][]int, targets []int) (*system, error) {
	m := len(targets)
	n := len(buttons)

	s := &system{rows: m, cols: n}
	s.mat = make([][]rat.Rat, m)
	for j := range s.mat {
		s.mat[j] = make([]rat.Rat, n+1)
		for i := range s.mat[j] {
			s.mat[j][i] = rat.Zero()
		}
		s.mat[j][n] = rat.FromInt(int64(targets[j]))
	}

	for i, b := range buttons {
		for _, j := range b {
			if j < 0 || j >= m {
				return nil, fmt.Errorf("button %d references counter %d, machine has %d", i, j, m)
			}
			s.mat[j][i] = rat.One()
		}
	}

	return s, nil
}

// reduce transforms the matrix to reduced row-echelon form with full
// Gauss-Jordan elimination and records the pivot column per row. The
// pivot rule is fixed: leftmost candidate column, topmost non-zero row
// within it. Returns ErrInfeasible when a row reduces to all-zero
// coefficients with a non-zero right-hand side.
func (s *system) reduce() error {
	for r := 0; r < s.rows; r++ {
		pivotCol, pivotRow := -1, -1
		for c := len(s.pivots); c < s.cols && pivotCol < 0; c++ {
			for rr := r; rr < s.rows; rr++ {
				if !s.mat[rr][c].IsZero() {
					pivotCol, pivotRow = c, rr
					break
				}
			}
		}
		if pivotCol < 0 {
			// Remaining rows carry no coefficients at all.
			break
		}

		if pivotRow != r {
			s.mat[r], s.mat[pivotRow] = s.mat[pivotRow], s.mat[r]
		}

		inv := s.mat[r][pivotCol].Inv()
		for c := 0; c <= s.cols; c++ {
			s.mat[r][c] = s.mat[r][c].Mul(inv)
		}

		for rr := 0; rr < s.rows; rr++ {
			if rr == r || s.mat[rr][pivotCol].IsZero() {
				continue
			}
			factor := s.mat[rr][pivotCol]
			for c := 0; c <= s.cols; c++ {
				s.mat[rr][c] = s.mat[rr][c].Sub(factor.Mul(s.mat[r][c]))
			}
		}

		s.pivots = append(s.pivots, pivotCol)
	}

	// A dependent row whose target did not cancel means the targets
	// contradict each other: 0 = non-zero.
	for r := len(s.pivots); r < s.rows; r++ {
		if !s.mat[r][s.cols].IsZero() {
			return ErrInfeasible
		}
	}
	return nil
}

// freeCols returns the button columns not chosen as pivots, ascending.
func (s *system) freeCols() []int {
	isPivot := make([]bool, s.cols)
	for _, p := range s.pivots {
		isPivot[p] = true
	}
	var free []int
	for c := 0; c < s.cols; c++ {
		if !isPivot[c] {
			free = append(free, c)
		}
	}
	return free
}

// rhs returns the right-hand side of a reduced row.
func (s *system) rhs(row int) rat.Rat {
	return s.mat[row][s.cols]
}

// hasNegativeFreeCoef reports whether any pivot row carries a negative
// coefficient on a free column. When it does, free variables can trade
// off against each other beyond the per-column bounds.
func (s *system) hasNegativeFreeCoef() bool {
	for _, f := range s.freeCols() {
		for row := range s.pivots {
			if s.mat[row][f].Sign() < 0 {
				return true
			}
		}
	}
	return false
}
