package solver

// bound is the integer press-count range allowed for one free button
// column. The range keeps every pivot variable non-negative when all
// other free variables are held at zero; free variables with negative
// coefficients can interact, so the range is a pre-filter, not a
// feasibility proof.
type bound struct {
	col    int
	lo, hi int64
}

// deriveBounds computes [lo,hi] for every free column from the reduced
// pivot rows. lo starts at zero (a button cannot be un-pressed); hi
// starts at the smallest target among the counters the button feeds,
// since pressing past that alone would overshoot, and is tightened row
// by row. Returns ErrInfeasible when any range is empty.
func deriveBounds(s *system, buttons [][]int, targets []int) ([]bound, error) {
	free := s.freeCols()
	bounds := make([]bound, 0, len(free))

	for _, f := range free {
		b := bound{col: f, lo: 0, hi: defaultUpper(buttons[f], targets)}

		for row := range s.pivots {
			coef := s.mat[row][f]
			switch coef.Sign() {
			case 0:
				continue
			case 1:
				// pivot = rhs - coef*f must stay >= 0: f <= rhs/coef.
				hi := s.rhs(row).Mul(coef.Inv()).Floor()
				if hi.IsInt64() && hi.Int64() < b.hi {
					b.hi = hi.Int64()
				}
			case -1:
				// Sign flips across the negative coefficient: f >= rhs/coef.
				lo := s.rhs(row).Mul(coef.Inv()).Ceil()
				if lo.IsInt64() && lo.Int64() > b.lo {
					b.lo = lo.Int64()
				}
			}
		}

		if b.hi < b.lo {
			return nil, ErrInfeasible
		}
		bounds = append(bounds, b)
	}

	return bounds, nil
}

// defaultUpper is the starting upper bound for a free button: no button
// need be pressed more times than the smallest target it contributes to.
// A button wired to nothing is never worth pressing.
func defaultUpper(button []int, targets []int) int64 {
	if len(button) == 0 {
		return 0
	}
	upper := int64(targets[button[0]])
	for _, j := range button[1:] {
		if int64(targets[j]) < upper {
			upper = int64(targets[j])
		}
	}
	return upper
}
