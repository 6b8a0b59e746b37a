package solver

import (
	"fmt"
	"math/bits"
)

// maxToggleFree caps the free-variable enumeration of the toggle solver;
// 2^20 subsets is the most it will scan.
const maxToggleFree = 20

// gf2Row is one light equation: the button mask on the left, the target
// light state on the right. Pressing a button twice cancels, so presses
// live in GF(2).
type gf2Row struct {
	mask uint64
	rhs  bool
}

// MinToggles returns the minimum number of distinct buttons to press so
// that the lights, all starting off, match the wanted diagram. buttons[i]
// lists the lights button i toggles.
func MinToggles(buttons [][]int, lights []bool) (int64, error) {
	n := len(buttons)
	if n > 64 {
		return 0, ErrTooManyButtons
	}

	rows := make([]gf2Row, len(lights))
	for j, on := range lights {
		rows[j].rhs = on
	}
	for i, b := range buttons {
		for _, j := range b {
			if j < 0 || j >= len(lights) {
				return 0, fmt.Errorf("button %d references light %d, machine has %d", i, j, len(lights))
			}
			rows[j].mask |= 1 << uint(i)
		}
	}

	// Gauss-Jordan over GF(2), same pivot rule as the rational reducer:
	// leftmost column, topmost row.
	var pivots []int
	rank := 0
	for c := 0; c < n && rank < len(rows); c++ {
		sel := -1
		for r := rank; r < len(rows); r++ {
			if rows[r].mask&(1<<uint(c)) != 0 {
				sel = r
				break
			}
		}
		if sel < 0 {
			continue
		}
		rows[rank], rows[sel] = rows[sel], rows[rank]
		for r := range rows {
			if r != rank && rows[r].mask&(1<<uint(c)) != 0 {
				rows[r].mask ^= rows[rank].mask
				rows[r].rhs = rows[r].rhs != rows[rank].rhs
			}
		}
		pivots = append(pivots, c)
		rank++
	}

	for r := rank; r < len(rows); r++ {
		if rows[r].mask == 0 && rows[r].rhs {
			return 0, ErrInfeasible
		}
	}

	isPivot := uint64(0)
	for _, p := range pivots {
		isPivot |= 1 << uint(p)
	}
	var free []int
	for c := 0; c < n; c++ {
		if isPivot&(1<<uint(c)) == 0 {
			free = append(free, c)
		}
	}
	if len(free) > maxToggleFree {
		return 0, ErrSearchSpaceTooLarge
	}

	best := -1
	for combo := 0; combo < 1<<uint(len(free)); combo++ {
		var press uint64
		for i, c := range free {
			if combo&(1<<uint(i)) != 0 {
				press |= 1 << uint(c)
			}
		}
		// Each pivot row determines its pivot button from the chosen free
		// buttons: after full elimination the row holds only the pivot bit
		// and free bits.
		for r, p := range pivots {
			val := rows[r].rhs
			if bits.OnesCount64(rows[r].mask&press)%2 == 1 {
				val = !val
			}
			if val {
				press |= 1 << uint(p)
			}
		}
		weight := bits.OnesCount64(press)
		if best < 0 || weight < best {
			best = weight
		}
	}
	return int64(best), nil
}
