package solver

// exhaustive is the slow second tier: a depth-first enumeration of press
// counts per button, bounded for each button by the smallest remaining
// target among the counters it feeds. It decides feasibility exactly and
// runs only when the reduced-system search comes up empty without a
// proof of inconsistency.
type exhaustive struct {
	buttons   [][]int
	remaining []int
	best      int64
	found     bool
}

// exhaustiveMin searches every press combination. A seed total from the
// bounded search, when available, primes the pruning cut; the seed is a
// known valid solution, so the result is always at least as good.
func exhaustiveMin(buttons [][]int, targets []int, seed int64, seeded bool) (int64, bool) {
	e := &exhaustive{
		buttons:   buttons,
		remaining: make([]int, len(targets)),
		best:      seed,
		found:     seeded,
	}
	copy(e.remaining, targets)
	e.walk(0, 0)
	return e.best, e.found
}

func (e *exhaustive) walk(btn int, sum int64) {
	if e.found && sum >= e.best {
		return
	}
	if btn == len(e.buttons) {
		for _, r := range e.remaining {
			if r != 0 {
				return
			}
		}
		if !e.found || sum < e.best {
			e.found = true
			e.best = sum
		}
		return
	}

	max := e.pressLimit(btn)
	for presses := 0; presses <= max; presses++ {
		if presses > 0 {
			for _, j := range e.buttons[btn] {
				e.remaining[j]--
			}
		}
		e.walk(btn+1, sum+int64(presses))
	}
	for _, j := range e.buttons[btn] {
		e.remaining[j] += max
	}
}

// pressLimit is how often button btn can still be pressed before some
// counter it feeds overshoots.
func (e *exhaustive) pressLimit(btn int) int {
	idx := e.buttons[btn]
	if len(idx) == 0 {
		return 0
	}
	max := e.remaining[idx[0]]
	for _, j := range idx[1:] {
		if e.remaining[j] < max {
			max = e.remaining[j]
		}
	}
	if max < 0 {
		return 0
	}
	return max
}
