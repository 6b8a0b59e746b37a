package solver

import (
	"errors"
	"testing"

	"pgregory.net/rapid"

	"machine-solver/internal/rat"
)

func TestSolve_KnownMachines(t *testing.T) {
	tests := []struct {
		name    string
		buttons [][]int
		targets []int
		want    int64
	}{
		{
			name:    "four counters six buttons",
			buttons: [][]int{{3}, {1, 3}, {2}, {2, 3}, {0, 2}, {0, 1}},
			targets: []int{3, 5, 4, 7},
			want:    10,
		},
		{
			name:    "five counters five buttons",
			buttons: [][]int{{0, 2, 3, 4}, {2, 3}, {0, 4}, {0, 1, 2}, {1, 2, 3, 4}},
			targets: []int{7, 5, 12, 7, 2},
			want:    12,
		},
		{
			name:    "six counters four buttons",
			buttons: [][]int{{0, 1, 2, 3, 4}, {0, 3, 4}, {0, 1, 2, 4, 5}, {1, 2}},
			targets: []int{10, 11, 11, 5, 10, 5},
			want:    11,
		},
		{
			name:    "zero target",
			buttons: [][]int{{0}},
			targets: []int{0},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MinPresses(tt.buttons, tt.targets)
			if err != nil {
				t.Fatalf("MinPresses failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("MinPresses = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSolve_Infeasible(t *testing.T) {
	// Counter 1 is fed only by button 0, forcing 2 presses; those alone
	// overshoot counter 0's target of 1.
	_, err := MinPresses([][]int{{0, 1}, {0}}, []int{1, 2})
	if !errors.Is(err, ErrInfeasible) {
		t.Fatalf("expected ErrInfeasible, got %v", err)
	}
}

func TestSolve_InfeasibleNonInteger(t *testing.T) {
	// A triangle of pairwise-wired buttons has the unique rational
	// solution 1/2 each for all-ones targets; integrality rejects it.
	_, err := MinPresses([][]int{{0, 1}, {1, 2}, {0, 2}}, []int{1, 1, 1})
	if !errors.Is(err, ErrInfeasible) {
		t.Fatalf("expected ErrInfeasible, got %v", err)
	}

	// Doubling the targets makes it solvable with one press each.
	got, err := MinPresses([][]int{{0, 1}, {1, 2}, {0, 2}}, []int{2, 2, 2})
	if err != nil {
		t.Fatalf("MinPresses failed: %v", err)
	}
	if got != 3 {
		t.Errorf("MinPresses = %d, want 3", got)
	}
}

func TestSolve_InfeasibleDistinctFromZero(t *testing.T) {
	zero, err := MinPresses([][]int{{0}}, []int{0})
	if err != nil || zero != 0 {
		t.Fatalf("zero-target machine: got %d, %v", zero, err)
	}

	_, err = MinPresses([][]int{{0, 1}, {0}}, []int{1, 2})
	if !errors.Is(err, ErrInfeasible) {
		t.Fatalf("infeasible machine must not report 0: %v", err)
	}
}

func TestSolve_Idempotent(t *testing.T) {
	buttons := [][]int{{3}, {1, 3}, {2}, {2, 3}, {0, 2}, {0, 1}}
	targets := []int{3, 5, 4, 7}

	first, err1 := Solve(buttons, targets)
	second, err2 := Solve(buttons, targets)
	if err1 != nil || err2 != nil {
		t.Fatalf("Solve failed: %v, %v", err1, err2)
	}
	if first != second {
		t.Errorf("Solve is not deterministic: %+v vs %+v", first, second)
	}
}

func TestSolve_MonotoneScaling(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		target := rapid.IntRange(0, 50).Draw(t, "target")
		k := rapid.IntRange(1, 10).Draw(t, "k")

		base, err := MinPresses([][]int{{0}}, []int{target})
		if err != nil {
			t.Fatalf("base solve failed: %v", err)
		}
		scaled, err := MinPresses([][]int{{0}}, []int{target * k})
		if err != nil {
			t.Fatalf("scaled solve failed: %v", err)
		}
		if scaled != base*int64(k) {
			t.Fatalf("scaling by %d: got %d, want %d", k, scaled, base*int64(k))
		}
	})
}

func TestSolve_SolutionSatisfiesTargets(t *testing.T) {
	// Cross-check the reported minimum against the exhaustive tier on
	// small random machines.
	rapid.Check(t, func(t *rapid.T) {
		m := rapid.IntRange(1, 3).Draw(t, "counters")
		n := rapid.IntRange(1, 4).Draw(t, "buttons")

		buttons := make([][]int, n)
		for i := range buttons {
			for j := 0; j < m; j++ {
				if rapid.Bool().Draw(t, "wired") {
					buttons[i] = append(buttons[i], j)
				}
			}
		}
		targets := make([]int, m)
		for j := range targets {
			targets[j] = rapid.IntRange(0, 6).Draw(t, "target")
		}

		got, gotErr := MinPresses(buttons, targets)
		want, ok := exhaustiveMin(buttons, targets, 0, false)

		if !ok {
			if !errors.Is(gotErr, ErrInfeasible) {
				t.Fatalf("exhaustive says infeasible, solver says %d, %v", got, gotErr)
			}
			return
		}
		if gotErr != nil {
			t.Fatalf("exhaustive found %d but solver failed: %v", want, gotErr)
		}
		if got != want {
			t.Fatalf("solver found %d, exhaustive found %d", got, want)
		}
	})
}

func TestSolve_FreeVariableTradeoff(t *testing.T) {
	// The reduced system has negative coefficients on both free columns,
	// which pushes their individual lower bounds to 1 and hides the true
	// optimum (2,0,1,0). The exhaustive tier must recover it.
	sol, err := Solve([][]int{{0, 1}, {0}, {1}, {1}}, []int{2, 3})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if sol.Presses != 3 {
		t.Errorf("Presses = %d, want 3", sol.Presses)
	}
	if sol.Tier != TierExhaustive {
		t.Errorf("Tier = %s, want %s", sol.Tier, TierExhaustive)
	}
}

func TestSolve_ButtonOutOfRange(t *testing.T) {
	_, err := MinPresses([][]int{{5}}, []int{1})
	if err == nil {
		t.Fatal("expected error for out-of-range counter index")
	}
}

func TestReduce_RREFInvariant(t *testing.T) {
	buttons := [][]int{{3}, {1, 3}, {2}, {2, 3}, {0, 2}, {0, 1}}
	targets := []int{3, 5, 4, 7}

	sys, err := newSystem(buttons, targets)
	if err != nil {
		t.Fatalf("newSystem failed: %v", err)
	}
	if err := sys.reduce(); err != nil {
		t.Fatalf("reduce failed: %v", err)
	}

	seen := make(map[int]bool)
	for row, p := range sys.pivots {
		if seen[p] {
			t.Fatalf("duplicate pivot column %d", p)
		}
		seen[p] = true

		for r := 0; r < sys.rows; r++ {
			cell := sys.mat[r][p]
			if r == row {
				if cell.Cmp(rat.One()) != 0 {
					t.Errorf("pivot (%d,%d) = %s, want 1", r, p, cell)
				}
			} else if !cell.IsZero() {
				t.Errorf("non-zero entry %s at (%d,%d) in pivot column", cell, r, p)
			}
		}
	}
}

func TestReduce_InconsistentRow(t *testing.T) {
	// Two counters fed by exactly the same button but with different
	// targets reduce to 0 = non-zero.
	sys, err := newSystem([][]int{{0, 1}}, []int{2, 3})
	if err != nil {
		t.Fatalf("newSystem failed: %v", err)
	}
	if err := sys.reduce(); !errors.Is(err, ErrInfeasible) {
		t.Fatalf("expected ErrInfeasible, got %v", err)
	}
}

func TestReduce_RedundantRowIgnored(t *testing.T) {
	// Same dependent rows, consistent targets: benign.
	sys, err := newSystem([][]int{{0, 1}}, []int{3, 3})
	if err != nil {
		t.Fatalf("newSystem failed: %v", err)
	}
	if err := sys.reduce(); err != nil {
		t.Fatalf("reduce failed on redundant row: %v", err)
	}
	if len(sys.pivots) != 1 {
		t.Errorf("expected 1 pivot, got %v", sys.pivots)
	}
}

func TestDeriveBounds_FreeColumn(t *testing.T) {
	// Two interchangeable buttons on one counter: the second column is
	// free and its range is pinned by the single pivot row.
	buttons := [][]int{{0}, {0}}
	targets := []int{3}
	sys, err := newSystem(buttons, targets)
	if err != nil {
		t.Fatalf("newSystem failed: %v", err)
	}
	if err := sys.reduce(); err != nil {
		t.Fatalf("reduce failed: %v", err)
	}

	bounds, err := deriveBounds(sys, buttons, targets)
	if err != nil {
		t.Fatalf("deriveBounds failed: %v", err)
	}
	if len(bounds) != 1 {
		t.Fatalf("expected 1 free column, got %v", bounds)
	}
	if bounds[0].col != 1 || bounds[0].lo != 0 || bounds[0].hi != 3 {
		t.Errorf("bound = %+v, want col 1 range [0,3]", bounds[0])
	}

	min, err := sys.searchMin(bounds)
	if err != nil {
		t.Fatalf("searchMin failed: %v", err)
	}
	if min != 3 {
		t.Errorf("searchMin = %d, want 3", min)
	}
}

func TestDefaultUpper(t *testing.T) {
	if got := defaultUpper([]int{0, 2}, []int{5, 9, 3}); got != 3 {
		t.Errorf("defaultUpper = %d, want 3", got)
	}
	if got := defaultUpper(nil, []int{5}); got != 0 {
		t.Errorf("defaultUpper for unwired button = %d, want 0", got)
	}
}
