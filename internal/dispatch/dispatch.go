// Package dispatch runs many independent machine solves across a worker
// pool. Each solve is a pure function with no shared state, so the only
// coordination is handing out work and collecting results.
package dispatch

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"machine-solver/internal/machine"
	"machine-solver/internal/solver"
)

// Mode selects which puzzle variant a batch solves.
type Mode string

const (
	ModeJoltage Mode = "joltage"
	ModeLights  Mode = "lights"
)

// MachineResult is the outcome for a single machine in a batch.
type MachineResult struct {
	Index    int           `json:"index"`
	Feasible bool          `json:"feasible"`
	Presses  int64         `json:"presses"`
	Tier     solver.Tier   `json:"tier"`
	Duration time.Duration `json:"duration"`
}

// BatchResult aggregates a whole batch. TotalPresses sums only feasible
// machines; AllFeasible distinguishes a clean batch from one containing
// infeasible machines.
type BatchResult struct {
	Mode         Mode            `json:"mode"`
	Results      []MachineResult `json:"results"`
	TotalPresses int64           `json:"total_presses"`
	AllFeasible  bool            `json:"all_feasible"`
	Duration     time.Duration   `json:"duration"`
}

// Pool dispatches machine solves across a fixed number of workers.
type Pool struct {
	workers int
}

// NewPool creates a pool. Zero or negative workers defaults to the
// number of CPU cores.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

// Workers returns the pool size.
func (p *Pool) Workers() int {
	return p.workers
}

// SolveBatch solves every machine and collects per-machine results in
// input order. Infeasible machines are recorded, not errors; a solver
// error other than infeasibility (or a cancelled context) fails the
// whole batch fast.
func (p *Pool) SolveBatch(ctx context.Context, machines []*machine.Machine, mode Mode) (*BatchResult, error) {
	start := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	results := make([]MachineResult, len(machines))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case idx, ok := <-jobs:
					if !ok {
						return
					}
					res, err := solveOne(machines[idx], idx, mode)
					if err != nil {
						fail(err)
						return
					}
					results[idx] = res
				}
			}
		}()
	}

	for idx := range machines {
		select {
		case <-ctx.Done():
		case jobs <- idx:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := &BatchResult{
		Mode:        mode,
		Results:     results,
		AllFeasible: true,
		Duration:    time.Since(start),
	}
	for _, r := range results {
		if r.Feasible {
			batch.TotalPresses += r.Presses
		} else {
			batch.AllFeasible = false
		}
	}
	return batch, nil
}

func solveOne(m *machine.Machine, idx int, mode Mode) (MachineResult, error) {
	start := time.Now()
	res := MachineResult{Index: idx}

	var presses int64
	var tier solver.Tier
	var err error

	switch mode {
	case ModeLights:
		presses, err = solver.MinToggles(m.Buttons, m.Lights)
		tier = solver.TierToggle
	default:
		var sol solver.Solution
		sol, err = solver.Solve(m.Buttons, m.Targets)
		presses, tier = sol.Presses, sol.Tier
	}

	res.Duration = time.Since(start)
	if errors.Is(err, solver.ErrInfeasible) {
		return res, nil
	}
	if err != nil {
		return res, err
	}

	res.Feasible = true
	res.Presses = presses
	res.Tier = tier
	return res, nil
}
