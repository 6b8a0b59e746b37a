package db

import (
	"context"
	"sync"
	"time"
)

// MockDB is an in-memory database for demo mode and tests
type MockDB struct {
	mu      sync.RWMutex
	nextID  int64
	batches []Batch
	results map[int64][]Result
}

// NewMock creates a new mock database
func NewMock() *MockDB {
	return &MockDB{
		nextID:  1,
		results: make(map[int64][]Result),
	}
}

func (m *MockDB) Close() error { return nil }

func (m *MockDB) Health(ctx context.Context) HealthStatus {
	return HealthStatus{Connected: true, LatencyMs: 1}
}

func (m *MockDB) SaveBatch(ctx context.Context, batch *Batch, results []Result) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++

	saved := *batch
	saved.ID = id
	saved.CreatedAt = time.Now().Format(time.RFC3339)
	m.batches = append(m.batches, saved)

	stored := make([]Result, len(results))
	copy(stored, results)
	for i := range stored {
		stored[i].BatchID = id
	}
	m.results[id] = stored

	return id, nil
}

func (m *MockDB) GetBatches(ctx context.Context, limit int) ([]Batch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 || limit > len(m.batches) {
		limit = len(m.batches)
	}

	// Newest first
	batches := make([]Batch, 0, limit)
	for i := len(m.batches) - 1; i >= 0 && len(batches) < limit; i-- {
		batches = append(batches, m.batches[i])
	}
	return batches, nil
}

func (m *MockDB) GetBatchResults(ctx context.Context, batchID int64) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results, ok := m.results[batchID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]Result, len(results))
	copy(out, results)
	return out, nil
}

func (m *MockDB) GetStats(ctx context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &Stats{
		TotalBatches: len(m.batches),
		Healthy:      true,
	}
	for _, b := range m.batches {
		stats.TotalMachines += b.MachineCount
		stats.TotalPresses += b.TotalPresses
	}
	for _, results := range m.results {
		for _, r := range results {
			if !r.Feasible {
				stats.InfeasibleMachines++
			}
		}
	}
	return stats, nil
}
