package db

import "context"

// Database defines the interface for result storage
type Database interface {
	Close() error
	Health(ctx context.Context) HealthStatus
	SaveBatch(ctx context.Context, batch *Batch, results []Result) (int64, error)
	GetBatches(ctx context.Context, limit int) ([]Batch, error)
	GetBatchResults(ctx context.Context, batchID int64) ([]Result, error)
	GetStats(ctx context.Context) (*Stats, error)
}

// Ensure DB implements Database interface
var _ Database = (*DB)(nil)
var _ Database = (*MockDB)(nil)
