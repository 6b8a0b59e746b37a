package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"machine-solver/internal/retry"
)

// Common errors
var (
	ErrConnectionFailed = errors.New("database connection failed")
	ErrQueryTimeout     = errors.New("query timeout")
	ErrPoolExhausted    = errors.New("connection pool exhausted")
	ErrNotFound         = errors.New("not found")
)

// Batch is one solved puzzle input: a set of machines processed together.
type Batch struct {
	ID           int64  `json:"id"`
	Mode         string `json:"mode"`
	MachineCount int    `json:"machine_count"`
	TotalPresses int64  `json:"total_presses"`
	AllFeasible  bool   `json:"all_feasible"`
	CreatedAt    string `json:"created_at"`
}

// Result is the stored outcome for one machine of a batch.
type Result struct {
	BatchID      int64  `json:"batch_id"`
	MachineIndex int    `json:"machine_index"`
	Feasible     bool   `json:"feasible"`
	Presses      int64  `json:"presses"`
	Tier         string `json:"tier"`
	DurationMs   int64  `json:"duration_ms"`
}

// Stats holds aggregate statistics
type Stats struct {
	TotalBatches       int   `json:"total_batches"`
	TotalMachines      int   `json:"total_machines"`
	InfeasibleMachines int   `json:"infeasible_machines"`
	TotalPresses       int64 `json:"total_presses"`
	Healthy            bool  `json:"healthy"`
}

// HealthStatus represents database health
type HealthStatus struct {
	Connected       bool   `json:"connected"`
	LatencyMs       int64  `json:"latency_ms"`
	OpenConnections int    `json:"open_connections"`
	Error           string `json:"error,omitempty"`
}

// DB wraps database operations
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and runs migrations.
func New(databaseURL string) (*DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)
	conn.SetConnMaxIdleTime(1 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := retry.Do(ctx, retry.DefaultConfig(), func() error {
		return conn.PingContext(ctx)
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return db, nil
}

func (db *DB) migrate(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `
		-- One row per solved puzzle input
		CREATE TABLE IF NOT EXISTS batches (
			id BIGSERIAL PRIMARY KEY,
			mode TEXT NOT NULL,
			machine_count INT NOT NULL,
			total_presses BIGINT NOT NULL,
			all_feasible BOOLEAN NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);

		-- One row per machine within a batch
		CREATE TABLE IF NOT EXISTS machine_results (
			batch_id BIGINT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
			machine_index INT NOT NULL,
			feasible BOOLEAN NOT NULL,
			presses BIGINT NOT NULL,
			tier TEXT NOT NULL,
			duration_ms BIGINT NOT NULL,
			PRIMARY KEY (batch_id, machine_index)
		);
	`)
	return err
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Health checks database connectivity
func (db *DB) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{}
	start := time.Now()
	err := db.conn.PingContext(ctx)
	status.LatencyMs = time.Since(start).Milliseconds()

	if err != nil {
		status.Error = err.Error()
		return status
	}

	status.Connected = true
	status.OpenConnections = db.conn.Stats().OpenConnections
	return status
}

func (db *DB) wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "53300":
			return fmt.Errorf("%w: %v", ErrPoolExhausted, err)
		case "57014":
			return fmt.Errorf("%w: %v", ErrQueryTimeout, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrQueryTimeout, err)
	}
	return err
}

// SaveBatch stores a batch and its per-machine results in one
// transaction, returning the new batch ID.
func (db *DB) SaveBatch(ctx context.Context, batch *Batch, results []Result) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, db.wrapError(err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO batches (mode, machine_count, total_presses, all_feasible)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		batch.Mode, batch.MachineCount, batch.TotalPresses, batch.AllFeasible).Scan(&id)
	if err != nil {
		return 0, db.wrapError(err)
	}

	for _, r := range results {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO machine_results (batch_id, machine_index, feasible, presses, tier, duration_ms)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			id, r.MachineIndex, r.Feasible, r.Presses, r.Tier, r.DurationMs)
		if err != nil {
			return 0, db.wrapError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, db.wrapError(err)
	}
	return id, nil
}

// GetBatches returns the most recent batches, newest first.
func (db *DB) GetBatches(ctx context.Context, limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, mode, machine_count, total_presses, all_feasible, created_at
		 FROM batches ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, db.wrapError(err)
	}
	defer rows.Close()

	batches := []Batch{}
	for rows.Next() {
		var b Batch
		var createdAt time.Time
		if err := rows.Scan(&b.ID, &b.Mode, &b.MachineCount, &b.TotalPresses, &b.AllFeasible, &createdAt); err != nil {
			continue
		}
		b.CreatedAt = createdAt.Format(time.RFC3339)
		batches = append(batches, b)
	}
	return batches, nil
}

// GetBatchResults returns the per-machine results of a batch in machine
// order.
func (db *DB) GetBatchResults(ctx context.Context, batchID int64) ([]Result, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT batch_id, machine_index, feasible, presses, tier, duration_ms
		 FROM machine_results WHERE batch_id = $1 ORDER BY machine_index`, batchID)
	if err != nil {
		return nil, db.wrapError(err)
	}
	defer rows.Close()

	results := []Result{}
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.BatchID, &r.MachineIndex, &r.Feasible, &r.Presses, &r.Tier, &r.DurationMs); err != nil {
			continue
		}
		results = append(results, r)
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return results, nil
}

// GetStats returns aggregate statistics
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Healthy: true}

	health := db.Health(ctx)
	if !health.Connected {
		stats.Healthy = false
		return stats, nil
	}

	db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM batches").Scan(&stats.TotalBatches)
	db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM machine_results").Scan(&stats.TotalMachines)
	db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM machine_results WHERE NOT feasible").Scan(&stats.InfeasibleMachines)
	db.conn.QueryRowContext(ctx, "SELECT COALESCE(SUM(total_presses), 0) FROM batches").Scan(&stats.TotalPresses)

	return stats, nil
}
