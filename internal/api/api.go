package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"machine-solver/internal/db"
	"machine-solver/internal/dispatch"
	"machine-solver/internal/logger"
	"machine-solver/internal/machine"
	"machine-solver/internal/notify"
)

// SolveResponse is the reply to a solve request.
type SolveResponse struct {
	BatchID      int64                    `json:"batch_id"`
	Mode         string                   `json:"mode"`
	MachineCount int                      `json:"machine_count"`
	TotalPresses int64                    `json:"total_presses"`
	AllFeasible  bool                     `json:"all_feasible"`
	DurationMs   int64                    `json:"duration_ms"`
	Results      []dispatch.MachineResult `json:"results"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status   string          `json:"status"`
	Database db.HealthStatus `json:"database"`
	Workers  int             `json:"workers"`
}

// Handler holds HTTP handler dependencies
type Handler struct {
	pool     *dispatch.Pool
	db       db.Database
	logger   *logger.Logger
	notifier *notify.Notifier
}

// NewHandler creates a new API handler
func NewHandler(pool *dispatch.Pool, database db.Database, log *logger.Logger, notifier *notify.Notifier) *Handler {
	return &Handler{
		pool:     pool,
		db:       database,
		logger:   log,
		notifier: notifier,
	}
}

// RegisterRoutes registers all HTTP routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/solve", h.handleSolve)
	mux.HandleFunc("/api/batches", h.handleBatches)
	mux.HandleFunc("/api/results", h.handleResults)
	mux.HandleFunc("/api/stats", h.handleStats)
	mux.HandleFunc("/api/health", h.handleHealth)
	mux.HandleFunc("/api/logs", h.handleLogs)
}

// maxInputBytes caps solve request bodies. A puzzle input is a few KB
// of text; anything larger is a mistake.
const maxInputBytes = 1 << 20

func (h *Handler) handleSolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	mode := dispatch.ModeJoltage
	if r.URL.Query().Get("mode") == "lights" {
		mode = dispatch.ModeLights
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxInputBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	machines, err := machine.ParseAll(bytes.NewReader(body))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(machines) == 0 {
		http.Error(w, "no machines in input", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	batch, err := h.pool.SolveBatch(ctx, machines, mode)
	if err != nil {
		h.logger.Error("Batch solve failed: %v", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	id, err := h.saveBatch(ctx, batch)
	if err != nil {
		h.logger.Warn("Failed to store batch: %v", err)
	}

	h.notifyBatch(batch)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SolveResponse{
		BatchID:      id,
		Mode:         string(batch.Mode),
		MachineCount: len(batch.Results),
		TotalPresses: batch.TotalPresses,
		AllFeasible:  batch.AllFeasible,
		DurationMs:   batch.Duration.Milliseconds(),
		Results:      batch.Results,
	})
}

func (h *Handler) saveBatch(ctx context.Context, batch *dispatch.BatchResult) (int64, error) {
	results := make([]db.Result, len(batch.Results))
	for i, r := range batch.Results {
		results[i] = db.Result{
			MachineIndex: r.Index,
			Feasible:     r.Feasible,
			Presses:      r.Presses,
			Tier:         string(r.Tier),
			DurationMs:   r.Duration.Milliseconds(),
		}
	}
	return h.db.SaveBatch(ctx, &db.Batch{
		Mode:         string(batch.Mode),
		MachineCount: len(batch.Results),
		TotalPresses: batch.TotalPresses,
		AllFeasible:  batch.AllFeasible,
	}, results)
}

func (h *Handler) notifyBatch(batch *dispatch.BatchResult) {
	if !h.notifier.IsEnabled() {
		return
	}
	go func() {
		var err error
		if batch.AllFeasible {
			err = h.notifier.NotifyBatchSolved(len(batch.Results), batch.TotalPresses, batch.Duration)
		} else {
			infeasible := 0
			for _, r := range batch.Results {
				if !r.Feasible {
					infeasible++
				}
			}
			err = h.notifier.NotifyInfeasible(len(batch.Results), infeasible)
		}
		if err != nil {
			h.logger.Warn("Notification failed: %v", err)
		}
	}()
}

func (h *Handler) handleBatches(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	batches, err := h.db.GetBatches(ctx, limit)
	if err != nil {
		h.logger.Error("Failed to get batches: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(batches)
}

func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	batchID, err := strconv.ParseInt(r.URL.Query().Get("batch"), 10, 64)
	if err != nil {
		http.Error(w, "missing or invalid batch parameter", http.StatusBadRequest)
		return
	}

	results, err := h.db.GetBatchResults(ctx, batchID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "batch not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to get results: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	stats, err := h.db.GetStats(ctx)
	if err != nil {
		h.logger.Warn("Failed to get stats: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	dbHealth := h.db.Health(ctx)

	status := "healthy"
	if !dbHealth.Connected {
		status = "unhealthy"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{
		Status:   status,
		Database: dbHealth,
		Workers:  h.pool.Workers(),
	})
}

func (h *Handler) handleLogs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.logger.GetEntries())
}
