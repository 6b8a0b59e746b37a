package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"machine-solver/internal/api"
	"machine-solver/internal/config"
	"machine-solver/internal/db"
	"machine-solver/internal/dispatch"
	"machine-solver/internal/logger"
	"machine-solver/internal/machine"
	"machine-solver/internal/notify"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	inputPath := flag.String("input", "", "solve machines from file and exit")
	lights := flag.Bool("lights", false, "solve the indicator-light variant")
	workers := flag.Int("workers", 0, "worker count, 0 for CPU count")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	cfg := config.Load()
	if *workers > 0 {
		cfg.Workers = *workers
	}

	appLogger := logger.New(500)
	if *verbose {
		appLogger.SetLevel(logger.LevelDebug)
	}

	pool := dispatch.NewPool(cfg.Workers)

	if *inputPath != "" {
		os.Exit(runBatch(pool, *inputPath, *lights))
	}

	runServer(cfg, pool, appLogger)
}

// runBatch solves one input file and prints results to stdout. Exit
// code 1 means at least one machine had no solution, 2 means the input
// could not be processed.
func runBatch(pool *dispatch.Pool, path string, lights bool) int {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open input: %v\n", err)
		return 2
	}
	defer f.Close()

	machines, err := machine.ParseAll(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse input: %v\n", err)
		return 2
	}

	mode := dispatch.ModeJoltage
	if lights {
		mode = dispatch.ModeLights
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	batch, err := pool.SolveBatch(ctx, machines, mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "solve: %v\n", err)
		return 2
	}

	for _, r := range batch.Results {
		if r.Feasible {
			fmt.Printf("machine %d: %d presses (%s, %s)\n",
				r.Index, r.Presses, r.Tier, r.Duration.Round(time.Microsecond))
		} else {
			fmt.Printf("machine %d: infeasible\n", r.Index)
		}
	}
	fmt.Printf("total: %d presses across %d machines in %s\n",
		batch.TotalPresses, len(batch.Results), batch.Duration.Round(time.Millisecond))

	if !batch.AllFeasible {
		return 1
	}
	return 0
}

func runServer(cfg *config.Config, pool *dispatch.Pool, appLogger *logger.Logger) {
	var database db.Database
	var err error

	if cfg.DemoMode() {
		appLogger.Warn("DATABASE_URL not set - results kept in memory only")
		database = db.NewMock()
	} else {
		database, err = db.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Database error: %v", err)
		}
		appLogger.Info("Connected to database")
	}
	defer database.Close()

	notifier := notify.New(cfg.PushoverAppToken, cfg.PushoverUserKey)
	if notifier.IsEnabled() {
		appLogger.Info("Pushover notifications enabled")
	}

	handler := api.NewHandler(pool, database, appLogger, notifier)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	addr := fmt.Sprintf("%s:%s", cfg.BindAddr, cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		appLogger.Info("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	appLogger.Info("Starting server on %s with %d workers", addr, pool.Workers())
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
