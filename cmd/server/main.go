/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the overtime report server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (defaults, YAML file, OTE_* environment)
  2. Apply command-line flags on top
  3. Initialize SQLite store
  4. Create metrics, API handler and router
  5. Start the report scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML config file (default: $OTE_CONFIG)
  -port    HTTP server port (overrides addr)
  -db      SQLite database path (overrides db_path)
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  # Run with file database
  ./server -db="./data/overtime.db"

  # Run with a config file and Berlin report days
  OTE_TIME_ZONE=Europe/Berlin ./server -config=config.yaml

  # Run on different port
  ./server -port=3000

SEE ALSO:
  - config/config.go: Configuration keys and environment variables
  - api/server.go: Router configuration
  - api/scheduler.go: Report scheduler
*/
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

	"github.com/warp/overtime-engine/api"
	"github.com/warp/overtime-engine/config"
	"github.com/warp/overtime-engine/metrics"
	"github.com/warp/overtime-engine/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "YAML config file (default $OTE_CONFIG)")
	port := flag.Int("port", 0, "HTTP server port (overrides config addr)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config db_path)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Addr = fmt.Sprintf(":%d", *port)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store,
		api.WithDefaults(cfg.Settings),
		api.WithLocation(loc),
		api.WithMetrics(metrics.NewManager()),
	)

	// Create router
	router := api.NewRouter(handler)

	scheduler := api.NewReportScheduler(handler, cfg.SchedulerInterval)
	scheduler.Start()

	// Create server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on %s (db=%s, tz=%s)", cfg.Addr, cfg.DBPath, loc)
		log.Printf("API available at http://localhost%s/api, metrics at /metrics", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
