/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the attendance service. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load YAML config (optional) + environment overrides
  3. Initialize SQLite store
  4. Create API handler with dependencies
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to YAML config file (optional)
  -addr    Listen address (overrides config)
  -db      SQLite database path (overrides config; ":memory:" works)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit
*/
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/config"
	"github.com/warp/attendance-engine/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer store.Close()

	handler := api.NewHandler(store, loc, cfg.TimeConfig())
	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.NewRouter(handler),
	}

	go func() {
		log.Printf("attendance service listening on %s (db=%s tz=%s)",
			cfg.Addr, cfg.DatabasePath, cfg.Timezone)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
