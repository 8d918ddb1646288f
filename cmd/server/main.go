/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the ResourcePulse allocation engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (flags, env, optional YAML file)
  2. Build the zap logger
  3. Initialize the store (SQLite or in-memory)
  4. Create the scenario service and API handler
  5. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server --config=./resourcepulse.yaml

  # Run with in-memory database and demo data
  RESOURCEPULSE_STORAGE_DRIVER=memory ./server --demo

SEE ALSO:
  - config/config.go: Configuration loading
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/freeup86/resource-pulse-sub002/api"
	"github.com/freeup86/resource-pulse-sub002/config"
	"github.com/freeup86/resource-pulse-sub002/domain"
	memstore "github.com/freeup86/resource-pulse-sub002/domain/store"
	"github.com/freeup86/resource-pulse-sub002/scenario"
	"github.com/freeup86/resource-pulse-sub002/store/sqlite"
)

func main() {
	var cfgFile string
	var demo bool

	root := &cobra.Command{
		Use:   "server",
		Short: "ResourcePulse allocation and what-if scenario engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if demo {
				cfg.Demo = true
			}
			return run(cfg)
		},
	}
	root.Flags().StringVar(&cfgFile, "config", "", "config file path (default ./resourcepulse.yaml)")
	root.Flags().BoolVar(&demo, "demo", false, "seed the demo dataset on startup")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	log, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.Demo {
		if err := api.SeedDemoData(context.Background(), store); err != nil {
			log.Warn("failed to seed demo data", zap.Error(err))
		} else {
			log.Info("demo dataset seeded")
		}
	}

	scenarios := scenario.NewService(store, cfg.SystemConfig(), log.Named("scenario"))
	handler := api.NewHandler(store, scenarios, cfg.SystemConfig(), log.Named("api"))
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func openStore(cfg *config.Config) (domain.TxStore, func(), error) {
	switch cfg.Storage.Driver {
	case "memory":
		return memstore.NewMemory(), func() {}, nil
	default:
		s, err := sqlite.New(cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return s, func() { s.Close() }, nil
	}
}
