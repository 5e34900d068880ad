/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the claims engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (config.yml + environment)
  2. Configure structured logging
  3. Initialize SQLite store and uploads directory
  4. Build the lifecycle engine with configured thresholds
  5. Configure HTTP router, start the auto-verification sweeper
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -seed    Load demo lecturers and claims into an empty database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the sweeper, close database connection
  4. Exit

ENVIRONMENT:
  Every config field is overridable via environment, see
  config/config.go (APP_PORT, DB_PATH, AUTO_APPROVE_MAX_HOURS, ...).

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/warp/claims-engine/api"
	"github.com/warp/claims-engine/claims"
	"github.com/warp/claims-engine/config"
	"github.com/warp/claims-engine/docstore"
	"github.com/warp/claims-engine/store/sqlite"
)

func main() {
	seed := flag.Bool("seed", false, "load demo data into an empty database")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	conf, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	if level, err := logrus.ParseLevel(conf.App.LogLevel); err == nil {
		log.SetLevel(level)
	}

	// Initialize store
	store, err := sqlite.New(conf.Database.Path)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer store.Close()

	// Uploads directory
	files, err := docstore.NewDisk(conf.Uploads.Dir,
		docstore.WithMaxFileBytes(conf.Uploads.MaxFileBytes),
		docstore.WithAllowedExtensions(conf.Extensions()),
	)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize uploads directory")
	}

	// Auto-approval thresholds
	maxHours, err := conf.MaxHours()
	if err != nil {
		log.WithError(err).Fatal("invalid auto-approve hours threshold")
	}
	maxAmount, err := conf.MaxAmount()
	if err != nil {
		log.WithError(err).Fatal("invalid auto-approve amount threshold")
	}

	engine := claims.NewEngine(store, files, claims.NewAutoApprovalPolicy(maxHours, maxAmount))

	if *seed {
		if err := api.SeedDemoData(context.Background(), store, engine, log); err != nil {
			log.WithError(err).Fatal("failed to seed demo data")
		}
	}

	// Handler and router
	handler := api.NewHandler(engine, store, files, log)
	router := api.NewRouter(handler)

	// Background sweep
	sweeper := api.NewAutoVerifySweeper(engine, log)
	if conf.Automation.SweepEnabled != nil {
		sweeper.Enabled = *conf.Automation.SweepEnabled
	}
	if interval, err := time.ParseDuration(conf.Automation.SweepInterval); err == nil {
		sweeper.CheckInterval = interval
	}
	sweeper.Start()
	defer sweeper.Stop()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", conf.App.ListenAddr, conf.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.WithField("addr", server.Addr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server stopped")
}
