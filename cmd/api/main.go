package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadforms/internal/config"
	"leadforms/internal/logging"
	"leadforms/internal/repository"
	"leadforms/internal/server"
	"leadforms/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
	connectTimeout  = 30 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCloser, err := logging.Setup(&cfg.Log, "[API] ")
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()

	log.Printf("Starting %s v%s", cfg.App.Name, cfg.App.Version)
	log.Printf("Environment: debug=%v, port=%s, host=%s", cfg.App.Debug, cfg.App.Port, cfg.App.Host)

	// Initialize the lead store
	log.Println("Initializing lead store...")
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), connectTimeout)
	repo, closeStore, err := repository.Open(connectCtx, &cfg.Database)
	cancelConnect()
	if err != nil {
		log.Fatalf("Failed to initialize lead store: %v", err)
	}
	defer func() {
		log.Println("Closing lead store...")
		if err := closeStore(context.Background()); err != nil {
			log.Printf("Error closing lead store: %v", err)
		}
	}()

	sender, err := services.NewEmailSender(context.Background(), &cfg.Email)
	if err != nil {
		log.Fatalf("Failed to initialize mail transport: %v", err)
	}
	if cfg.Email.AdminEmail == "" {
		log.Println("Warning: ADMIN_EMAIL is not set, admin notifications will fail")
	}

	// Create service instances
	log.Println("Initializing services...")
	healthSvc := services.NewHealthService()
	leadSvc := services.NewLeadService(repo, sender, services.NewLeadEmailComposer(), cfg.Email.AdminEmail)

	httpServer := server.New(cfg, healthSvc, leadSvc).HTTPServer()

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("Forms service listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Printf("Server failed: %v", err)
		return
	case sig := <-shutdown:
		log.Printf("Received signal: %v. Starting graceful shutdown...", sig)
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Error during graceful shutdown: %v", err)
		if errors.Is(err, context.DeadlineExceeded) {
			log.Println("Shutdown timeout exceeded, forcing close...")
			httpServer.Close()
		}
	}

	// Let in-flight notification emails finish before the store closes
	log.Println("Waiting for pending notification emails...")
	leadSvc.Wait()

	log.Println("Server shutdown complete")
}
