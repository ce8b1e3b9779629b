package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pc-control-dashboard/internal/agent"
	"pc-control-dashboard/internal/config"
	"pc-control-dashboard/internal/database"
	"pc-control-dashboard/internal/events"
	"pc-control-dashboard/internal/handler"
	"pc-control-dashboard/internal/middleware"
	"pc-control-dashboard/internal/notification"
	"pc-control-dashboard/internal/repository"
	"pc-control-dashboard/internal/router"
	"pc-control-dashboard/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	logger := log.Default()

	// Initialize repositories
	pcRepo := repository.NewPCRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	// View-invalidation hub for cached PC-list views
	hub := events.NewHub()

	// Operator notification webhook (no-op when unconfigured)
	notifier := notification.NewNotifier(notification.Config{
		URL:           cfg.Notification.URL,
		Timeout:       cfg.Notification.Timeout,
		RetryAttempts: cfg.Notification.RetryAttempts,
		RetryDelay:    cfg.Notification.RetryDelay,
	}, logger)

	// Device agent client for proxying and schedule pushes
	agentClient := agent.NewClient(agent.Config{
		Timeout:   cfg.Agent.Timeout,
		UserAgent: cfg.Agent.UserAgent,
	}, logger)

	// Initialize services
	pcService := service.NewPCService(pcRepo, hub, notifier, logger)
	scheduleService := service.NewScheduleService(scheduleRepo, pcRepo, agentClient, hub, notifier, logger)

	// Initialize handler
	h := handler.NewDashboardHandler(pcService, scheduleService, agentClient, logger)

	// Setup router with security configuration
	r := router.NewRouter(h, cfg)

	// Wrap router with logging middleware
	loggingMW := middleware.NewLoggingMiddleware(logger)
	finalHandler := loggingMW.LogRequests(r)

	// Configure server with security settings
	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Port),
		Handler:        finalHandler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	// Channel to listen for interrupt signal to gracefully shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %d", cfg.Port)
		log.Printf("Security: Rate limit=%d RPS, Burst=%d, CORS=%v, Timeout=%v",
			cfg.Security.RateLimitRPS,
			cfg.Security.RateLimitBurst,
			cfg.Security.EnableCORS,
			cfg.Security.RequestTimeout,
		)
		log.Printf("Device agent timeout: %v", cfg.Agent.Timeout)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Block until we receive a signal
	<-done
	log.Println("Server is shutting down...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Security.ShutdownTimeout)
	defer cancel()

	// Attempt graceful shutdown
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	} else {
		log.Println("Server exited gracefully")
	}
}
