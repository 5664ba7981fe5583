package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flight-extractor/internal/domain/entity"
	"flight-extractor/internal/infrastructure/config"
	"flight-extractor/internal/infrastructure/persistence"
	"flight-extractor/internal/interface/httpapi"
	gormRepo "flight-extractor/internal/interface/repository"
	"flight-extractor/internal/usecase"
	"flight-extractor/pkg/agent"
	"flight-extractor/pkg/logger"
	"flight-extractor/pkg/metrics"
	"flight-extractor/pkg/workflowai"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger().Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLoggerWithLevel(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting Flight Extractor Service", "version", cfg.AppVersion)

	if cfg.WorkflowAIAPIKey == "" {
		log.Warn("WORKFLOWAI_API_KEY is not set, extraction requests will fail")
	}

	client := workflowai.NewClient(cfg.WorkflowAIAPIKey,
		workflowai.WithAPIURL(cfg.WorkflowAIAPIURL),
		workflowai.WithWebURL(cfg.WorkflowAIWebURL),
		workflowai.WithTimeout(cfg.WorkflowAITimeout),
		workflowai.WithLogger(log),
	)

	flightAgent, err := agent.New[entity.EmailInput, entity.FlightInfo](client,
		agent.WithAgentID(cfg.WorkflowAIAgentID),
		agent.WithModel(cfg.WorkflowAIModel),
		agent.WithInstructions(usecase.DefaultInstructions),
		agent.WithSchemaID(cfg.WorkflowAISchemaID),
		agent.WithLogger(log),
	)
	if err != nil {
		log.Fatal("Failed to create flight agent", "error", err)
	}

	m := metrics.NewMetrics("flight_extractor", nil)
	opts := []usecase.ExtractorOption{
		usecase.WithMetrics(m),
		usecase.WithStrictAirports(cfg.StrictAirports),
	}

	// Set up reference data repositories
	if cfg.PostgresDSN != "" {
		gormDB, err := persistence.NewPostgres(cfg.PostgresDSN)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		opts = append(opts,
			usecase.WithAirportRepository(gormRepo.NewGormAirportRepository(gormDB)),
			usecase.WithAirlineRepository(gormRepo.NewGormAirlineRepository(gormDB)),
		)
		log.Info("Reference data enabled")
	}

	extractor := usecase.NewFlightExtractor(flightAgent, log, opts...)

	// Set up HTTP server
	mux := http.NewServeMux()
	httpapi.NewHandler(extractor, log).Routes(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	log.Info("Flight Extractor Service stopped")
}
