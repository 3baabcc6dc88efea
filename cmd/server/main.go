// ERP Voice Assistant server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/ARahim3/ERP-Voice-Assistant/internal/agent"
	"github.com/ARahim3/ERP-Voice-Assistant/internal/api"
	"github.com/ARahim3/ERP-Voice-Assistant/internal/broadcast"
	"github.com/ARahim3/ERP-Voice-Assistant/internal/config"
	"github.com/ARahim3/ERP-Voice-Assistant/internal/llm/groq"
	"github.com/ARahim3/ERP-Voice-Assistant/internal/middleware"
	"github.com/ARahim3/ERP-Voice-Assistant/internal/store"
	"github.com/ARahim3/ERP-Voice-Assistant/internal/voice"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	hub := broadcast.NewHub()

	db, err := store.NewSQLite(cfg.DBPath, hub)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	if err := db.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	if err := db.Seed(context.Background()); err != nil {
		slog.Error("Failed to seed demo data", "error", err)
		os.Exit(1)
	}

	groqClient := groq.NewClient(cfg.Groq.APIKey,
		cfg.Groq.ChatModel, cfg.Groq.STTModel, cfg.Groq.TTSModel, cfg.Groq.TTSVoice)

	toolset := agent.NewToolset(db, hub)
	assistant := agent.NewService(groqClient, toolset)

	pipeline := voice.NewPipeline(groqClient, assistant,
		int64(cfg.Voice.MaxWorkers), cfg.Voice.TranscribeTimeout, cfg.Voice.ChatTimeout)
	voiceHandler := voice.NewHandler(pipeline, groqClient, assistant,
		cfg.FrontendURL, cfg.Voice.SpeakTimeout)

	apiHandler := api.NewHandler(db, hub, cfg.VoiceURL)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.FrontendURL, cfg.IsDevelopment()))

	apiHandler.RegisterRoutes(r)

	// WebSocket endpoints.
	r.Get("/ws/voice", voiceHandler.ServeHTTP)
	r.Get("/ws/events", hub.ServeHTTP)

	// Voice sessions hold the connection open across many turns, so the
	// server carries no write timeout.
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 0,
		IdleTimeout: 120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
