package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"persona-chatter/internal/config"
	"persona-chatter/internal/llm"
	"persona-chatter/internal/persona"
	"persona-chatter/internal/scheduler"
	"persona-chatter/internal/session"
	"persona-chatter/internal/storage"
	"persona-chatter/internal/telegram"
	"persona-chatter/internal/web"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		slog.Warn(".env file not found", "error", err)
	}
	if err := run(); err != nil {
		var cErr *config.ConfigurationError
		if errors.As(err, &cErr) {
			slog.Error("cannot start: configuration is incomplete", "error", cErr)
		} else {
			slog.Error("persona-chatter failed", "error", err)
		}
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg.LogLevel)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	personas, err := persona.LoadStore(cfg.PersonaDir, logger)
	if err != nil {
		return fmt.Errorf("load personas from %q: %w", cfg.PersonaDir, err)
	}

	gemini := llm.NewGemini(llm.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GeminiTimeout,
	})
	defer gemini.Close()
	slog.Info("gemini client ready", "endpoint", gemini.Endpoint())

	var rec storage.Recorder
	if cfg.LogFilePath != "" {
		fr, err := storage.NewFileRecorder(cfg.LogFilePath)
		if err != nil {
			slog.Warn("failed to init interaction log", "path", cfg.LogFilePath, "error", err)
		} else {
			rec = fr
		}
	}

	deps := session.Deps{
		Personas:  personas,
		Transport: gemini,
		Recorder:  rec,
		Logger:    logger,
		Debug:     cfg.SessionDebug,
	}
	// Each front-end owns its registry.
	webSessions := session.NewManager(deps)
	chatSessions := session.NewManager(deps)

	sweeper := scheduler.New(scheduler.Sweepers{webSessions, chatSessions}, cfg.SessionSweepSpec, cfg.SessionIdleTTL, logger)
	if err := sweeper.Start(); err != nil {
		return err
	}
	defer sweeper.Stop()

	opts := []web.Option{web.WithCheck("scheduler", sweeper.IsRunning)}
	if rec != nil {
		opts = append(opts, web.WithRecorder(rec))
	}
	srv := web.NewServer(cfg.HTTPAddr, webSessions, personas, logger, opts...)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			stop()
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("HTTP server shutdown", "error", err)
		}
	}()

	if cfg.TelegramBotToken != "" {
		bot, err := telegram.New(cfg.TelegramBotToken, chatSessions, personas, logger)
		if err != nil {
			return fmt.Errorf("create telegram bot: %w", err)
		}
		go bot.Start(ctx)
	} else {
		slog.Warn("TELEGRAM_BOT_TOKEN not set, running HTTP API only")
	}

	slog.Info("persona-chatter ready", "addr", cfg.HTTPAddr)

	<-ctx.Done()
	slog.Info("shutting down")
	return nil
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
