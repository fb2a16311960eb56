package main

import (
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/bulbex/bulbex/internal/bot"
	_ "github.com/bulbex/bulbex/internal/modules/debug"
	_ "github.com/bulbex/bulbex/internal/modules/vk_music"
)

// version is set at build time via ldflags:
// go build -ldflags "-X main.version=1.0.0" ./cmd/bulbex
var version = "dev"

func main() {
	// .env is optional; real deployments use environment variables directly
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(logWriter(), nil)))

	slog.Info("starting bulbex", "version", version)

	cfg, err := bot.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	b := bot.NewBot(cfg)
	b.LoadModules()

	if err := b.Start(); err != nil {
		slog.Error("failed to start bot", "error", err)
		os.Exit(1)
	}

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("received termination signal, shutting down")
	if err := b.Stop(); err != nil {
		slog.Error("failed to shutdown", "error", err)
	}

	slog.Info("completed bot shutdown")
	os.Exit(0)
}

// logWriter returns the log destination: a size-rotated file when
// LOG_FILE_PATH is set, stdout otherwise.
func logWriter() io.Writer {
	path := os.Getenv("LOG_FILE_PATH")
	if path == "" {
		return os.Stdout
	}

	logCfg, err := bot.LoadLogConfig()
	if err != nil {
		// Fall back to stdout rather than refusing to start over log settings
		slog.Error("failed to load log config", "error", err)
		return os.Stdout
	}

	return &lumberjack.Logger{
		Filename:   logCfg.FilePath,
		MaxSize:    logCfg.MaxSizeMB,
		MaxBackups: logCfg.MaxBackups,
	}
}
