package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/xvierd/pomodore/internal/adapters/control"
	"github.com/xvierd/pomodore/internal/adapters/storage"
	"github.com/xvierd/pomodore/internal/config"
	"github.com/xvierd/pomodore/internal/ports"
	"github.com/xvierd/pomodore/internal/services"
)

// appDeps holds the dependencies shared by every command.
type appDeps struct {
	config   *config.Config
	logger   *slog.Logger
	logFile  *os.File
	storage  ports.Storage
	settings *services.SettingsService
}

var app appDeps

// initializeServices sets up all the required services and adapters.
func initializeServices() error {
	cfg, err := loadConfig()
	if err != nil {
		// If config loading fails, use defaults
		cfg = config.DefaultConfig()
	}
	app.config = cfg

	app.logger, err = config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	// Determine database path
	path := dbPath
	if path == "" {
		path = config.GetDBPath(cfg)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	app.storage, err = storage.New(path)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.settings = services.NewSettingsService(app.storage, app.logger)

	return nil
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

// cleanupServices closes all resources.
func cleanupServices() error {
	var err error
	if app.storage != nil {
		err = app.storage.Close()
		app.storage = nil
	}
	if app.logFile != nil {
		_ = app.logFile.Close()
		app.logFile = nil
	}
	return err
}

// logToFile redirects the logger to the log file so it does not draw over
// a TUI that owns the terminal.
func logToFile() error {
	path := config.GetLogPath(app.config)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logger, err := config.NewLogger(app.config.Log, f)
	if err != nil {
		_ = f.Close()
		return err
	}
	app.logFile = f
	app.logger = logger
	app.settings = services.NewSettingsService(app.storage, app.logger)
	return nil
}

// setupSignalHandler sets up a context that cancels on interrupt signals.
func setupSignalHandler() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// daemonClient returns a client for the running daemon, or an error
// wrapping control.ErrDaemonNotRunning.
func daemonClient(ctx context.Context) (*control.Client, error) {
	client := control.NewClient(app.config.Control.Address)
	if !client.Available(ctx) {
		return nil, fmt.Errorf("%w at %s (start it with \"pomodore run\")",
			control.ErrDaemonNotRunning, app.config.Control.Address)
	}
	return client, nil
}
