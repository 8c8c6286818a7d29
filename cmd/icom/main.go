package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/blackenaxe/icom/internal/api"
	"github.com/blackenaxe/icom/internal/app"
	"github.com/blackenaxe/icom/internal/config"
	"github.com/blackenaxe/icom/internal/notify"
	"github.com/blackenaxe/icom/internal/session"
	"github.com/blackenaxe/icom/internal/storage"
)

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to config file")
	serverURL := flag.String("server", "", "backend base URL (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "icom: %v\n", err)
		os.Exit(1)
	}
	if *serverURL != "" {
		cfg.Server.BaseURL = *serverURL
	}

	logger, closeLog, err := openLogger(cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "icom: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	creds, closeCreds, err := openStorage(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "icom: %v\n", err)
		os.Exit(1)
	}
	defer closeCreds()

	client := api.NewClient(
		cfg.Server.BaseURL,
		creds,
		time.Duration(cfg.Server.TimeoutSec)*time.Second,
		logger,
	)
	sess := session.New(client, creds, logger)
	rec := notify.New(client, sess, logger)

	logger.Info("starting", "server", cfg.Server.BaseURL, "storage", cfg.Storage.Backend)

	p := tea.NewProgram(app.New(client, sess, rec), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "icom: %v\n", err)
		os.Exit(1)
	}
}

// openLogger writes logs to a file; the terminal belongs to the UI.
func openLogger(path string) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	logger := slog.New(slog.NewTextHandler(f, nil))
	return logger, func() { f.Close() }, nil
}

// openStorage selects the credential store backend once at startup;
// nothing else in the application knows which medium is in use.
func openStorage(cfg *config.Config) (storage.Store, func(), error) {
	switch cfg.Storage.Backend {
	case "keyring":
		s, err := storage.NewKeyringStore()
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil

	case "file":
		s, err := storage.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
