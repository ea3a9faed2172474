package main

import (
	"context"
	"os"

	"github.com/xaenox/buddyline/internal/chat"
	"github.com/xaenox/buddyline/internal/cli"
	"github.com/xaenox/buddyline/internal/directory"
	"github.com/xaenox/buddyline/internal/gateway"
	"github.com/xaenox/buddyline/internal/persona"
	"github.com/xaenox/buddyline/internal/storage"
	"github.com/xaenox/buddyline/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the process logger from the logging section of the
// config file.
func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}

func main() {
	// Load configuration first so the logger can honor it. Until then
	// failures go through a plain production logger.
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("Failed to initialize logger", zap.Error(err), zap.String("level", cfg.Logging.Level))
	}
	defer logger.Sync()

	// Initialize the persistence store
	var kv storage.KeyValue
	switch cfg.Storage.Backend {
	case "memory":
		logger.Info("Using in-memory storage")
		kv = storage.NewMemoryStore()
	case "postgres":
		logger.Info("Using PostgreSQL storage")
		dbConfig := storage.DatabaseConfig{
			Host:     cfg.Storage.Database.Host,
			Port:     cfg.Storage.Database.Port,
			User:     cfg.Storage.Database.User,
			Password: cfg.Storage.Database.Password,
			DBName:   cfg.Storage.Database.DBName,
			SSLMode:  cfg.Storage.Database.SSLMode,
		}
		kv, err = storage.NewPostgresStore(dbConfig, logger)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	default:
		logger.Info("Using file storage", zap.String("path", cfg.Storage.Path))
		kv, err = storage.NewFileStore(cfg.Storage.Path, logger)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	store := storage.NewStore(kv)
	defer store.Close()

	// Session directory over the stored collection
	dir, err := directory.New(store, logger)
	if err != nil {
		logger.Fatal("Failed to load sessions", zap.Error(err))
	}

	// Personas: built-in seed plus stored custom ones
	registry, err := persona.NewRegistry(store, dir, logger)
	if err != nil {
		logger.Fatal("Failed to load personas", zap.Error(err))
	}
	active, err := registry.Active()
	if err != nil {
		logger.Fatal("Failed to resolve active persona", zap.Error(err))
	}

	// Make sure there is a chat to type into
	if dir.Current() == nil {
		if _, err := dir.CreateSession(active.ID); err != nil {
			logger.Fatal("Failed to create initial session", zap.Error(err))
		}
	}

	// Completion gateway and the conversation orchestrator
	completer := gateway.NewClient(store, logger)
	orchestrator := chat.NewOrchestrator(completer, dir, chat.DefaultPacer, logger)

	// Run the terminal client
	app := cli.New(dir, registry, orchestrator, store, cfg.Export.Dir, logger, os.Stdin, os.Stdout)
	if err := app.Run(context.Background()); err != nil {
		logger.Fatal("Client error", zap.Error(err))
	}
}
