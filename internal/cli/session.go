package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/adriangreen/tm-list/internal/config"
	"github.com/adriangreen/tm-list/internal/logging"
	"github.com/adriangreen/tm-list/internal/memory"
	"github.com/adriangreen/tm-list/internal/tasks"
)

// session is the configuration, logger and durable slot one command runs
// against
type session struct {
	cfg     *config.Config
	manager *config.ConfigManager
	logger  *slog.Logger
	mem     memory.Memory
	store   *tasks.Store
	logFile io.Closer
}

// openSession loads the config, applies flag overrides and opens storage
func openSession(ctx context.Context, opts *options) (*session, error) {
	path := opts.configPath
	if path == "" {
		path = config.DefaultPath()
	}

	manager, err := config.NewConfigManager(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	cfg := applyFlags(*manager.GetConfig(), opts)

	logger, logFile, err := logging.New(cfg.LogPath, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	mem, err := memory.Open(ctx, cfg.Storage.Backend, cfg.Storage.DataDir)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}

	logger.Debug("session opened",
		"config", path,
		"backend", cfg.Storage.Backend,
		"dataDir", cfg.Storage.DataDir,
		"key", cfg.Storage.Key,
	)

	return &session{
		cfg:     &cfg,
		manager: manager,
		logger:  logger,
		mem:     mem,
		store:   tasks.NewStore(mem, cfg.Storage.Key, logger),
		logFile: logFile,
	}, nil
}

// applyFlags layers command line flags over the loaded configuration
func applyFlags(cfg config.Config, opts *options) config.Config {
	if opts.backend != "" {
		cfg.Storage.Backend = opts.backend
	}
	if opts.dataDir != "" {
		// the log follows the data unless it was placed explicitly
		if cfg.LogPath == filepath.Join(cfg.Storage.DataDir, config.AppName+".log") {
			cfg.LogPath = filepath.Join(opts.dataDir, config.AppName+".log")
		}
		cfg.Storage.DataDir = opts.dataDir
	}
	if opts.key != "" {
		cfg.Storage.Key = opts.key
	}
	if opts.debug {
		cfg.Debug = true
	}
	return cfg
}

// list opens the list held in the session's slot
func (s *session) list(ctx context.Context) *tasks.List {
	return tasks.Open(ctx, s.store)
}

// Close releases storage and the log file
func (s *session) Close() error {
	return errors.Join(s.mem.Close(), s.logFile.Close())
}
