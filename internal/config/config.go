package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// AppName names the config and data directories
const AppName = "tm-list"

// Environment overrides, applied after the config file
const (
	EnvBackend = "TM_LIST_BACKEND"
	EnvDataDir = "TM_LIST_DATA_DIR"
)

// Config represents the application configuration
type Config struct {
	Storage     StorageConfig     `json:"storage"`
	KeyBindings map[string]string `json:"keyBindings"`
	Theme       ThemeConfig       `json:"theme"`
	LogPath     string            `json:"logPath,omitempty"`
	Debug       bool              `json:"debug,omitempty"`
}

// StorageConfig selects the durable slot
type StorageConfig struct {
	Backend string `json:"backend"`
	DataDir string `json:"dataDir"`
	Key     string `json:"key"`
}

// ThemeConfig defines color options
type ThemeConfig struct {
	PrimaryColor string `json:"primaryColor"`
	AccentColor  string `json:"accentColor"`
	DoneColor    string `json:"doneColor"`
	ErrorColor   string `json:"errorColor"`
	SubtleColor  string `json:"subtleColor"`
}

// DefaultPath returns $XDG_CONFIG_HOME/tm-list/config.json (or the OS equivalent)
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join("."+AppName, "config.json")
	}
	return filepath.Join(dir, AppName, "config.json")
}

// Load builds the configuration from defaults, the file at path (if it
// exists) and the environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := mergeConfigFile(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvBackend)); v != "" {
		cfg.Storage.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.Storage.DataDir = v
	}
	if cfg.LogPath == "" {
		cfg.LogPath = filepath.Join(cfg.Storage.DataDir, AppName+".log")
	}

	return cfg, nil
}

// mergeConfigFile loads a config file and merges its non-zero values into target
func mergeConfigFile(target *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var partial Config
	if err := json.Unmarshal(data, &partial); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if partial.Storage.Backend != "" {
		target.Storage.Backend = partial.Storage.Backend
	}
	if partial.Storage.DataDir != "" {
		target.Storage.DataDir = expandHome(partial.Storage.DataDir)
	}
	if partial.Storage.Key != "" {
		target.Storage.Key = partial.Storage.Key
	}

	for action, keys := range partial.KeyBindings {
		target.KeyBindings[action] = keys
	}

	if partial.Theme.PrimaryColor != "" {
		target.Theme.PrimaryColor = partial.Theme.PrimaryColor
	}
	if partial.Theme.AccentColor != "" {
		target.Theme.AccentColor = partial.Theme.AccentColor
	}
	if partial.Theme.DoneColor != "" {
		target.Theme.DoneColor = partial.Theme.DoneColor
	}
	if partial.Theme.ErrorColor != "" {
		target.Theme.ErrorColor = partial.Theme.ErrorColor
	}
	if partial.Theme.SubtleColor != "" {
		target.Theme.SubtleColor = partial.Theme.SubtleColor
	}

	if partial.LogPath != "" {
		target.LogPath = expandHome(partial.LogPath)
	}
	if partial.Debug {
		target.Debug = true
	}

	return nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, AppName, "data")
	}
	return filepath.Join("."+AppName, "data")
}

// defaultConfig returns the default configuration
func defaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: "badger",
			DataDir: defaultDataDir(),
			Key:     "tasks",
		},
		KeyBindings: map[string]string{},
		Theme: ThemeConfig{
			PrimaryColor: "#7d56f4",
			AccentColor:  "#00FFFF",
			DoneColor:    "#32CD32",
			ErrorColor:   "#EF4146",
			SubtleColor:  "#666666",
		},
	}
}

// ConfigManager holds the current configuration and reloads it when the
// file changes on disk
type ConfigManager struct {
	path       string
	config     *Config
	watcher    *Watcher
	reloadChan chan struct{}
	mu         sync.RWMutex
}

// NewConfigManager loads the configuration at path
func NewConfigManager(path string) (*ConfigManager, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	return &ConfigManager{
		path:       path,
		config:     cfg,
		reloadChan: make(chan struct{}, 1),
	}, nil
}

// Path returns the watched config file path
func (cm *ConfigManager) Path() string {
	return cm.path
}

// GetConfig returns the current configuration (thread-safe)
func (cm *ConfigManager) GetConfig() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// Reload loads the configuration from disk. On failure the previous
// configuration stays in place.
func (cm *ConfigManager) Reload() error {
	cfg, err := Load(cm.path)
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}

	cm.mu.Lock()
	cm.config = cfg
	cm.mu.Unlock()
	return nil
}

// StartWatcher begins watching the config file with a 300ms debounce.
// Reload failures are passed to onError.
func (cm *ConfigManager) StartWatcher(ctx context.Context, onError func(error)) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.watcher != nil {
		return fmt.Errorf("watcher already started")
	}
	if cm.path == "" {
		return fmt.Errorf("no config path to watch")
	}
	if err := os.MkdirAll(filepath.Dir(cm.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	watcher, err := NewWatcher(ctx, cm.path)
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := watcher.Start(300 * time.Millisecond); err != nil {
		return fmt.Errorf("failed to start config watcher: %w", err)
	}
	cm.watcher = watcher

	go cm.handleConfigChanges(ctx, watcher, onError)

	return nil
}

// handleConfigChanges processes config file change notifications
func (cm *ConfigManager) handleConfigChanges(ctx context.Context, w *Watcher, onError func(error)) {
	report := func(err error) {
		if onError != nil {
			onError(err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case _, ok := <-w.Events():
			if !ok {
				return
			}
			if err := cm.Reload(); err != nil {
				report(err)
				continue
			}
			select {
			case cm.reloadChan <- struct{}{}:
			default:
				// reload notification already pending
			}

		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			report(err)
		}
	}
}

// StopWatcher stops the config file watcher if it's running
func (cm *ConfigManager) StopWatcher() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.watcher == nil {
		return nil
	}

	err := cm.watcher.Stop()
	cm.watcher = nil
	return err
}

// ReloadEvents returns a channel that signals when config has been reloaded
func (cm *ConfigManager) ReloadEvents() <-chan struct{} {
	return cm.reloadChan
}
