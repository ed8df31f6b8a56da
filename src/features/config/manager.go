package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Manager holds the application configuration and provides thread-safe access to it.
type Manager struct {
	mu     sync.RWMutex
	config *Config
	path   string
}

// NewManager creates a new Manager around a loaded config.
func NewManager(config *Config, path string) *Manager {
	return &Manager{config: config, path: path}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Update replaces the configuration.
func (m *Manager) Update(config *Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldConfig := m.config
	m.config = config

	if oldConfig != nil {
		slog.Debug("Configuration updated",
			"data_dir_changed", oldConfig.DataDir != config.DataDir,
			"active_playlist_changed", oldConfig.Player.ActivePlaylist != config.Player.ActivePlaylist,
			"downloads_enabled_changed", oldConfig.Downloads.Enabled != config.Downloads.Enabled,
			"logger_enabled_changed", oldConfig.Logger.Enabled != config.Logger.Enabled,
		)
	}
}

// SetActivePlaylist persists the playlist the UI is currently viewing.
func (m *Manager) SetActivePlaylist(name string) error {
	m.mu.Lock()
	cfg := *m.config
	cfg.Player.ActivePlaylist = name
	m.config = &cfg
	m.mu.Unlock()
	return m.Save()
}

// SetPlayerState persists the player state the UI reports on change.
func (m *Manager) SetPlayerState(player Player) error {
	m.mu.Lock()
	cfg := *m.config
	cfg.Player = player
	m.config = &cfg
	m.mu.Unlock()
	return m.Save()
}

// Save writes the current configuration back to its file.
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, err := os.Create(m.path)
	if err != nil {
		slog.Error("failed to create config file", "path", m.path, "error", err)
		return err
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(m.config); err != nil {
		slog.Error("failed to encode config", "path", m.path, "error", err)
		return err
	}

	slog.Info("Configuration saved successfully", "path", m.path)
	return nil
}

// EnsureDirectories creates the data and download temp directories if they
// don't exist.
func (m *Manager) EnsureDirectories() error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", cfg.DataDir, err)
	}
	if cfg.Downloads.TempDir != "" {
		if err := os.MkdirAll(cfg.Downloads.TempDir, 0755); err != nil {
			return fmt.Errorf("failed to create download temp directory %s: %w", cfg.Downloads.TempDir, err)
		}
	}
	slog.Info("Required directories created/verified", "data", cfg.DataDir, "downloads", cfg.Downloads.TempDir)
	return nil
}

// GetJSON returns the current configuration as a JSON string.
func (m *Manager) GetJSON() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	jsonBytes, err := json.Marshal(m.config)
	if err != nil {
		slog.Error("failed to marshal config to JSON", "error", err)
		return err.Error()
	}
	return string(jsonBytes)
}

// GetYAML returns the current configuration as a YAML string.
func (m *Manager) GetYAML() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	yamlBytes, err := yaml.Marshal(m.config)
	if err != nil {
		slog.Error("failed to marshal config to YAML", "error", err)
		return err.Error()
	}
	return string(yamlBytes)
}
