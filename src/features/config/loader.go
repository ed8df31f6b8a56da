package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML file from the given path and returns a new Manager.
// If the file doesn't exist, creates a default configuration.
func Load(path string) (*Manager, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Info("Config file not found, creating default configuration", "path", path)
		manager := NewManager(createDefaultConfig(), path)
		if err := manager.Save(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		if err := manager.EnsureDirectories(); err != nil {
			return nil, err
		}
		return manager, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Downloads.Binary == "" {
		cfg.Downloads.Binary = "yt-dlp"
	}

	manager := NewManager(&cfg, path)
	if err := manager.EnsureDirectories(); err != nil {
		return nil, err
	}
	return manager, nil
}
