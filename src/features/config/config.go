package config

// Config holds the application configuration.
type Config struct {
	DataDir   string    `yaml:"dataDir" validate:"required"`
	Database  Database  `yaml:"database"`
	Server    Server    `yaml:"server"`
	Logger    Logger    `yaml:"logger"`
	Player    Player    `yaml:"player"`
	Downloads Downloads `yaml:"downloads"`
	Jobs      Jobs      `yaml:"jobs"`
	Watcher   Watcher   `yaml:"watcher"`
}

// Database holds the configuration for the database
type Database struct {
	Path string `yaml:"path" validate:"required"`
}

// Server holds the configuration for the Fiber server
type Server struct {
	PrintRoutes bool   `yaml:"show_routes"`
	Port        uint32 `yaml:"port"`
}

// Logger holds the configuration for the app logging
type Logger struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}

// Player holds the UI state persisted across sessions.
type Player struct {
	ActivePlaylist string  `yaml:"activePlaylist"`
	Volume         float64 `yaml:"volume"`
	Loop           bool    `yaml:"loop"`
	Shuffle        bool    `yaml:"shuffle"`
}

// Downloads holds the configuration for URL-based acquisition.
type Downloads struct {
	Enabled bool   `yaml:"enabled"`
	Binary  string `yaml:"binary"` // yt-dlp executable
	TempDir string `yaml:"temp_dir"`
	Format  string `yaml:"format"` // audio format passed to the binary
}

// Jobs holds the configuration for background jobs.
type Jobs struct {
	Log     bool   `yaml:"log"`
	LogPath string `yaml:"log_path"`
}

// Watcher holds the configuration for the media directory watcher.
type Watcher struct {
	Enabled bool `yaml:"enabled"`
}
