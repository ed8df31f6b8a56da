package config

// createDefaultConfig creates a new Config with sensible default values
func createDefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Database: Database{
			Path: "./data/fnote.db",
		},
		Server: Server{
			PrintRoutes: false,
			Port:        3580,
		},
		Logger: Logger{
			Enabled: true,
			Level:   "info",
			Format:  "text",
		},
		Player: Player{
			ActivePlaylist: "Default",
			Volume:         0.75,
		},
		Downloads: Downloads{
			Enabled: true,
			Binary:  "yt-dlp",
			TempDir: "./data/tmp",
			Format:  "mp3",
		},
		Jobs: Jobs{
			Log:     true,
			LogPath: "./data/logs/jobs",
		},
		Watcher: Watcher{
			Enabled: false,
		},
	}
}
