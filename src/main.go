package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/zqily/FNote-v2/src/features/config"
	"github.com/zqily/FNote-v2/src/features/downloading"
	"github.com/zqily/FNote-v2/src/features/hosting"
	"github.com/zqily/FNote-v2/src/features/jobs"
	"github.com/zqily/FNote-v2/src/features/logging"
	"github.com/zqily/FNote-v2/src/features/metrics"
	"github.com/zqily/FNote-v2/src/features/playlists"
	"github.com/zqily/FNote-v2/src/features/search"
	"github.com/zqily/FNote-v2/src/features/sharing"
	"github.com/zqily/FNote-v2/src/features/songs"
	"github.com/zqily/FNote-v2/src/features/tags"
	"github.com/zqily/FNote-v2/src/infra/artwork"
	"github.com/zqily/FNote-v2/src/infra/database"
	"github.com/zqily/FNote-v2/src/infra/files"
	"github.com/zqily/FNote-v2/src/infra/tagmeta"
	"github.com/zqily/FNote-v2/src/infra/watcher"
)

func main() {
	// Load configuration
	cfgManager, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Setup default logger with slog
	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	// Media directory and path scheme
	media, err := files.NewMediaStore(cfgManager.Get().DataDir)
	if err != nil {
		log.Fatalf("failed to create media store: %v", err)
	}

	// Create the database catalog
	db, err := database.NewSqliteCatalog(cfgManager.Get().Database.Path, media)
	if err != nil {
		log.Fatalf("failed to create catalog: %v", err)
	}
	defer db.Close()

	// Create the job service
	jobService := jobs.NewService(&cfgManager.Get().Jobs)

	// Metadata and artwork adapters
	tagReader := tagmeta.NewReader()
	tagWriter := tagmeta.NewWriter()
	accentService := artwork.NewService()

	// Feature services
	songService := songs.NewService(db, media, tagReader, tagWriter, accentService)
	playlistService := playlists.NewService(db, media, cfgManager)
	tagService := tags.NewService(db)
	searchService := search.NewService(db)
	sharingService := sharing.NewService(db, media)
	downloadingService := downloading.NewService(db, cfgManager, jobService)
	metricsService := metrics.NewService(db)

	// Register job tasks
	jobService.RegisterTask(downloading.JobType, downloading.NewDownloadTask(db, media, tagWriter, accentService, cfgManager))
	jobService.RegisterTask("accent_refresh", songs.NewRefreshAccentsTask(db, media, accentService))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Watch the media directory for externally dropped files. Events feed
	// the notifications buffer as import candidates.
	var mediaEvents chan watcher.MediaEvent
	if cfgManager.Get().Watcher.Enabled {
		mediaEvents = make(chan watcher.MediaEvent, 8)
		mediaWatcher, err := watcher.NewWatcher(mediaEvents)
		if err != nil {
			slog.Error("Failed to create media watcher", "error", err)
		} else if err := mediaWatcher.Start(ctx, media.SongsDir()); err != nil {
			slog.Error("Failed to start media watcher", "error", err)
		} else {
			defer mediaWatcher.Stop()
		}
	}

	// Create and start the HTTP server
	server := hosting.NewServer(hosting.Services{
		Config:      cfgManager,
		Songs:       songService,
		Playlists:   playlistService,
		Tags:        tagService,
		Search:      searchService,
		Sharing:     sharingService,
		Downloading: downloadingService,
		Jobs:        jobService,
		Metrics:     metricsService,
		MediaEvents: mediaEvents,
	})
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()
	slog.Info("Server started. Press Ctrl+C to shut down.", "port", cfgManager.Get().Server.Port)

	// Wait for a shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	slog.Info("Shutting down server...")

	if err := server.Shutdown(); err != nil {
		log.Fatalf("failed to shutdown server: %v", err)
	}
	slog.Info("Server gracefully shut down.")
}
