package hosting

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/zqily/FNote-v2/src/features/config"
	"github.com/zqily/FNote-v2/src/features/downloading"
	"github.com/zqily/FNote-v2/src/features/jobs"
	"github.com/zqily/FNote-v2/src/features/metrics"
	"github.com/zqily/FNote-v2/src/features/playlists"
	"github.com/zqily/FNote-v2/src/features/search"
	"github.com/zqily/FNote-v2/src/features/sharing"
	"github.com/zqily/FNote-v2/src/features/songs"
	"github.com/zqily/FNote-v2/src/features/tags"
	"github.com/zqily/FNote-v2/src/infra/watcher"
)

// Services bundles everything the server wires routes for.
type Services struct {
	Config      *config.Manager
	Songs       *songs.Service
	Playlists   *playlists.Service
	Tags        *tags.Service
	Search      *search.Service
	Sharing     *sharing.Service
	Downloading *downloading.Service
	Jobs        *jobs.Service
	Metrics     *metrics.Service
	MediaEvents <-chan watcher.MediaEvent
}

// Server is the HTTP server for the application.
type Server struct {
	app  *fiber.App
	port uint32
}

// NewServer creates a new HTTP server.
func NewServer(services Services) *Server {
	cfg := services.Config

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("Internal Server Error", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
		AppName:               "FNote",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
		BodyLimit:             1000 * 1024 * 1024,
	})

	app.Use(LogAllRequestsMiddleware())
	app.Use(MetricsMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	appNotifier := newNotifier(services.Jobs.Results(), services.MediaEvents, services.Songs)
	app.Get("/notifications", appNotifier.Drain)

	config.RegisterRoutes(app, cfg)
	songs.RegisterRoutes(app, services.Songs)
	playlists.RegisterRoutes(app, services.Playlists)
	tags.RegisterRoutes(app, services.Tags)
	search.RegisterRoutes(app, services.Search)
	sharing.RegisterRoutes(app, services.Sharing)
	jobs.RegisterRoutes(app, services.Jobs)
	metrics.RegisterRoutes(app, services.Metrics)
	if cfg.Get().Downloads.Enabled {
		downloading.RegisterRoutes(app, services.Downloading)
	}

	return &Server{app: app, port: cfg.Get().Server.Port}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
