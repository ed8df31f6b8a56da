package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// RegisterRoutes exposes the Prometheus scrape endpoint. The library gauges
// are refreshed per scrape so they never go stale.
func RegisterRoutes(app *fiber.App, service *Service) {
	scrape := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())

	app.Get("/metrics", func(c *fiber.Ctx) error {
		service.Refresh(c.Context())
		scrape(c.Context())
		return nil
	})
}
