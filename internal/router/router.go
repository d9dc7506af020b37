package router

import (
	"flowdata/internal/handler"
	"flowdata/internal/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Setup mounts the worker's operational routes: health, prometheus metrics
// and the status of queued imports.
func Setup(app *fiber.App, statuses worker.StatusStore) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")
	statusHandler := handler.NewStatusHandler(statuses)
	api.Get("/imports/:run", statusHandler.GetStatus)
}
