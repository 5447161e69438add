package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/rs/zerolog/log"

	"github.com/kbforge/kbforge/internal/managers"
	"github.com/kbforge/kbforge/internal/version"
)

type StatusServerDependencies struct {
	Poller *managers.IngestionPoller
}

// NewStatusServer builds the embedded HTTP server exposed while a watch
// session runs: a health endpoint plus a read-only snapshot of the polling
// session.
func NewStatusServer(deps StatusServerDependencies) *fiber.App {
	router := fiber.New(fiber.Config{
		AppName: "kbforge",
	})

	router.Use(cors.New())
	router.Use(logger.New())

	router.Get("/health", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":    "healthy",
			"service":   "kbforge",
			"version":   version.GetVersion(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	router.Get("/v1/status", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(deps.Poller.Snapshot())
	})

	return router
}

// Run serves until ctx is cancelled, then shuts the server down.
func Run(ctx context.Context, app *fiber.App, address string) {
	go func() {
		<-ctx.Done()
		if err := app.Shutdown(); err != nil {
			log.Warn().Err(err).Msg("Failed to shut down status server")
		}
	}()

	log.Info().Str("address", address).Msg("Status server listening")

	if err := app.Listen(address); err != nil {
		log.Warn().Err(err).Msg("Status server stopped")
	}
}
