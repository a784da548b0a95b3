package app

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"gamehost/internal/handlers"
	"gamehost/internal/metrics"
	u "gamehost/internal/utils"
)

// SetupApp creates and configures a new Fiber app instance
func SetupApp(cfg u.Config, m *metrics.Metrics) (*fiber.App, error) {
	svc, err := handlers.NewContentService(cfg)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		Prefork:               cfg.Server.Prefork,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Internal Server Error"

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
				msg = e.Message
			}

			if code >= fiber.StatusInternalServerError {
				u.Error("Request failed", "path", c.Path(), "status", code, "error", err)
			}

			return c.Status(code).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    code,
					"message": msg,
				},
			})
		},
	})

	RegisterMiddleware(app, cfg, m, svc)
	RegisterRoutes(app, cfg, svc)

	// Anything unrouted is a JSON 404
	app.Use(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})

	return app, nil
}

// RegisterRoutes mounts the index page and the static tree.
func RegisterRoutes(app *fiber.App, cfg u.Config, svc *handlers.ContentService) {
	app.Get("/", svc.HandleIndex)
	app.Get(cfg.Content.StaticPrefix+"/*", svc.HandleStatic)
}
