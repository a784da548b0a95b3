package app

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/xid"

	"gamehost/internal/handlers"
	"gamehost/internal/metrics"
	u "gamehost/internal/utils"
)

// RegisterMiddleware attaches global middleware to the app
func RegisterMiddleware(app *fiber.App, cfg u.Config, m *metrics.Metrics, svc *handlers.ContentService) {
	app.Use(fiberrecover.New(fiberrecover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			u.Error("Recovered from panic", "path", c.Path(), "panic", e)
		},
	}))

	app.Use(corsMiddleware(cfg))

	app.Use(requestid.New(requestid.Config{
		Generator: func() string {
			return xid.New().String()
		},
	}))

	if m != nil {
		app.Use(m.Middleware())
	}

	app.Use(accessLog())

	app.Use(healthcheck.New(healthcheck.Config{
		ReadinessProbe: func(c *fiber.Ctx) bool {
			return svc.Ready()
		},
	}))

	if m != nil && cfg.Ops.MetricsPath != "" {
		app.Get(cfg.Ops.MetricsPath, m.Handler())
	}
	if cfg.Ops.MonitorPath != "" {
		app.Get(cfg.Ops.MonitorPath, monitor.New(monitor.Config{Title: "gamehost"}))
	}
}

// corsMiddleware applies the configured cross-origin policy. With a wildcard
// origin every response carries the allow headers and every OPTIONS request
// is answered before routing. An explicit origin list is handed to fiber's
// cors middleware.
func corsMiddleware(cfg u.Config) fiber.Handler {
	if !cfg.WildcardCORS() {
		return cors.New(cors.Config{
			AllowOrigins:     strings.Join(cfg.CORS.AllowOrigins, ","),
			AllowCredentials: cfg.CORS.AllowCredentials,
		})
	}

	// fiber's cors refuses a wildcard origin combined with credentials.
	allowCredentials := cfg.CORS.AllowCredentials
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, u.WildcardOrigin)
		c.Set(fiber.HeaderAccessControlAllowMethods, "*")
		c.Set(fiber.HeaderAccessControlAllowHeaders, "*")
		if allowCredentials {
			c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
		}
		if c.Method() == fiber.MethodOptions {
			return c.Status(fiber.StatusNoContent).Send(nil)
		}
		return c.Next()
	}
}

func accessLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		u.Info("Request served",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
		)
		return err
	}
}
