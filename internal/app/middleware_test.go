package app

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamehost/internal/handlers"
)

func TestRegisterMiddleware_RecoversFromPanics(t *testing.T) {
	cfg, _ := deployment(t, true)
	svc, err := handlers.NewContentService(cfg)
	require.NoError(t, err)

	app := fiber.New()
	RegisterMiddleware(app, cfg, nil, svc)
	app.Get("/boom", func(c *fiber.Ctx) error { panic("boom") })
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, _ := do(t, app, httptest.NewRequest("GET", "/boom", nil))
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assertWildcardCORS(t, resp.Header)

	resp, body := do(t, app, httptest.NewRequest("GET", "/ok", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)
}

func TestRegisterMiddleware_MonitorIsOptIn(t *testing.T) {
	cfg, _ := deployment(t, true)
	svc, err := handlers.NewContentService(cfg)
	require.NoError(t, err)

	app := fiber.New()
	RegisterMiddleware(app, cfg, nil, svc)
	resp, _ := do(t, app, httptest.NewRequest("GET", "/ops/monitor", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	cfg.Ops.MonitorPath = "/ops/monitor"
	app = fiber.New()
	RegisterMiddleware(app, cfg, nil, svc)
	resp, _ = do(t, app, httptest.NewRequest("GET", "/ops/monitor", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCORS_CredentialsCanBeDisabled(t *testing.T) {
	cfg, _ := deployment(t, true)
	cfg.CORS.AllowCredentials = false

	app := fiber.New()
	app.Use(corsMiddleware(cfg))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, _ := do(t, app, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	assert.Empty(t, resp.Header.Get(fiber.HeaderAccessControlAllowCredentials))
}
