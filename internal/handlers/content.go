package handlers

import (
	"errors"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"gamehost/internal/assets"
	u "gamehost/internal/utils"
)

// ContentService serves the index page and the static asset tree.
type ContentService struct {
	Config *u.Config

	index  string
	static assets.Dir
}

// NewContentService resolves the configured index file and static directory
// against the working directory. Neither has to exist yet.
func NewContentService(cfg u.Config) (*ContentService, error) {
	index, err := filepath.Abs(cfg.Content.IndexFile)
	if err != nil {
		return nil, err
	}
	static, err := assets.NewDir(cfg.Content.StaticDir)
	if err != nil {
		return nil, err
	}
	return &ContentService{
		Config: &cfg,
		index:  index,
		static: static,
	}, nil
}

// HandleIndex streams the index page. The file is reopened on every request.
func (svc *ContentService) HandleIndex(c *fiber.Ctx) error {
	f, err := assets.OpenFile(svc.index)
	if err != nil {
		return svc.fail(c, err)
	}
	return send(c, f, fiber.MIMETextHTMLCharsetUTF8)
}

// HandleStatic streams a file from the static directory named by the route wildcard.
func (svc *ContentService) HandleStatic(c *fiber.Ctx) error {
	f, err := svc.static.Open(c.Params("*"))
	if err != nil {
		return svc.fail(c, err)
	}
	return send(c, f, assets.ContentType(f.Name()))
}

// Ready reports whether the index page is readable and the static directory exists.
func (svc *ContentService) Ready() bool {
	return assets.IsRegularFile(svc.index) && svc.static.Exists()
}

func send(c *fiber.Ctx, f *assets.File, contentType string) error {
	c.Set(fiber.HeaderContentType, contentType)
	if c.Method() == fiber.MethodHead {
		_ = f.Close()
		c.Response().Header.SetContentLength(int(f.Size))
		return nil
	}
	// fasthttp closes the file once the body has been written.
	return c.SendStream(f, int(f.Size))
}

// fail maps asset errors to HTTP errors. Escaping paths are reported as 404
// so that nothing about the tree outside the root is revealed.
func (svc *ContentService) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, assets.ErrNotFound):
		return fiber.ErrNotFound
	case errors.Is(err, assets.ErrOutsideRoot):
		u.Warn("Rejected path outside asset root", "path", c.Path(), "ip", c.IP())
		return fiber.ErrNotFound
	default:
		u.Error("Failed to read asset", "path", c.Path(), "error", err)
		return fiber.ErrInternalServerError
	}
}
