package assets

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// ContentType infers a Content-Type from the file extension.
func ContentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return fiber.MIMEOctetStream
	}
	mime := utils.GetMIME(ext)
	if mime == "" {
		return fiber.MIMEOctetStream
	}
	if textual(mime) && !strings.Contains(mime, "charset=") {
		mime += "; charset=utf-8"
	}
	return mime
}

func textual(mime string) bool {
	switch {
	case strings.HasPrefix(mime, "text/"):
		return true
	case mime == fiber.MIMEApplicationJavaScript, mime == fiber.MIMEApplicationJSON:
		return true
	}
	return false
}
