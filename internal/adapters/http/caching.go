package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on
// endpoint. Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != "GET" {
			return err
		}
		if existing := c.Get("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10" // Very short for system checks

		case path == "/metrics":
			ttl = "no-cache" // Metrics are real-time

		case path == "/graphql":
			ttl = "private, max-age=0"

		case strings.HasPrefix(path, "/v1/analytics"):
			ttl = "public, max-age=30"

		case path == "/v1/map/config":
			ttl = "public, max-age=60" // Display settings change rarely

		case path == "/v1/map/entities":
			ttl = "public, max-age=15" // Snapshot refreshes push new data anyway

		case strings.Contains(path, "/readings"):
			ttl = "no-cache" // Live measurements

		case strings.HasPrefix(path, "/v1/sites") || strings.HasPrefix(path, "/v1/pipelines"):
			ttl = "public, max-age=60" // Infrastructure changes rarely

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=300"
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
