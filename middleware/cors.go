package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://localhost:5000",
	"http://127.0.0.1:5173",
}

// Hosting platforms whose preview deployments get random subdomains.
var wildcardSuffixes = []string{
	".vercel.app",
	".netlify.app",
	".render.com",
}

// AllowOrigin reports whether a browser origin may call the API.
func AllowOrigin(origin string, extra []string) bool {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if origin == "" {
		return false
	}
	for _, o := range defaultOrigins {
		if o == origin {
			return true
		}
	}
	for _, o := range extra {
		if strings.TrimRight(o, "/") == origin {
			return true
		}
	}
	if !strings.HasPrefix(origin, "https://") {
		return false
	}
	host := strings.TrimPrefix(origin, "https://")
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	for _, suffix := range wildcardSuffixes {
		if strings.HasSuffix(host, suffix) && len(host) > len(suffix) {
			return true
		}
	}
	return false
}

// CorsMiddleware builds the CORS middleware from the allowlist plus configured origins.
func CorsMiddleware(extra []string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return AllowOrigin(origin, extra)
		},
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	})
}
