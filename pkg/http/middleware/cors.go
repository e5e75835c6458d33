package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// CORSConfig restricts which origins may read the query API.
type CORSConfig struct {
	AllowOrigins []string
}

// CORS grants cross-origin read access. The query surface is GET-only, so
// preflights are always answered with GET/OPTIONS whatever the request
// asked for, and no credentials or write headers are ever allowed.
func CORS(cfg CORSConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := c.Request().Header.Get("Origin")
			if origin == "" {
				return next(c)
			}
			if !originAllowed(cfg.AllowOrigins, origin) {
				if c.Request().Method == http.MethodOptions {
					return c.NoContent(http.StatusNoContent)
				}
				return next(c)
			}

			h := c.Response().Header()
			if len(cfg.AllowOrigins) == 1 && cfg.AllowOrigins[0] == "*" {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusNoContent)
			}
			return next(c)
		}
	}
}

func originAllowed(allowed []string, origin string) bool {
	for _, o := range allowed {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
