package middleware

import (
	"time"

	applogger "CandleVault/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs completed HTTP requests with latency and status.
func RequestLogging(log *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			err := next(c)

			res := c.Response()
			fields := []applogger.Field{
				applogger.String("method", req.Method),
				applogger.String("path", req.URL.Path),
				applogger.String("remote", c.RealIP()),
				applogger.Int("status", res.Status),
				applogger.Duration("latency", time.Since(start)),
			}
			if err != nil {
				fields = append(fields, applogger.Error(err))
				log.Error("http request", fields...)
				return err
			}
			if res.Status >= 500 {
				log.Error("http request", fields...)
			} else {
				log.Info("http request", fields...)
			}

			return nil
		}
	}
}
